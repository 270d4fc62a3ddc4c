// automockgen writes the file that links registration imports into a package.
// Packages that register default substitutes from init functions only take
// effect once linked, so add
//
//	//go:generate automockgen
//
// to a file in your test package. Import paths come from the command line or,
// when none are given, from the configured registration imports
// (AUTOMOCK_REGISTRATION_IMPORTS or the app config file).
package main

import (
	"fmt"
	"os"

	"github.com/toejough/automock/internal/gen"
)

func main() {
	err := gen.Run(os.Args, os.Getenv, &realFileSystem{}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// realFileSystem implements gen.FileSystem using the os package.
type realFileSystem struct{}

// ReadFile reads the file named by name and returns the contents.
func (fs *realFileSystem) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", name, err)
	}

	return data, nil
}

// WriteFile writes data to the file named by name.
func (fs *realFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	err := os.WriteFile(name, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}
