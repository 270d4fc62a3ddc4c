// Package gen implements automockgen, which writes the file that links a
// project's registration imports into its test binaries.
package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/alexflint/go-arg"
	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/toejough/go-reorder"

	"github.com/toejough/automock/internal/config"
)

// Interfaces - Public

// FileSystem is the file access automockgen needs.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Constants - Public

const (
	// DefaultOutput is the file written when --output is not given.
	DefaultOutput = "zz_automock_imports.go"
	// Header marks the output as generated.
	Header = "// Code generated by automockgen. DO NOT EDIT."
)

// Variables - Public

var (
	// ErrNoImports is returned when neither arguments nor configuration name an import.
	ErrNoImports = errors.New("automockgen: no registration imports")
	// ErrNoPackage is returned when the package name cannot be determined.
	ErrNoPackage = errors.New("automockgen: no package name (pass --package or run from go generate)")
	// ErrStale is returned by --check when the file on disk is out of date.
	ErrStale = errors.New("automockgen: generated file is out of date")
)

// Structs - Private

// cliArgs defines the command-line arguments for the generator.
type cliArgs struct {
	Imports []string `arg:"positional" help:"import paths to link (defaults to the configured registration imports)"`
	Package string   `arg:"--package" help:"package clause of the generated file (defaults to $GOPACKAGE)"`
	Output  string   `arg:"--output" default:"zz_automock_imports.go" help:"file to write"`
	Check   bool     `arg:"--check" help:"report whether the file is current instead of writing it"`
}

// Functions - Public

// Render returns the source of a file in package pkgName that blank-imports
// each of imports in order.
func Render(pkgName string, imports []string) (string, error) {
	specs := make([]dst.Spec, 0, len(imports))

	for _, path := range imports {
		spec := &dst.ImportSpec{
			Name: dst.NewIdent("_"),
			Path: &dst.BasicLit{Kind: token.STRING, Value: strconv.Quote(path)},
		}
		spec.Decs.Before = dst.NewLine
		spec.Decs.After = dst.NewLine
		specs = append(specs, spec)
	}

	file := &dst.File{
		Name: dst.NewIdent(pkgName),
		Decls: []dst.Decl{&dst.GenDecl{
			Tok:    token.IMPORT,
			Lparen: true,
			Specs:  specs,
			Rparen: true,
		}},
	}
	file.Decs.Start.Append(Header, "\n")

	var buf bytes.Buffer

	err := decorator.NewRestorer().Fprint(&buf, file)
	if err != nil {
		return "", fmt.Errorf("failed to print: %w", err)
	}

	return buf.String(), nil
}

// Run executes automockgen. args includes the program name, getEnv supplies
// $GOPACKAGE and the automock configuration variables, and progress is
// written to out.
func Run(args []string, getEnv func(string) string, fileSys FileSystem, out io.Writer) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	imports := parsed.Imports
	if len(imports) == 0 {
		cfg, err := config.Load(getEnv, fileSys.ReadFile)
		if err != nil {
			return err
		}

		imports = cfg.RegistrationImports
	}

	imports = normalizeImports(imports)
	if len(imports) == 0 {
		return ErrNoImports
	}

	pkgName := parsed.Package
	if pkgName == "" {
		pkgName = getEnv("GOPACKAGE")
	}

	if pkgName == "" {
		return ErrNoPackage
	}

	code, err := Render(pkgName, imports)
	if err != nil {
		return err
	}

	code = reorderCode(code, parsed.Output, out)

	if parsed.Check {
		return checkFile(parsed.Output, code, fileSys, out)
	}

	return writeFile(parsed.Output, code, fileSys, out)
}

// Functions - Private

// checkFile compares code against filename and reports a diff when they differ.
func checkFile(filename, code string, fileSys FileSystem, out io.Writer) error {
	current, err := fileSys.ReadFile(filename)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", filename, err)
	}

	if string(current) == code {
		_, _ = fmt.Fprintf(out, "%s is up to date.\n", filename)

		return nil
	}

	_, _ = fmt.Fprint(out, textdiff.Unified(filename+" (current)", filename+" (generated)", string(current), code))

	return fmt.Errorf("%w: %s", ErrStale, filename)
}

// normalizeImports trims, de-duplicates, and sorts import paths.
func normalizeImports(imports []string) []string {
	cleaned := make([]string, 0, len(imports))

	for _, path := range imports {
		path = strings.TrimSpace(path)
		if path != "" {
			cleaned = append(cleaned, path)
		}
	}

	slices.Sort(cleaned)

	return slices.Compact(cleaned)
}

// parseArgs parses command-line arguments into cliArgs.
func parseArgs(args []string) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{Program: "automockgen"}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}

// reorderCode applies project declaration ordering, keeping code as-is if that fails.
func reorderCode(code, filename string, out io.Writer) string {
	reordered, err := reorder.Source(code)
	if err != nil {
		_, _ = fmt.Fprintf(out, "Warning: failed to reorder %s: %v\n", filename, err)

		return code
	}

	return reordered
}

// writeFile writes code to filename.
func writeFile(filename, code string, fileSys FileSystem, out io.Writer) error {
	const generatedFilePermissions = 0o600

	err := fileSys.WriteFile(filename, []byte(code), generatedFilePermissions)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", filename, err)
	}

	_, _ = fmt.Fprintf(out, "%s written successfully.\n", filename)

	return nil
}
