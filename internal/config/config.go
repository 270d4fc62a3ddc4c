// Package config loads automock's settings from the environment and from an
// optional YAML app-config file.
//
// Two environment variables locate everything else:
//
//	AUTOMOCK_CONFIG_NAMESPACE  prefix for every other key (default "AUTOMOCK")
//	AUTOMOCK_APP_CONFIG        path to a YAML file with namespaced top-level keys
//
// The namespaced keys are <NS>_REGISTRATION_IMPORTS (a list, or a
// comma-separated string in the environment) and <NS>_STRICT. Environment
// values override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Environment variables and defaults.
const (
	AppConfigEnv     = "AUTOMOCK_APP_CONFIG"
	DefaultNamespace = "AUTOMOCK"
	NamespaceEnv     = "AUTOMOCK_CONFIG_NAMESPACE"
)

// Exported variables.
var (
	// ErrInvalidSetting is returned when a setting has the wrong shape.
	ErrInvalidSetting = errors.New("config: invalid setting")
)

// FromEnvironment loads the configuration from the process environment.
func FromEnvironment() (Config, error) {
	return Load(os.Getenv, os.ReadFile)
}

// Load builds a Config from getEnv and, if the app-config variable names a
// file, from that file read through readFile.
func Load(getEnv func(string) string, readFile func(string) ([]byte, error)) (Config, error) {
	cfg := Config{
		Namespace: getEnv(NamespaceEnv),
		AppConfig: getEnv(AppConfigEnv),
	}

	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	if cfg.AppConfig != "" {
		data, err := readFile(cfg.AppConfig)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading app config %s: %w", cfg.AppConfig, err)
		}

		err = cfg.applyFile(data)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", cfg.AppConfig, err)
		}
	}

	err := cfg.applyEnv(getEnv)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Config is automock's resolved configuration.
type Config struct {
	// Namespace prefixes every namespaced key.
	Namespace string
	// AppConfig is the path of the YAML settings file, if any.
	AppConfig string
	// RegistrationImports lists the deferred registration hooks to run
	// before patching starts.
	RegistrationImports []string
	// Strict turns double-start and double-stop advisories into errors.
	Strict bool
}

// Key returns the namespaced form of name.
func (c Config) Key(name string) string {
	return c.Namespace + "_" + name
}

func (c *Config) applyEnv(getEnv func(string) string) error {
	if raw := getEnv(c.Key("REGISTRATION_IMPORTS")); raw != "" {
		c.RegistrationImports = splitList(raw)
	}

	if raw := getEnv(c.Key("STRICT")); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidSetting, c.Key("STRICT"), raw, err)
		}

		c.Strict = strict
	}

	return nil
}

func (c *Config) applyFile(data []byte) error {
	values := map[string]any{}

	err := yaml.Unmarshal(data, &values)
	if err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}

	if raw, ok := values[c.Key("REGISTRATION_IMPORTS")]; ok {
		imports, err := stringList(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidSetting, c.Key("REGISTRATION_IMPORTS"), err)
		}

		c.RegistrationImports = imports
	}

	if raw, ok := values[c.Key("STRICT")]; ok {
		strict, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("%w: %s: expected a boolean, got %T", ErrInvalidSetting, c.Key("STRICT"), raw)
		}

		c.Strict = strict
	}

	return nil
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(raw string) []string {
	var items []string

	for item := range strings.SplitSeq(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}

	return items
}

// stringList accepts a YAML sequence of strings or a comma-separated string.
func stringList(raw any) ([]string, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return splitList(typed), nil
	case []any:
		items := make([]string, 0, len(typed))

		for i, item := range typed {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: expected a string, got %T", i, item)
			}

			items = append(items, str)
		}

		return items, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", raw)
	}
}
