package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Resolve.
const (
	EnvConfig = "LOCALMIND_CONFIG"
	EnvAddr   = "LOCALMIND_ADDR"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars expands ${VAR} references; unknown variables are left as is.
func substituteEnvVars(content []byte) []byte {
	return envVarRegex.ReplaceAllFunc(content, func(match []byte) []byte {
		name := string(envVarRegex.FindSubmatch(match)[1])
		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		return match
	})
}

// Load reads a configuration file based on its extension, layered over Default.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	b = substituteEnvVars(b)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads path, or the file named by LOCALMIND_CONFIG when path is
// empty, or the defaults when neither is set. LOCALMIND_ADDR overrides addr.
// The result is validated.
func Resolve(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if addr := os.Getenv(EnvAddr); addr != "" {
		cfg.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
