// Package config loads the formtags CLI configuration. Values are layered:
// built-in defaults, an optional YAML file, then FORMTAGS_ environment
// variables. Nested keys in the environment use a double underscore, for
// example FORMTAGS_MATCHING__REQUIRE_MATCHES=true.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/goliatone/go-formtags/pkg/assign"
)

// DefaultEnvPrefix prefixes environment overrides.
const DefaultEnvPrefix = "FORMTAGS_"

// UserConfigFile is searched under the XDG config directories when no
// explicit path is given.
var UserConfigFile = filepath.Join("formtags", "config.yaml")

type Config struct {
	Matching  MatchingConfig  `koanf:"matching"`
	Templates TemplatesConfig `koanf:"templates"`
	Log       LogConfig       `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`

	// Source is the file the configuration was read from, if any.
	Source string `koanf:"-"`
}

// MatchingConfig mirrors the assigner options.
type MatchingConfig struct {
	Unmatched      string `koanf:"unmatched"`
	Precedence     string `koanf:"precedence"`
	RequireMatches bool   `koanf:"require_matches"`
}

type TemplatesConfig struct {
	Dir       string `koanf:"dir"`
	Extension string `koanf:"extension"`
	Renderer  string `koanf:"renderer"`
}

type LogConfig struct {
	Verbosity int  `koanf:"verbosity"`
	File      bool `koanf:"file"`
}

type ServerConfig struct {
	Addr  string `koanf:"addr"`
	Forms string `koanf:"forms"`
	Watch bool   `koanf:"watch"`
}

// Defaults returns the built-in configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"matching.unmatched":       assign.UnmatchedWarn.String(),
		"matching.precedence":      assign.PrecedenceDeclaration.String(),
		"matching.require_matches": false,
		"templates.dir":            "",
		"templates.extension":      ".tpl",
		"templates.renderer":       "vanilla",
		"log.verbosity":            0,
		"log.file":                 false,
		"server.addr":              "127.0.0.1:8383",
		"server.forms":             "forms",
		"server.watch":             false,
	}
}

type loadOptions struct {
	path       string
	envPrefix  string
	userConfig bool
}

type LoadOption func(*loadOptions)

// WithFile reads the given YAML file. A missing explicit file is an error.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// WithUserConfig toggles the XDG config file lookup used when no file is
// given. Enabled by default.
func WithUserConfig(enabled bool) LoadOption {
	return func(o *loadOptions) {
		o.userConfig = enabled
	}
}

// Load builds a Config from defaults, a config file and the environment.
func Load(options ...LoadOption) (*Config, error) {
	opts := loadOptions{envPrefix: DefaultEnvPrefix, userConfig: true}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	path := opts.path
	if path == "" && opts.userConfig {
		if found, err := xdg.SearchConfigFile(UserConfigFile); err == nil {
			path = found
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	prefix := opts.envPrefix
	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, prefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Source = path

	if _, err := cfg.Matching.Options(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Options converts the matching section into assigner options.
func (m MatchingConfig) Options() ([]assign.Option, error) {
	policy, err := assign.ParseUnmatchedPolicy(m.Unmatched)
	if err != nil {
		return nil, err
	}
	precedence, err := assign.ParsePrecedence(m.Precedence)
	if err != nil {
		return nil, err
	}
	return []assign.Option{
		assign.WithUnmatchedPolicy(policy),
		assign.WithPrecedence(precedence),
		assign.WithRequireMatches(m.RequireMatches),
	}, nil
}
