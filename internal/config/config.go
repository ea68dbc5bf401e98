// Package config loads the YAML settings shared by the command line tools.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ieee0824/oovfst/lexicon"
	"github.com/ieee0824/oovfst/rewrite"
	"github.com/ieee0824/oovfst/split"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "oovfst://config.schema.json"

// Config holds all tool configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Lexicon  LexiconConfig `yaml:"lexicon"`
	Expand   ExpandConfig  `yaml:"expand"`
	Split    SplitConfig   `yaml:"split"`
}

// LexiconConfig holds the phone position suffixes.
type LexiconConfig struct {
	BeginSuffix    string `yaml:"begin_suffix"`
	InternalSuffix string `yaml:"internal_suffix"`
	EndSuffix      string `yaml:"end_suffix"`
}

// ExpandConfig holds archive rewrite settings.
type ExpandConfig struct {
	Separator      string `yaml:"separator"`
	BoundarySymbol string `yaml:"boundary_symbol"`
}

// SplitConfig holds train/test split settings.
type SplitConfig struct {
	MinTest        int `yaml:"min_test"`
	RemovalDivisor int `yaml:"removal_divisor"`
}

// Default returns a Config with the standard values.
func Default() *Config {
	suf := lexicon.DefaultSuffixes()
	opts := split.DefaultOptions()
	return &Config{
		LogLevel: "info",
		Lexicon: LexiconConfig{
			BeginSuffix:    suf.Begin,
			InternalSuffix: suf.Internal,
			EndSuffix:      suf.End,
		},
		Expand: ExpandConfig{
			Separator:      rewrite.DefaultSeparator,
			BoundarySymbol: rewrite.DefaultBoundary,
		},
		Split: SplitConfig{
			MinTest:        opts.MinTest,
			RemovalDivisor: opts.RemovalDivisor,
		},
	}
}

// Load reads a YAML config file, checks it against the embedded schema and
// fills missing fields with defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for an in-memory document.
func Parse(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	if c.Lexicon.BeginSuffix == "" || c.Lexicon.InternalSuffix == "" || c.Lexicon.EndSuffix == "" {
		return fmt.Errorf("lexicon suffixes must not be empty")
	}
	if c.Expand.Separator == "" {
		return fmt.Errorf("expand.separator must not be empty")
	}
	if c.Expand.BoundarySymbol == "" {
		return fmt.Errorf("expand.boundary_symbol must not be empty")
	}
	if c.Split.MinTest < 1 {
		return fmt.Errorf("split.min_test must be > 0")
	}
	if c.Split.RemovalDivisor < 1 {
		return fmt.Errorf("split.removal_divisor must be > 0")
	}
	return nil
}

// Suffixes returns the lexicon builder suffixes.
func (c *Config) Suffixes() lexicon.Suffixes {
	return lexicon.Suffixes{
		Begin:    c.Lexicon.BeginSuffix,
		Internal: c.Lexicon.InternalSuffix,
		End:      c.Lexicon.EndSuffix,
	}
}

// SplitOptions returns the splitter options.
func (c *Config) SplitOptions() split.Options {
	return split.Options{MinTest: c.Split.MinTest, RemovalDivisor: c.Split.RemovalDivisor}
}

// ParseLogLevel maps a level name to a slog.Level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger on w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLogLevel(c.LogLevel)}))
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validateSchema checks a YAML document against the embedded JSON schema.
// The document goes through JSON so numbers reach the validator as json.Number.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if doc == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting config to json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return fmt.Errorf("converting config to json: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	return nil
}
