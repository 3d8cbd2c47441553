package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/insinfo/insert-to-copy/internal/buffer"
	"github.com/insinfo/insert-to-copy/internal/copyfmt"
	"github.com/insinfo/insert-to-copy/internal/dumpio"
	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/log"
	"github.com/insinfo/insert-to-copy/internal/sql"
)

// Config represents the complete converter configuration.
type Config struct {
	// Input and Output are file paths; "-" selects stdin and stdout.
	Input  string `json:"input" yaml:"input" toml:"input"`
	Output string `json:"output" yaml:"output" toml:"output"`

	// Target is a PostgreSQL connection string. When set, output is loaded
	// into that server instead of written to a file.
	Target string `json:"target" yaml:"target" toml:"target"`

	// Parser selects the INSERT parser: auto, pgquery or native.
	Parser string `json:"parser" yaml:"parser" toml:"parser"`

	Convert ConvertConfig `json:"convert" yaml:"convert" toml:"convert"`
	IO      IOConfig      `json:"io" yaml:"io" toml:"io"`
	Log     log.Config    `json:"log" yaml:"log" toml:"log"`
}

// ConvertConfig controls row batching and value formatting.
type ConvertConfig struct {
	Threshold        int    `json:"threshold" yaml:"threshold" toml:"threshold"`
	MaxStatementSize string `json:"max_statement_size" yaml:"max_statement_size" toml:"max_statement_size"` // e.g. "1GiB"
	IncludeColumns   bool   `json:"include_columns" yaml:"include_columns" toml:"include_columns"`
	EscapeBackslash  bool   `json:"escape_backslash" yaml:"escape_backslash" toml:"escape_backslash"` // off: a value ending in '\' merges with the next field
}

// IOConfig controls how dump files are read and written.
type IOConfig struct {
	InputEncoding     string `json:"input_encoding" yaml:"input_encoding" toml:"input_encoding"`
	InputCompression  string `json:"input_compression" yaml:"input_compression" toml:"input_compression"`
	OutputCompression string `json:"output_compression" yaml:"output_compression" toml:"output_compression"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Parser: sql.KindAuto,
		Convert: ConvertConfig{
			Threshold:        buffer.DefaultThreshold,
			MaxStatementSize: "1GiB",
		},
		IO: IOConfig{
			InputEncoding:     "UTF-8",
			InputCompression:  string(dumpio.CompressionAuto),
			OutputCompression: string(dumpio.CompressionAuto),
		},
		Log: log.DefaultConfig(),
	}
}

// LoadFromFile loads configuration from a JSON, YAML or TOML file, chosen
// by extension, on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileIOError("read", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, errors.ConfigErrorf("unsupported config file type %q", ext).
			WithPath(path).
			WithHint("Use .json, .yaml, .yml or .toml.")
	}
	if err != nil {
		return nil, errors.ConfigErrorf("failed to parse config file: %v", err).WithPath(path).WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Convert.Threshold < 1 {
		return errors.InvalidParameterError("threshold", c.Convert.Threshold).
			WithHint("The threshold must be at least 1.")
	}
	if _, err := c.StatementLimit(); err != nil {
		return err
	}

	if !sql.ValidKind(c.Parser) {
		return errors.InvalidParameterError("parser", c.Parser).
			WithHint("Use auto, pgquery or native.")
	}

	if !log.ValidLevel(c.Log.Level) {
		return errors.InvalidParameterError("log level", c.Log.Level)
	}
	if !log.ValidFormat(c.Log.Format) {
		return errors.InvalidParameterError("log format", c.Log.Format)
	}

	if _, err := dumpio.ParseCompression(c.IO.InputCompression); err != nil {
		return err
	}
	if _, err := dumpio.ParseCompression(c.IO.OutputCompression); err != nil {
		return err
	}
	if err := dumpio.CheckEncoding(c.IO.InputEncoding); err != nil {
		return err
	}

	if c.Target != "" && c.Output != "" {
		return errors.ConfigErrorf("output and target cannot both be set")
	}
	return nil
}

// StatementLimit returns the maximum statement size in bytes.
func (c *Config) StatementLimit() (int, error) {
	n, err := humanize.ParseBytes(c.Convert.MaxStatementSize)
	if err != nil || n == 0 || n > math.MaxInt32 {
		return 0, errors.InvalidParameterError("max_statement_size", c.Convert.MaxStatementSize).
			WithHint("Use a size between 1B and 2GiB, such as 64MiB.")
	}
	return int(n), nil
}

// LoadsTarget reports whether output goes to a server.
func (c *Config) LoadsTarget() bool {
	return c.Target != ""
}

// FormatOptions converts to copyfmt.Options.
func (c *Config) FormatOptions() copyfmt.Options {
	return copyfmt.Options{
		EscapeBackslash: c.Convert.EscapeBackslash,
		IncludeColumns:  c.Convert.IncludeColumns,
	}
}

// InputOptions converts to dumpio.InputOptions. Validate must have passed.
func (c *Config) InputOptions() dumpio.InputOptions {
	comp, _ := dumpio.ParseCompression(c.IO.InputCompression)
	return dumpio.InputOptions{
		Compression: comp,
		Encoding:    c.IO.InputEncoding,
	}
}

// OutputCompression returns the codec for the output file.
func (c *Config) OutputCompression() dumpio.Compression {
	comp, _ := dumpio.ParseCompression(c.IO.OutputCompression)
	return comp
}
