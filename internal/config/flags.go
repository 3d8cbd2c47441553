package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by the CLI and LoadFromFlags.
const (
	FlagThreshold        = "threshold"
	FlagMaxStatementSize = "max-statement-size"
	FlagParser           = "parser"
	FlagIncludeColumns   = "include-columns"
	FlagEscapeBackslash  = "escape-backslash"
	FlagEncoding         = "encoding"
	FlagCompression      = "compression"
	FlagInputCompression = "input-compression"
	FlagTarget           = "target"
	FlagLogLevel         = "log-level"
	FlagLogFormat        = "log-format"
)

// AddFlags registers the configuration flags on fs with defaults from
// DefaultConfig.
func AddFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.Int(FlagThreshold, d.Convert.Threshold, "rows buffered per table before a COPY block is written")
	fs.String(FlagMaxStatementSize, d.Convert.MaxStatementSize, "largest statement accepted, e.g. 64MiB")
	fs.String(FlagParser, d.Parser, "INSERT parser: auto, pgquery or native")
	fs.Bool(FlagIncludeColumns, false, "name the INSERT column list in the COPY header")
	fs.Bool(FlagEscapeBackslash, false, "escape backslashes and carriage returns in COPY data; without it a trailing backslash joins a field to the next")
	fs.String(FlagEncoding, d.IO.InputEncoding, "character set of the input, transcoded to UTF-8")
	fs.String(FlagCompression, d.IO.OutputCompression, "output compression: auto, none, gzip, zstd, lz4 or snappy")
	fs.String(FlagInputCompression, d.IO.InputCompression, "input compression; auto detects it from the data")
	fs.String(FlagTarget, "", "PostgreSQL connection string to load into instead of writing a file")
	fs.String(FlagLogLevel, d.Log.Level, "log level: debug, info, warn or error")
	fs.String(FlagLogFormat, d.Log.Format, "log format: auto, text or json")
}

// LoadFromFlags merges flags the user set explicitly into the
// configuration. Flags left at their defaults do not override file or
// environment settings.
func (c *Config) LoadFromFlags(fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			err = apply()
		}
	}

	set(FlagThreshold, func() (e error) { c.Convert.Threshold, e = fs.GetInt(FlagThreshold); return })
	set(FlagMaxStatementSize, func() (e error) { c.Convert.MaxStatementSize, e = fs.GetString(FlagMaxStatementSize); return })
	set(FlagParser, func() (e error) { c.Parser, e = fs.GetString(FlagParser); return })
	set(FlagIncludeColumns, func() (e error) { c.Convert.IncludeColumns, e = fs.GetBool(FlagIncludeColumns); return })
	set(FlagEscapeBackslash, func() (e error) { c.Convert.EscapeBackslash, e = fs.GetBool(FlagEscapeBackslash); return })
	set(FlagEncoding, func() (e error) { c.IO.InputEncoding, e = fs.GetString(FlagEncoding); return })
	set(FlagCompression, func() (e error) { c.IO.OutputCompression, e = fs.GetString(FlagCompression); return })
	set(FlagInputCompression, func() (e error) { c.IO.InputCompression, e = fs.GetString(FlagInputCompression); return })
	set(FlagTarget, func() (e error) { c.Target, e = fs.GetString(FlagTarget); return })
	set(FlagLogLevel, func() (e error) { c.Log.Level, e = fs.GetString(FlagLogLevel); return })
	set(FlagLogFormat, func() (e error) { c.Log.Format, e = fs.GetString(FlagLogFormat); return })
	return err
}
