package config

import (
	"os"
	"strconv"
)

// Environment variables read by LoadFromEnv.
const (
	EnvThreshold        = "INSERT_TO_COPY_THRESHOLD"
	EnvMaxStatementSize = "INSERT_TO_COPY_MAX_STATEMENT_SIZE"
	EnvParser           = "INSERT_TO_COPY_PARSER"
	EnvEncoding         = "INSERT_TO_COPY_ENCODING"
	EnvTarget           = "INSERT_TO_COPY_TARGET"
	EnvLogLevel         = "INSERT_TO_COPY_LOG_LEVEL"
	EnvLogFormat        = "INSERT_TO_COPY_LOG_FORMAT"
)

// LoadFromEnv overrides settings from the environment. Values that do not
// parse are ignored.
func (c *Config) LoadFromEnv() {
	if val := os.Getenv(EnvThreshold); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.Convert.Threshold = n
		}
	}

	if val := os.Getenv(EnvMaxStatementSize); val != "" {
		c.Convert.MaxStatementSize = val
	}

	if val := os.Getenv(EnvParser); val != "" {
		c.Parser = val
	}

	if val := os.Getenv(EnvEncoding); val != "" {
		c.IO.InputEncoding = val
	}

	if val := os.Getenv(EnvTarget); val != "" {
		c.Target = val
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.Log.Level = val
	}

	if val := os.Getenv(EnvLogFormat); val != "" {
		c.Log.Format = val
	}
}
