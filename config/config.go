package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds the ETL run configuration.
type Config struct {
	URL         string
	RatesFile   string
	OutputFile  string
	DBPath      string
	TableName   string
	LogFile     string
	Timeout     time.Duration
	UserAgent   string
	Verbose     bool
	MetricsFile string // empty disables the textfile export
}

// DefaultConfig returns the built-in run parameters.
func DefaultConfig() *Config {
	return &Config{
		URL:         "https://web.archive.org/web/20230908091635/https://en.wikipedia.org/wiki/List_of_largest_banks",
		RatesFile:   "exchange_rate.csv",
		OutputFile:  "Largest_banks_data.csv",
		DBPath:      "Banks.db",
		TableName:   "Largest_banks",
		LogFile:     "code_log.txt",
		Timeout:     10 * time.Second,
		UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Verbose:     false,
		MetricsFile: "",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("source URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid source URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("source URL must include a host")
	}

	if c.RatesFile == "" {
		return fmt.Errorf("rates file cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if !tableNamePattern.MatchString(c.TableName) {
		return fmt.Errorf("table name %q is not a valid identifier", c.TableName)
	}
	if c.LogFile == "" {
		return fmt.Errorf("log file cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// ValidTableName reports whether name is a plain SQL identifier.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}
