package vcr

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/getvcr/vcr/cassette"
)

// Config holds controller configuration. The zero value is usable: cassettes
// are stored in the working directory, inserted with ModeOnce and matched on
// method and URL.
type Config struct {
	// CassetteLibraryDir is the directory holding cassette files, one JSON
	// file per cassette name.
	CassetteLibraryDir string

	// DefaultRecordMode applies to fresh cassettes inserted without an
	// explicit mode. Defaults to cassette.ModeOnce.
	DefaultRecordMode cassette.Mode

	// DefaultMatcher applies to fresh cassettes inserted without an
	// explicit matcher. Defaults to cassette.MethodURI().
	DefaultMatcher cassette.Matcher

	// RealTransport performs delegated network calls.
	// If nil, http.DefaultTransport is used.
	RealTransport http.RoundTripper

	// Filters to apply to each interaction before it is appended.
	// Filters are executed in the order specified.
	Filters []cassette.Filter

	// Logger receives debug output about insert, eject and record/replay
	// decisions. If nil, logs are discarded.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.DefaultRecordMode == "" {
		c.DefaultRecordMode = cassette.ModeOnce
	}
	if c.DefaultMatcher == nil {
		c.DefaultMatcher = cassette.MethodURI()
	}
	if c.RealTransport == nil {
		c.RealTransport = http.DefaultTransport
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// configFile is the YAML shape of an on-disk configuration.
type configFile struct {
	CassetteLibraryDir string `yaml:"cassette_library_dir"`
	DefaultRecordMode  string `yaml:"default_record_mode"`
	DefaultMatcher     string `yaml:"default_matcher"`
}

// LoadConfig reads a YAML configuration file. Empty fields keep their
// defaults; record mode and matcher identities are validated the same way
// cassette files are.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var f configFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := Config{CassetteLibraryDir: f.CassetteLibraryDir}
	if f.DefaultRecordMode != "" {
		mode, err := cassette.ParseMode(f.DefaultRecordMode)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.DefaultRecordMode = mode
	}
	if f.DefaultMatcher != "" {
		matcher, err := cassette.ParseMatcher(f.DefaultMatcher)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.DefaultMatcher = matcher
	}
	return cfg, nil
}
