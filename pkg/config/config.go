// Package config loads compiler settings from a YAML or TOML file.
//
//	# gosheet.yaml
//	locale: fr
//	log_level: debug
//	tokenizer: excel
//	isolated_cache: true
//
// The format is chosen by file extension: .yaml/.yml or .toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gosheet/pkg/cache"
	"github.com/sandrolain/gosheet/pkg/compiler"
	"github.com/sandrolain/gosheet/pkg/tokenizer"
)

// Tokenizer names.
const (
	TokenizerNative = "native"
	TokenizerExcel  = "excel"
)

// Config holds compiler and CLI settings.
type Config struct {
	// Locale is the BCP 47 tag used to render compile errors.
	Locale string `yaml:"locale" toml:"locale"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// Tokenizer is "native" or "excel".
	Tokenizer string `yaml:"tokenizer" toml:"tokenizer"`
	// IsolatedCache gives the compiler its own plan cache instead of the
	// process-wide one.
	IsolatedCache bool `yaml:"isolated_cache" toml:"isolated_cache"`
}

// Default returns the default settings.
func Default() Config {
	return Config{
		Locale:    "en",
		LogLevel:  "info",
		Tokenizer: TokenizerNative,
	}
}

// Load reads a configuration file. Unset fields keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Parse decodes data in format ("yaml", "yml" or "toml") and validates it.
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	case "toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("config: unknown key %q", undecoded[0].String())
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config: invalid locale %q: %w", c.Locale, err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Tokenizer {
	case TokenizerNative, TokenizerExcel:
	default:
		return fmt.Errorf("config: unknown tokenizer %q", c.Tokenizer)
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Tokenize returns the tokenizer the settings select.
func (c Config) Tokenize() tokenizer.Func {
	if c.Tokenizer == TokenizerExcel {
		return tokenizer.TokenizeExcel
	}
	return tokenizer.Tokenize
}

// Options translates the settings into compiler options.
func (c Config) Options(logger *slog.Logger) []compiler.Option {
	opts := []compiler.Option{compiler.WithLogger(logger), compiler.WithTokenizer(c.Tokenize())}
	if c.IsolatedCache {
		opts = append(opts, compiler.WithCache(cache.New[*compiler.Plan]()))
	}
	return opts
}
