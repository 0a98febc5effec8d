// Package config loads naimeta settings from a TOML file with env overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/naimeta/constants"
	"github.com/sagan/naimeta/features/export"
	"github.com/sagan/naimeta/features/imagemeta"
	"github.com/sagan/naimeta/features/thumbnail"
	"github.com/sagan/naimeta/util"
)

type Config struct {
	Library          string `toml:"library"` // sqlite database file
	Workers          int    `toml:"workers"`
	LogLevel         string `toml:"log_level"`
	Locale           string `toml:"locale"`       // export headers: en | ja
	TextCharset      string `toml:"text_charset"` // latin1 | utf8 | auto
	Stealth          bool   `toml:"stealth"`
	ThumbnailSize    int    `toml:"thumbnail_size"`
	ThumbnailQuality int    `toml:"thumbnail_quality"`
}

// Dir returns the naimeta directory under the user config dir.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.Debugf("user config dir: %v", err)
		dir = "."
	}
	return filepath.Join(dir, constants.APP_NAME)
}

// DefaultConfigPath returns $NAIMETA_CONFIG, or config.toml under Dir().
func DefaultConfigPath() string {
	if path := os.Getenv(constants.ENV_CONFIG); path != "" {
		return path
	}
	return filepath.Join(Dir(), constants.CONFIG_FILENAME)
}

func Default() *Config {
	return &Config{
		Library:          filepath.Join(Dir(), constants.LIBRARY_FILENAME),
		Workers:          runtime.NumCPU(),
		LogLevel:         "info",
		Locale:           export.LocaleEn,
		TextCharset:      string(imagemeta.CharsetLatin1),
		Stealth:          true,
		ThumbnailSize:    thumbnail.DefaultMaxSize,
		ThumbnailQuality: thumbnail.DefaultQuality,
	}
}

// Load reads path (DefaultConfigPath() if empty) over the defaults, then applies env overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg := Default()
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		if err := toml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(constants.ENV_LIBRARY); v != "" {
		c.Library = v
	}
	c.Workers = util.ParseInt(os.Getenv(constants.ENV_WORKERS), c.Workers)
	if v := os.Getenv(constants.ENV_LOCALE); v != "" {
		c.Locale = v
	}
	if v := os.Getenv(constants.ENV_LOG_LEVEL); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Library) == "" {
		errs = append(errs, errors.New("library must not be empty"))
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := export.ParseLocale(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale: %w", err))
	}
	if _, ok := imagemeta.ParseTextCharset(c.TextCharset); !ok {
		errs = append(errs, fmt.Errorf("text_charset: invalid value %q", c.TextCharset))
	}
	if c.ThumbnailSize <= 0 {
		errs = append(errs, fmt.Errorf("thumbnail_size must be positive, got %d", c.ThumbnailSize))
	}
	if c.ThumbnailQuality < 1 || c.ThumbnailQuality > 100 {
		errs = append(errs, fmt.Errorf("thumbnail_quality must be 1-100, got %d", c.ThumbnailQuality))
	}
	return errors.Join(errs...)
}

// Charset returns the parsed TextCharset. Validate has already checked it.
func (c *Config) Charset() imagemeta.TextCharset {
	charset, _ := imagemeta.ParseTextCharset(c.TextCharset)
	return charset
}

func (c *Config) ExtractorOptions() imagemeta.Options {
	return imagemeta.Options{Charset: c.Charset(), DisableStealth: !c.Stealth}
}

func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
