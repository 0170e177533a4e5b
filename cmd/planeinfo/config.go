package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
)

// Config is the TOML configuration file.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Reader ReaderConfig `toml:"reader"`
}

// LogConfig selects where log messages go. Without a Logfile they are
// written to stderr.
type LogConfig struct {
	Logfile string
	MaxSize int    `toml:"max_log_size"`
	MaxAge  int    `toml:"max_log_age"`
	Level   string `toml:"level"`
}

// ReaderConfig holds reader and extraction settings.
type ReaderConfig struct {
	Charset   string `toml:"charset"`
	Format    string `toml:"format"`
	CacheSize int    `toml:"cache_size"`
	Workers   int    `toml:"workers"`
	Codec     string `toml:"codec"`
}

func defaultConfig() Config {
	return Config{
		Log:    LogConfig{MaxSize: 10, MaxAge: 7, Level: "info"},
		Reader: ReaderConfig{Charset: "iso-8859-1", Workers: 4, Codec: codecNone},
	}
}

// LoadConfig reads filename over the defaults. An empty name returns the
// defaults.
func LoadConfig(filename string) (Config, error) {
	c := defaultConfig()
	if filename == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(filename, &c)
	if err != nil {
		return c, fmt.Errorf("reading config %s: %w", filename, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return c, fmt.Errorf("config %s: unknown keys %v", filename, undecoded)
	}
	return c, c.Validate()
}

// Validate checks the settings that have a fixed set of values.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	if _, err := parseCharset(c.Reader.Charset); err != nil {
		return err
	}
	cd, err := newCodec(c.Reader.Codec)
	if err != nil {
		return err
	}
	cd.Close()
	if c.Reader.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Reader.Workers)
	}
	return nil
}

// Logger builds the logger, rotating through lumberjack when a log file is
// configured.
func (c LogConfig) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if c.Logfile != "" {
		w = &lumberjack.Logger{
			Filename: c.Logfile,
			MaxSize:  c.MaxSize, // megabytes
			MaxAge:   c.MaxAge,  // days
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

var charsets = map[string]*charmap.Charmap{
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

func parseCharset(name string) (*charmap.Charmap, error) {
	cm, ok := charsets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown charset %q", name)
	}
	return cm, nil
}
