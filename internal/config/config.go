package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full editor configuration.
type Config struct {
	Editor    EditorConfig      `toml:"editor"`
	Highlight HighlightConfig   `toml:"highlight"`
	Logging   LoggingConfig     `toml:"logging"`
	Servers   map[string]string `toml:"servers"`
}

// EditorConfig holds text-editing settings.
type EditorConfig struct {
	// TabSize is the indent width used when the file's own
	// indentation cannot be guessed.
	TabSize int `toml:"tab_size"`

	// ScrollLines is the number of lines scrolled per wheel roll.
	ScrollLines int `toml:"scroll_lines"`
}

// HighlightConfig holds syntax-highlighting settings.
type HighlightConfig struct {
	// ChunkLines is the highlight cache granularity in lines.
	ChunkLines int `toml:"chunk_lines"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum level written: debug, info, warn, error.
	Level string `toml:"level"`

	// File is the log destination path; empty discards logs, since
	// stderr is occupied by the terminal UI.
	File string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			TabSize:     4,
			ScrollLines: 3,
		},
		Highlight: HighlightConfig{
			ChunkLines: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Servers: map[string]string{},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kiln", "config.toml")
}

// Load reads the file at path over the defaults and applies
// environment overrides. A missing file is not an error; a malformed
// one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// applyEnv overrides fields from KILN_-prefixed environment
// variables. Unparseable values are ignored rather than fatal.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("KILN_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv("KILN_LOG_FILE"); ok {
		c.Logging.File = v
	}
	if n, ok := envInt("KILN_TAB_SIZE"); ok {
		c.Editor.TabSize = n
	}
	if n, ok := envInt("KILN_SCROLL_LINES"); ok {
		c.Editor.ScrollLines = n
	}
	if n, ok := envInt("KILN_CHUNK_LINES"); ok {
		c.Highlight.ChunkLines = n
	}
}

func envInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// normalize clamps nonsensical values back to the defaults.
func (c *Config) normalize() {
	def := Default()
	if c.Editor.TabSize <= 0 {
		c.Editor.TabSize = def.Editor.TabSize
	}
	if c.Editor.ScrollLines <= 0 {
		c.Editor.ScrollLines = def.Editor.ScrollLines
	}
	if c.Highlight.ChunkLines <= 0 {
		c.Highlight.ChunkLines = def.Highlight.ChunkLines
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Logging.Level = def.Logging.Level
	}
	if c.Servers == nil {
		c.Servers = map[string]string{}
	}
}

// ServerExecutable returns the configured language-server executable
// for a language identifier, or fallback when none is set.
func (c *Config) ServerExecutable(language, fallback string) string {
	if exe, ok := c.Servers[language]; ok {
		return exe
	}
	return fallback
}
