// Package config loads the engine configuration file used by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdpipe/internal/fileutil"
	"github.com/alnah/go-mdpipe/internal/render"
	"github.com/alnah/go-mdpipe/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxStyleNameLength = 100
)

// Log levels and formats accepted by the log section.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

// Config holds the engine configuration.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
	Style  StyleConfig  `yaml:"style"`
	Log    LogConfig    `yaml:"log"`
}

// InputConfig defines the source root.
type InputConfig struct {
	Root string `yaml:"root"` // Source root items and assets are read from
}

// OutputConfig defines the destination root.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Destination directory (default: "dist")
}

// RenderConfig defines Markdown rendering options.
type RenderConfig struct {
	HardWraps      bool   `yaml:"hardWraps"`
	UnsafeHTML     bool   `yaml:"unsafeHTML"` // Comment tags need raw HTML to reach the output
	Highlight      bool   `yaml:"highlight"`
	HighlightStyle string `yaml:"highlightStyle"` // Chroma style, empty = CSS classes
	LineNumbers    bool   `yaml:"lineNumbers"`
	Standalone     bool   `yaml:"standalone"` // Wrap outputs in a full HTML document
}

// StyleConfig defines the stylesheet injected into standalone documents.
type StyleConfig struct {
	Name     string `yaml:"name"`     // Style name without .css (empty = none)
	BasePath string `yaml:"basePath"` // Custom asset directory (empty = embedded only)
}

// LogConfig defines structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Options converts the section to renderer options.
func (r RenderConfig) Options() render.Options {
	return render.Options{
		HardWraps:   r.HardWraps,
		UnsafeHTML:  r.UnsafeHTML,
		Highlight:   r.Highlight,
		Style:       r.HighlightStyle,
		LineNumbers: r.LineNumbers,
		Standalone:  r.Standalone,
	}
}

// Validate checks field lengths and enumerated values. Called by
// LoadConfig, but available for configs built in code.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.root", c.Input.Root, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("style.name", c.Style.Name, MaxStyleNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("style.basePath", c.Style.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.highlightStyle", c.Render.HighlightStyle, MaxStyleNameLength); err != nil {
		return err
	}

	if s := c.Render.HighlightStyle; s != "" && !render.IsHighlightStyle(s) {
		return fmt.Errorf("%w: render.highlightStyle: unknown style %q", ErrInvalidValue, s)
	}
	if err := validateOneOf("log.level", c.Log.Level, LogLevels); err != nil {
		return err
	}
	if err := validateOneOf("log.format", c.Log.Format, LogFormats); err != nil {
		return err
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateOneOf accepts an empty value or one of allowed, case-insensitively.
func validateOneOf(fieldName, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: %q (must be one of %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{Root: "."},
		Output: OutputConfig{Dir: "dist"},
		Render: RenderConfig{UnsafeHTML: true, Highlight: true},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// userConfigDir is swapped in tests.
var userConfigDir = os.UserConfigDir

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdpipe/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if dir, err := userConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(dir, "go-mdpipe", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
