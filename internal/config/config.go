// Package config provides configuration loading and defaults for the site
// asset tools.
//
// Configuration is read from a TOML file at the site root. Every field has a
// default matching the site's current assets, so a missing file, or a file
// that sets only a few keys, still produces a complete configuration.
// Relative paths in the file resolve against the file's directory.
package config

//go:generate go run ../../cmd/genconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"nathanmyers.co/siteassets/internal/fontsrc"
	"nathanmyers.co/siteassets/internal/paths"
	"nathanmyers.co/siteassets/internal/subset"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 1

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level configuration.
type Config struct {
	// Version is the config schema version.
	Version int `toml:"version"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Font holds the source font shared by the favicon renderer.
	Font FontConfig `toml:"font"`
	// Favicon holds favicon frame settings.
	Favicon FaviconConfig `toml:"favicon"`
	// Noise holds noise texture settings.
	Noise NoiseConfig `toml:"noise"`
	// Subset holds web font subsetting settings.
	Subset SubsetConfig `toml:"subset"`

	// root is the directory relative paths resolve against.
	root string
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File is an optional log file; empty logs to stderr only.
	File string `toml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// FontConfig names the font used for rendering.
type FontConfig struct {
	// Path is the local font file (TTF, OTF, WOFF or WOFF2).
	Path string `toml:"path"`
	// Fallback is a Google Fonts spec (e.g. "google:VT323:400") used when
	// Path does not exist.
	Fallback string `toml:"fallback,omitempty"`
	// CacheDir stores downloaded fallback fonts.
	CacheDir string `toml:"cache_dir"`
}

// FaviconConfig holds favicon frame settings.
type FaviconConfig struct {
	// OutDir receives frame-0.png ... frame-N.png.
	OutDir string `toml:"out_dir"`
	// Canvas is the square frame size in pixels.
	Canvas int `toml:"canvas"`
	// Padding is the minimum gap between the letter ink and each edge.
	Padding int `toml:"padding"`
	// CornerRadius rounds the background square.
	CornerRadius int `toml:"corner_radius"`
	// Background is the square's hex color.
	Background string `toml:"background"`
	// Foreground is the letter's hex color.
	Foreground string `toml:"foreground"`
	// Letters are rendered one per frame.
	Letters string `toml:"letters"`
	// Probe is the text the font size is fitted to.
	Probe string `toml:"probe"`
	// XAdjust nudges letters right (negative = left) after centering.
	XAdjust int `toml:"x_adjust"`
	// YAdjust nudges letters down (negative = up) after centering.
	YAdjust int `toml:"y_adjust"`
	// BlankFrame appends a background-only frame after the letters.
	BlankFrame bool `toml:"blank_frame"`
}

// NoiseConfig holds noise texture settings.
type NoiseConfig struct {
	// Out is the texture path.
	Out string `toml:"out"`
	// Size is the square texture edge in pixels.
	Size int `toml:"size"`
	// Seed makes the texture reproducible; 0 draws a fresh seed per run.
	Seed int64 `toml:"seed"`
}

// SubsetConfig holds web font subsetting settings.
type SubsetConfig struct {
	// Inputs are font paths or doublestar glob patterns.
	Inputs []string `toml:"inputs"`
	// Output is the output path when Inputs resolves to exactly one font.
	Output string `toml:"output,omitempty"`
	// OutDir receives <stem><suffix>.woff2 for each input when Output is
	// empty or more than one font matches.
	OutDir string `toml:"out_dir"`
	// Suffix is appended to each input's stem in OutDir.
	Suffix string `toml:"suffix"`
	// ExtraRanges adds code points to the site charset, e.g. "U+2500-257F".
	ExtraRanges string `toml:"extra_ranges,omitempty"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with the site's defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 5,
		},
		Font: FontConfig{
			Path:     paths.FontFile,
			CacheDir: paths.FontCache,
		},
		Favicon: FaviconConfig{
			OutDir:       paths.FaviconDir,
			Canvas:       64,
			Padding:      8,
			CornerRadius: 12,
			Background:   "#230808",
			Foreground:   "#FFE178",
			Letters:      "NATHAN",
			Probe:        "M",
			BlankFrame:   true,
		},
		Noise: NoiseConfig{
			Out:  paths.NoiseFile,
			Size: 64,
		},
		Subset: SubsetConfig{
			Inputs: []string{paths.FontFile},
			Output: paths.SubsetFile,
			OutDir: paths.FontsDir,
			Suffix: "-subset",
		},
	}
}

// ExampleConfig returns a Config suitable for generating
// siteassets.default.toml. It shows the optional keys with example values.
func ExampleConfig() *Config {
	cfg := DefaultConfig()
	cfg.Font.Fallback = "google:VT323:400"
	cfg.Subset.ExtraRanges = "U+2500-257F"
	return cfg
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// ResolvePath makes path absolute. A directory names the site root and
// resolves to the config file inside it.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
		return paths.Root{Dir: abs}.Config(), nil
	}
	return abs, nil
}

// Load reads the configuration file at path over [DefaultConfig]. path may
// also be the site directory (see [ResolvePath]). If the file doesn't exist,
// the defaults are returned rooted at its directory.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	abs, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	cfg.root = filepath.Dir(abs)

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Root returns the directory relative paths resolve against.
func (c *Config) Root() paths.Root {
	return paths.Root{Dir: c.root}
}

// Path resolves a configured path against the config root.
func (c *Config) Path(p string) string {
	return c.Root().Join(p)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// hexColorRe matches "#RRGGBB" and "#RRGGBBAA" with optional "#".
var hexColorRe = regexp.MustCompile(`^#?([0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Version > CurrentVersion {
		return fmt.Errorf("config version %d is newer than supported version %d", c.Version, CurrentVersion)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.File != "" && c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	if c.Font.Path == "" && c.Font.Fallback == "" {
		return fmt.Errorf("font.path or font.fallback must be set")
	}
	if c.Font.Fallback != "" {
		if _, _, ok := fontsrc.ParseGoogleFontSpec(c.Font.Fallback); !ok {
			return fmt.Errorf("invalid font.fallback %q: must look like google:FAMILY:WEIGHT", c.Font.Fallback)
		}
	}

	f := c.Favicon
	if f.Canvas <= 0 {
		return fmt.Errorf("favicon.canvas must be > 0, got %d", f.Canvas)
	}
	if f.Padding < 0 || 2*f.Padding >= f.Canvas {
		return fmt.Errorf("favicon.padding %d leaves no room on a %dpx canvas", f.Padding, f.Canvas)
	}
	if f.CornerRadius < 0 {
		return fmt.Errorf("favicon.corner_radius must be >= 0, got %d", f.CornerRadius)
	}
	if !hexColorRe.MatchString(f.Background) {
		return fmt.Errorf("invalid favicon.background %q: must be #RRGGBB or #RRGGBBAA", f.Background)
	}
	if !hexColorRe.MatchString(f.Foreground) {
		return fmt.Errorf("invalid favicon.foreground %q: must be #RRGGBB or #RRGGBBAA", f.Foreground)
	}
	if f.Letters == "" && !f.BlankFrame {
		return fmt.Errorf("favicon.letters is empty and blank_frame is off: nothing to render")
	}

	if c.Noise.Size <= 0 {
		return fmt.Errorf("noise.size must be > 0, got %d", c.Noise.Size)
	}
	if c.Noise.Seed < 0 {
		return fmt.Errorf("noise.seed must be >= 0, got %d", c.Noise.Seed)
	}

	if len(c.Subset.Inputs) == 0 {
		return fmt.Errorf("subset.inputs must list at least one font")
	}
	for _, pattern := range c.Subset.Inputs {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return fmt.Errorf("invalid subset.inputs pattern %q", pattern)
		}
	}
	if _, err := subset.ParseRanges(c.Subset.ExtraRanges); err != nil {
		return fmt.Errorf("invalid subset.extra_ranges: %w", err)
	}
	return nil
}

// ///////////////////////////////////////////////
// Subset Helpers
// ///////////////////////////////////////////////

// SubsetInputs expands Subset.Inputs into font paths. Plain paths are kept
// even when missing so the caller reports them; glob patterns are expanded
// with doublestar. The result is sorted and deduplicated.
func (c *Config) SubsetInputs() ([]string, error) {
	var out []string
	for _, pattern := range c.Subset.Inputs {
		full := c.Path(pattern)
		if !hasMeta(pattern) {
			out = append(out, full)
			continue
		}
		matches, err := doublestar.FilepathGlob(full, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("subset.inputs pattern %q matched no fonts", pattern)
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// SubsetOutput returns the output path for input, given how many inputs are
// being processed.
func (c *Config) SubsetOutput(input string, count int) string {
	if c.Subset.Output != "" && count == 1 {
		return c.Path(c.Subset.Output)
	}
	return subset.OutputName(input, c.Path(c.Subset.OutDir), c.Subset.Suffix)
}

// SubsetCharset returns the site charset plus Subset.ExtraRanges.
func (c *Config) SubsetCharset() (subset.Charset, error) {
	cs := subset.DefaultCharset()
	extra, err := subset.ParseRanges(c.Subset.ExtraRanges)
	if err != nil {
		return nil, err
	}
	for r := range extra {
		cs.Add(r)
	}
	return cs, nil
}

// hasMeta reports whether a path contains glob metacharacters.
func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
