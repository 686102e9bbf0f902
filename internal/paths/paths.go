// Package paths centralizes the file and directory names used by the asset
// tools. Every default location is defined here as the single source of
// truth; all of them are relative to the site root.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Config file names.
const (
	ConfigFile        = "siteassets.toml"
	DefaultConfigFile = "siteassets.default.toml"
	LogFile           = "siteassets.log"
)

// Input locations.
const (
	FontsDir  = "fonts"
	FontFile  = "fonts/BigBlueTerm437NerdFontMono-Regular.ttf"
	FontCache = "fonts/.cache"
)

// Output locations.
const (
	FaviconDir = "assets/img/favicon"
	NoiseFile  = "assets/img/noise.png"
	SubsetFile = "fonts/BigBlueTerm-subset.woff2"
)

// ///////////////////////////////////////////////
// Root
// ///////////////////////////////////////////////

// Root provides path construction rooted at the site directory.
type Root struct {
	Dir string
}

// Join resolves p against the root; absolute paths are returned unchanged.
func (r Root) Join(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.Dir, p)
}

// Config returns the full path to the config file.
func (r Root) Config() string { return r.Join(ConfigFile) }
