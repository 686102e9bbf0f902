package config

import "nathanmyers.co/siteassets/internal/paths"

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated siteassets.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "favicon.canvas")
// to their [FieldDoc] entries.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// ── Log ──────────────────────────────────────────────────────
	"log.level": {
		Comment:      "Minimum log level: trace, debug, info, warn, error",
		Alternatives: []string{`level = "debug"`},
	},
	"log.file": {
		Comment:      "Optional log file, rotated at max_size_mb. Logs always go to stderr.",
		Alternatives: []string{`file = "` + paths.LogFile + `"`},
	},
	"log.max_size_mb": {},

	// ── Font ─────────────────────────────────────────────────────
	"font.path": {
		Comment: "Font used for favicon letters. TTF, OTF, WOFF and WOFF2 are accepted.",
	},
	"font.fallback": {
		Comment:      "Downloaded from Google Fonts when path does not exist.\nFormat: google:FAMILY:WEIGHT",
		Alternatives: []string{`fallback = "google:Press Start 2P:400"`},
	},
	"font.cache_dir": {
		Comment: "Where downloaded fallback fonts are kept between runs",
	},

	// ── Favicon ──────────────────────────────────────────────────
	"favicon.out_dir": {
		Comment: "Frames are written as frame-0.png, frame-1.png, ... in this directory",
	},
	"favicon.canvas": {
		Comment: "Square frame size in pixels",
	},
	"favicon.padding": {
		Comment: "Minimum gap between the letter and each edge.\nThe font size is the largest that fits probe inside canvas - 2*padding.",
	},
	"favicon.corner_radius": {
		Comment:      "Rounded corner radius of the background square (0 = sharp)",
		Alternatives: []string{"corner_radius = 0"},
	},
	"favicon.background": {
		Comment: "Colors as #RRGGBB or #RRGGBBAA",
	},
	"favicon.foreground": {},
	"favicon.letters": {
		Comment: "One frame per letter, in order",
	},
	"favicon.probe": {
		Comment: "Text the font size is fitted to. Use the widest glyph in letters.",
	},
	"favicon.x_adjust": {
		Comment: "Pixel nudges applied after centering (positive = right/down)",
	},
	"favicon.y_adjust": {},
	"favicon.blank_frame": {
		Comment: "Append a background-only frame after the letters",
	},

	// ── Noise ────────────────────────────────────────────────────
	"noise.out": {
		Comment: "Grayscale noise texture written as a raw 8-bit PNG",
	},
	"noise.size": {
		Comment: "Texture edge length in pixels",
	},
	"noise.seed": {
		Comment:      "Fixed seed for a reproducible texture; 0 draws a new one every run",
		Alternatives: []string{"seed = 42"},
	},

	// ── Subset ───────────────────────────────────────────────────
	"subset.inputs": {
		Comment:      "Fonts to subset. Paths or doublestar globs.",
		Alternatives: []string{`inputs = ["fonts/**/*.ttf"]`},
	},
	"subset.output": {
		Comment: "Output path when inputs resolve to a single font.\nA .ttf or .otf extension writes plain SFNT instead of WOFF2.",
	},
	"subset.out_dir": {
		Comment: "Used with suffix when several fonts match: <out_dir>/<stem><suffix>.woff2",
	},
	"subset.suffix": {},
	"subset.extra_ranges": {
		Comment: "Code points added to the site charset, e.g. \"U+2500-257F,U+25A0\"",
	},
}
