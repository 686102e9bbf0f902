// Package subset reduces a font to the characters the site actually uses
// and writes it as a web font.
//
// Runes are mapped to glyph IDs through the font's cmap; .notdef (glyph 0)
// is always kept. Runes the font cannot render are reported, not fatal.
package subset

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tdewolff/font"
	"nathanmyers.co/siteassets/internal/atomicfile"
	"nathanmyers.co/siteassets/internal/fontsrc"
	"nathanmyers.co/siteassets/internal/woff2"
)

// Report describes the outcome of subsetting.
type Report struct {
	// Requested is the number of runes asked for.
	Requested int
	// Mapped is the number of runes the font has glyphs for.
	Mapped int
	// Missing lists runes without a glyph, ascending.
	Missing []rune
	// Glyphs is the number of glyphs kept, .notdef included.
	Glyphs int
}

// GlyphIDs maps the charset through the font's cmap. The returned IDs are
// sorted, unique, and start with 0.
func GlyphIDs(sfnt *font.SFNT, cs Charset) ([]uint16, Report) {
	rep := Report{Requested: cs.Len()}
	ids := []uint16{0}
	for _, r := range cs.Runes() {
		gid := sfnt.GlyphIndex(r)
		if gid == 0 {
			rep.Missing = append(rep.Missing, r)
			continue
		}
		rep.Mapped++
		ids = append(ids, gid)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	rep.Glyphs = len(ids)
	return ids, rep
}

// Subset returns SFNT bytes holding only the glyphs for cs.
func Subset(sfntData []byte, cs Charset) ([]byte, Report, error) {
	sfnt, err := font.ParseSFNT(sfntData, 0)
	if err != nil {
		return nil, Report{}, fmt.Errorf("parse font: %w", err)
	}
	ids, rep := GlyphIDs(sfnt, cs)
	if rep.Mapped == 0 {
		return nil, rep, fmt.Errorf("font has none of the %d requested characters", rep.Requested)
	}
	sub, err := sfnt.Subset(ids, font.SubsetOptions{Tables: font.KeepMinTables})
	if err != nil {
		return nil, rep, fmt.Errorf("subset font: %w", err)
	}
	return sub.Write(), rep, nil
}

// Format is the output container of a subset font.
type Format string

const (
	FormatWOFF2 Format = "woff2"
	FormatSFNT  Format = "sfnt"
)

// FormatFor picks the output format from a file name: ".ttf" and ".otf"
// get plain SFNT, everything else WOFF2.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return FormatSFNT
	default:
		return FormatWOFF2
	}
}

// Result describes a written subset font.
type Result struct {
	Input  string
	Output string
	Format Format
	Bytes  int
	Report Report
}

// WriteFile loads the font at in (SFNT, WOFF, or WOFF2), subsets it to cs,
// and atomically writes it to out in the format implied by out's extension.
func WriteFile(in, out string, cs Charset) (*Result, error) {
	data, err := fontsrc.Load(in)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", in, err)
	}
	sub, rep, err := Subset(data, cs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in, err)
	}
	if len(rep.Missing) > 0 {
		slog.Warn("font lacks glyphs", "font", filepath.Base(in), "missing", len(rep.Missing), "runes", string(rep.Missing))
	}

	format := FormatFor(out)
	if format == FormatWOFF2 {
		if sub, err = woff2.Encode(sub); err != nil {
			return nil, fmt.Errorf("encode woff2: %w", err)
		}
	}
	if err := atomicfile.WriteAll(out, sub, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", out, err)
	}
	slog.Debug("subset written", "in", in, "out", out, "glyphs", rep.Glyphs, "bytes", len(sub))
	return &Result{Input: in, Output: out, Format: format, Bytes: len(sub), Report: rep}, nil
}

// OutputName derives an output path for in: outDir/<stem><suffix>.woff2.
func OutputName(in, outDir, suffix string) string {
	stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(outDir, stem+suffix+".woff2")
}
