// Package fontsrc loads the font used by the asset tools.
//
// Resolution order:
//  1. Local file from [Spec.Path] (relative paths resolve against a root)
//  2. Google Fonts download from [Spec.Fallback] (e.g. "google:Inter:800")
//
// Web font containers (WOFF, WOFF2) are converted to SFNT so callers always
// get TrueType/OpenType bytes.
package fontsrc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/font"
)

// ErrNotFound reports that neither the local font nor a fallback is usable.
var ErrNotFound = errors.New("font not found")

// Spec names where a font comes from.
type Spec struct {
	// Path is a local font file path.
	Path string
	// Fallback is a "google:FAMILY:WEIGHT" spec tried when Path is missing.
	Fallback string
}

// Origin tells where resolved font bytes came from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginGoogle Origin = "google"
)

// Resolve returns SFNT bytes for spec using [DefaultFetcher].
func Resolve(ctx context.Context, spec Spec, root, cacheDir string) ([]byte, Origin, error) {
	return DefaultFetcher().Resolve(ctx, spec, root, cacheDir)
}

// Resolve returns SFNT bytes for spec, trying the local file before the
// Google Fonts fallback. cacheDir holds downloaded fonts.
func (f *Fetcher) Resolve(ctx context.Context, spec Spec, root, cacheDir string) ([]byte, Origin, error) {
	if spec.Path != "" {
		path := spec.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		data, err := Load(path)
		if err == nil {
			slog.Debug("font resolved", "path", path, "origin", OriginLocal)
			return data, OriginLocal, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", err
		}
		slog.Debug("local font missing", "path", path)
	}

	if spec.Fallback != "" {
		family, weight, ok := ParseGoogleFontSpec(spec.Fallback)
		if !ok {
			return nil, "", fmt.Errorf("invalid font fallback %q: expected google:FAMILY:WEIGHT", spec.Fallback)
		}
		slog.Info("fetching fallback font", "family", family, "weight", weight)
		data, err := f.Fetch(ctx, spec.Fallback, cacheDir)
		if err != nil {
			return nil, "", fmt.Errorf("google fonts fallback failed: %w", err)
		}
		return data, OriginGoogle, nil
	}

	if spec.Path != "" {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, spec.Path)
	}
	return nil, "", fmt.Errorf("%w: no font configured (set font.path or font.fallback)", ErrNotFound)
}

// Load reads a font file and converts WOFF/WOFF2 data to SFNT.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ToSFNT(path, data)
}

// ToSFNT converts web font data to SFNT when name or data indicate a WOFF
// or WOFF2 container; other data is returned unchanged.
func ToSFNT(name string, data []byte) ([]byte, error) {
	if !IsWebFont(name, data) {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert %s to sfnt: %w", name, err)
	}
	return sfnt, nil
}

// IsWebFont checks whether a font is WOFF or WOFF2 by extension or magic
// bytes ("wOFF" / "wOF2").
func IsWebFont(name string, data []byte) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".woff2") || strings.HasSuffix(lower, ".woff") {
		return true
	}
	if len(data) >= 4 && data[0] == 'w' && data[1] == 'O' && data[2] == 'F' && (data[3] == '2' || data[3] == 'F') {
		return true
	}
	return false
}
