// Package noise generates the tileable grayscale noise texture used for the
// site's CRT dithering overlay.
//
// Every sample is an independent uniform byte, so the texture has no
// structure at its edges and tiles seamlessly in both directions.
package noise

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"nathanmyers.co/siteassets/internal/atomicfile"
	"nathanmyers.co/siteassets/internal/rawpng"
)

// DefaultSize is the edge length in pixels of the generated square texture.
const DefaultSize = 64

// Options controls texture generation.
type Options struct {
	// Size is the square edge length in pixels.
	Size int
	// Seed makes the texture reproducible when Seeded is true.
	Seed uint64
	// Seeded selects Seed over a fresh random seed.
	Seeded bool
}

// Result describes a written texture.
type Result struct {
	Path   string
	Width  int
	Height int
	Bytes  int
}

// Source returns the random source for opts: PCG seeded from Seed when
// Seeded, otherwise from the runtime's random generator.
func (o Options) Source() rand.Source {
	if o.Seeded {
		return rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15)
	}
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// Generate returns a size x size pixel matrix of uniform random samples
// drawn from src.
func Generate(size int, src rand.Source) ([][]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("noise size %d: %w", size, rawpng.ErrInvalidGeometry)
	}
	r := rand.New(src)
	rows := make([][]byte, size)
	for y := range rows {
		row := make([]byte, size)
		for x := range row {
			row[x] = byte(r.UintN(256))
		}
		rows[y] = row
	}
	return rows, nil
}

// Encode generates a texture for opts and returns its PNG bytes.
func Encode(opts Options) ([]byte, error) {
	pixels, err := Generate(opts.Size, opts.Source())
	if err != nil {
		return nil, err
	}
	return rawpng.Encode(opts.Size, opts.Size, pixels)
}

// WriteFile generates a texture and atomically writes it to path, creating
// the parent directory as needed.
func WriteFile(path string, opts Options) (Result, error) {
	data, err := Encode(opts)
	if err != nil {
		return Result{}, fmt.Errorf("encode noise: %w", err)
	}
	if err := atomicfile.WriteAll(path, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", path, err)
	}
	slog.Debug("noise written", "path", path, "size", opts.Size, "bytes", len(data), "seeded", opts.Seeded)
	return Result{Path: path, Width: opts.Size, Height: opts.Size, Bytes: len(data)}, nil
}
