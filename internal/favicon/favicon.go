// Package favicon renders the animated favicon frames for the site.
//
// Each letter of a word gets its own frame, drawn in a single font size
// chosen so the probe letter (the widest glyph in a monospace face) fits
// inside the padded canvas. An optional trailing blank frame breaks up the
// loop so that the last and first letters do not run together.
//
// Output is frame-0.png ... frame-N.png in the target directory.
package favicon

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"golang.org/x/image/font/opentype"
	"nathanmyers.co/siteassets/internal/atomicfile"
	"nathanmyers.co/siteassets/internal/logger"
)

// Options selects what [Generate] renders.
type Options struct {
	Style Style
	// Letters are rendered one per frame, in order.
	Letters string
	// Probe is the text used to choose the font size.
	Probe string
	// Blank appends a background-only frame after the letters.
	Blank bool
}

// DefaultOptions returns the NATHAN sequence with a blank frame.
func DefaultOptions() Options {
	return Options{
		Style:   DefaultStyle(),
		Letters: "NATHAN",
		Probe:   "M",
		Blank:   true,
	}
}

// Frame describes one written frame.
type Frame struct {
	// Name is the file name, e.g. "frame-0.png".
	Name string
	// Letter is the rendered letter, empty for the blank frame.
	Letter string
	// Path is the full output path.
	Path string
}

// Report summarizes a [Generate] run.
type Report struct {
	// FontSize is the chosen size in points.
	FontSize int
	// ProbeW and ProbeH are the probe's ink dimensions at FontSize.
	ProbeW, ProbeH int
	Frames         []Frame
}

// FrameName returns the file name for frame index i.
func FrameName(i int) string {
	return fmt.Sprintf("frame-%d.png", i)
}

// Generate renders every frame for opts with otFont and writes them to dir.
func Generate(dir string, opts Options, otFont *opentype.Font) (*Report, error) {
	if opts.Letters == "" && !opts.Blank {
		return nil, fmt.Errorf("nothing to render: no letters and no blank frame")
	}
	maxW, maxH := opts.Style.InkBox()
	if maxW <= 0 || maxH <= 0 {
		return nil, fmt.Errorf("padding %d leaves no room on a %dpx canvas", opts.Style.Padding, opts.Style.Canvas)
	}

	probe := opts.Probe
	if probe == "" {
		probe = "M"
	}
	face, size, err := LargestFittingFace(otFont, probe, maxW, maxH)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	rep := &Report{FontSize: size}
	rep.ProbeW, rep.ProbeH = InkSize(face, probe)
	slog.Debug("favicon font size chosen", "size", size, "probe", probe, "ink_w", rep.ProbeW, "ink_h", rep.ProbeH)

	for _, r := range opts.Letters {
		letter := string(r)
		img, err := RenderFrame(opts.Style, letter, face)
		if err != nil {
			return nil, fmt.Errorf("render %q: %w", letter, err)
		}
		f, err := writeFrame(dir, len(rep.Frames), img)
		if err != nil {
			return nil, err
		}
		f.Letter = letter
		rep.Frames = append(rep.Frames, f)
		logger.Trace(slog.Default(), "frame written", "name", f.Name, "letter", letter)
	}

	if opts.Blank {
		img, err := RenderBlank(opts.Style)
		if err != nil {
			return nil, fmt.Errorf("render blank: %w", err)
		}
		f, err := writeFrame(dir, len(rep.Frames), img)
		if err != nil {
			return nil, err
		}
		rep.Frames = append(rep.Frames, f)
	}
	return rep, nil
}

func writeFrame(dir string, i int, img image.Image) (Frame, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return Frame{}, err
	}
	name := FrameName(i)
	path := filepath.Join(dir, name)
	if err := atomicfile.WriteAll(path, data, 0o644); err != nil {
		return Frame{}, fmt.Errorf("write %s: %w", path, err)
	}
	return Frame{Name: name, Path: path}, nil
}
