package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/image/font/opentype"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	rootpkg "nathanmyers.co/siteassets"
	"nathanmyers.co/siteassets/internal/atomicfile"
	"nathanmyers.co/siteassets/internal/config"
	"nathanmyers.co/siteassets/internal/favicon"
	"nathanmyers.co/siteassets/internal/fontsrc"
	"nathanmyers.co/siteassets/internal/noise"
	"nathanmyers.co/siteassets/internal/subset"
	"nathanmyers.co/siteassets/internal/watch"
)

// watchQuiet is how long inputs must stay unchanged before a rebuild.
const watchQuiet = 300 * time.Millisecond

// ///////////////////////////////////////////////
// Config Adapters
// ///////////////////////////////////////////////

// noiseOptions maps [config.NoiseConfig] to [noise.Options]. Seed 0 means
// unseeded.
func noiseOptions(cfg *config.Config) noise.Options {
	return noise.Options{
		Size:   cfg.Noise.Size,
		Seed:   uint64(cfg.Noise.Seed),
		Seeded: cfg.Noise.Seed != 0,
	}
}

// faviconOptions maps [config.FaviconConfig] to [favicon.Options].
func faviconOptions(cfg *config.Config) favicon.Options {
	f := cfg.Favicon
	return favicon.Options{
		Style: favicon.Style{
			Canvas:       f.Canvas,
			Padding:      f.Padding,
			CornerRadius: f.CornerRadius,
			Background:   f.Background,
			Foreground:   f.Foreground,
			XAdjust:      f.XAdjust,
			YAdjust:      f.YAdjust,
		},
		Letters: f.Letters,
		Probe:   f.Probe,
		Blank:   f.BlankFrame,
	}
}

// fontSpec maps [config.FontConfig] to [fontsrc.Spec].
func fontSpec(cfg *config.Config) fontsrc.Spec {
	return fontsrc.Spec{Path: cfg.Font.Path, Fallback: cfg.Font.Fallback}
}

// ///////////////////////////////////////////////
// noise
// ///////////////////////////////////////////////

func noiseFlags(fs *flag.FlagSet) func(context.Context, *env) error {
	out := fs.String("out", "", "output path (default noise.out)")
	size := fs.Int("size", 0, "texture size in pixels (default noise.size)")
	seed := fs.Int64("seed", 0, "seed for a reproducible texture; 0 draws a fresh one (default noise.seed)")
	return func(ctx context.Context, e *env) error {
		set := setFlags(fs)
		if set["out"] {
			e.cfg.Noise.Out = absPath(*out)
		}
		if set["size"] {
			e.cfg.Noise.Size = *size
		}
		if set["seed"] {
			e.cfg.Noise.Seed = *seed
		}
		if err := e.cfg.Validate(); err != nil {
			return err
		}
		return runNoise(e)
	}
}

func runNoise(e *env) error {
	res, err := noise.WriteFile(e.cfg.Path(e.cfg.Noise.Out), noiseOptions(e.cfg))
	if err != nil {
		return fmt.Errorf("noise: %w", err)
	}
	fmt.Fprintf(e.stdout, "Generated %s (%dx%d grayscale noise)\n", display(res.Path), res.Width, res.Height)
	return nil
}

// ///////////////////////////////////////////////
// favicon
// ///////////////////////////////////////////////

func faviconFlags(fs *flag.FlagSet) func(context.Context, *env) error {
	fontPath := fs.String("font", "", "font file (default font.path)")
	out := fs.String("out", "", "output directory (default favicon.out_dir)")
	return func(ctx context.Context, e *env) error {
		set := setFlags(fs)
		if set["font"] {
			e.cfg.Font.Path = absPath(*fontPath)
		}
		if set["out"] {
			e.cfg.Favicon.OutDir = absPath(*out)
		}
		if err := e.cfg.Validate(); err != nil {
			return err
		}
		return runFavicon(ctx, e)
	}
}

func runFavicon(ctx context.Context, e *env) error {
	cfg := e.cfg
	data, origin, err := fontsrc.Resolve(ctx, fontSpec(cfg), cfg.Root().Dir, cfg.Path(cfg.Font.CacheDir))
	if err != nil {
		return fmt.Errorf("favicon: %w", err)
	}
	otFont, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("favicon: parse font: %w", err)
	}
	slog.Debug("favicon font loaded", "origin", origin, "bytes", len(data))

	opts := faviconOptions(cfg)
	dir := cfg.Path(cfg.Favicon.OutDir)
	rep, err := favicon.Generate(dir, opts, otFont)
	if err != nil {
		return fmt.Errorf("favicon: %w", err)
	}

	probe := opts.Probe
	if probe == "" {
		probe = "M"
	}
	w := e.stdout
	fmt.Fprintf(w, "Canvas: %dx%dpx  |  '%s' ink: %dx%dpx\n", opts.Style.Canvas, opts.Style.Canvas, probe, rep.ProbeW, rep.ProbeH)
	for _, f := range rep.Frames {
		label := f.Letter
		if label == "" {
			label = "blank"
		}
		fmt.Fprintf(w, "  saved %s  (%s)\n", f.Name, label)
	}
	fmt.Fprintf(w, "\nDone -- %d frames in %s\n", len(rep.Frames), display(dir))
	return nil
}

// ///////////////////////////////////////////////
// subset
// ///////////////////////////////////////////////

func subsetFlags(fs *flag.FlagSet) func(context.Context, *env) error {
	in := fs.String("in", "", "input font or glob (default subset.inputs)")
	out := fs.String("out", "", "output path for a single input (default subset.output)")
	return func(ctx context.Context, e *env) error {
		set := setFlags(fs)
		if set["in"] {
			e.cfg.Subset.Inputs = []string{absPath(*in)}
		}
		if set["out"] {
			e.cfg.Subset.Output = absPath(*out)
		}
		if err := e.cfg.Validate(); err != nil {
			return err
		}
		return runSubset(e)
	}
}

func runSubset(e *env) error {
	cfg := e.cfg
	inputs, err := cfg.SubsetInputs()
	if err != nil {
		return fmt.Errorf("subset: %w", err)
	}
	cs, err := cfg.SubsetCharset()
	if err != nil {
		return fmt.Errorf("subset: %w", err)
	}

	p := message.NewPrinter(language.English)
	for _, in := range inputs {
		out := cfg.SubsetOutput(in, len(inputs))
		fmt.Fprintf(e.stdout, "Subsetting %s...\n", display(in))
		fmt.Fprintf(e.stdout, "Including %d characters\n", cs.Len())
		res, err := subset.WriteFile(in, out, cs)
		if err != nil {
			return fmt.Errorf("subset: %w", err)
		}
		p.Fprintf(e.stdout, "Created %s (%d bytes)\n", display(res.Output), res.Bytes)
	}
	return nil
}

// ///////////////////////////////////////////////
// all
// ///////////////////////////////////////////////

func allFlags(fs *flag.FlagSet) func(context.Context, *env) error {
	watchMode := fs.Bool("watch", false, "rebuild whenever the config or an input font changes")
	return func(ctx context.Context, e *env) error {
		err := buildAll(ctx, e)
		if !*watchMode {
			return err
		}
		// An interrupt is how watch mode ends.
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			slog.Error("build failed", "error", err)
		}
		if err := watchAll(ctx, e); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// buildAll runs every generator. It keeps going past a failing generator
// and returns all failures joined.
func buildAll(ctx context.Context, e *env) error {
	var errs []error
	for _, step := range []func() error{
		func() error { return runNoise(e) },
		func() error { return runFavicon(ctx, e) },
		func() error { return runSubset(e) },
	} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// watchInputs lists the files whose change triggers a rebuild.
func watchInputs(e *env) []string {
	files := []string{absPath(e.configPath)}
	if e.cfg.Font.Path != "" {
		files = append(files, e.cfg.Path(e.cfg.Font.Path))
	}
	if inputs, err := e.cfg.SubsetInputs(); err == nil {
		files = append(files, inputs...)
	}
	return files
}

// watchAll rebuilds on every change to the watched inputs until ctx is
// cancelled. When a reload changes the input list, the watcher is rebuilt
// over the new files.
func watchAll(ctx context.Context, e *env) error {
	slog.Info("watching for changes", "config", display(e.configPath))
	for {
		files := watchInputs(e)
		restart, err := watchFiles(ctx, e, files)
		if err != nil || !restart {
			return err
		}
		slog.Info("watched inputs changed", "files", len(watchInputs(e)))
	}
}

// watchFiles runs one watch session over files. It reports restart when a
// rebuild left the config pointing at a different set of inputs.
func watchFiles(ctx context.Context, e *env, files []string) (restart bool, err error) {
	w, err := watch.New(files...)
	if err != nil {
		return false, fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	if w.Polling() {
		slog.Info("using polling mode for file watching")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	err = watch.Run(runCtx, w.Events(), watchQuiet, func(ctx context.Context) error {
		slog.Info("inputs changed, rebuilding")
		if err := e.loadConfig(); err != nil {
			return err
		}
		err := buildAll(ctx, e)
		if !slices.Equal(watchInputs(e), files) {
			restart = true
			cancel()
		}
		return err
	})
	if restart && ctx.Err() == nil {
		return true, nil
	}
	return false, err
}

// ///////////////////////////////////////////////
// init / version
// ///////////////////////////////////////////////

func initFlags(fs *flag.FlagSet) func(context.Context, *env) error {
	force := fs.Bool("force", false, "overwrite an existing config file")
	return func(ctx context.Context, e *env) error {
		return runInit(e.stdout, e.configPath, *force)
	}
}

func runInit(w io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	if err := atomicfile.WriteAll(path, rootpkg.DefaultConfigTOML, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	fmt.Fprintf(w, "Wrote %s\n", display(path))
	return nil
}

func versionFlags(fs *flag.FlagSet) func(context.Context, *env) error {
	return func(ctx context.Context, e *env) error {
		fmt.Fprintf(e.stdout, "siteassets %s\n", resolveVersion())
		return nil
	}
}

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

// setFlags returns the names of flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// absPath makes a command-line path absolute so it resolves against the
// working directory instead of the config root.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// display shortens p to a path relative to the working directory when p
// lives below it.
func display(p string) string {
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	abs := absPath(p)
	rel, err := filepath.Rel(wd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}
