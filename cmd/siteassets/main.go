// Package main implements siteassets, the generator for the site's static
// image and font assets: the grayscale noise texture, the animated favicon
// frames, and the subset web font.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"nathanmyers.co/siteassets/internal/config"
	"nathanmyers.co/siteassets/internal/logger"
	"nathanmyers.co/siteassets/internal/paths"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags (-X main.version=...).
// When unset, resolveVersion falls back to the VCS info embedded by the
// Go toolchain.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags it is returned as-is; otherwise the VCS revision and dirty state
// produce a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Commands
// ///////////////////////////////////////////////

// command is one subcommand. flags registers its own flags on fs and
// returns the function that runs it once flags are parsed.
type command struct {
	name  string
	usage string
	flags func(fs *flag.FlagSet) func(ctx context.Context, e *env) error
}

var commands = []command{
	{"noise", "generate the grayscale noise texture", noiseFlags},
	{"favicon", "render the animated favicon frames", faviconFlags},
	{"subset", "subset fonts to the site charset as WOFF2", subsetFlags},
	{"all", "run noise, favicon and subset", allFlags},
	{"init", "write the default siteassets.toml", initFlags},
	{"version", "print the version", versionFlags},
}

// env is what a running subcommand sees.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	logLevel   string
	cfg        *config.Config
}

// loadConfig (re)reads the config file and applies the -log-level override.
func (e *env) loadConfig() error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
	}
	e.cfg = cfg
	return nil
}

// exitInterrupted is the shell convention for a process stopped by SIGINT.
const exitInterrupted = 130

// errUsage marks errors already reported with the usage text.
var errUsage = errors.New("usage")

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	ctx, stop := signalContext(context.Background())
	defer stop()
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := dispatch(ctx, args, stdout, stderr)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "interrupted")
		return exitInterrupted
	case errors.Is(err, errUsage):
		return 1
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}

func dispatch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return errUsage
		}
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	fs := flag.NewFlagSet("siteassets "+cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", paths.ConfigFile, "path to the config file or the site directory holding it")
	logLevel := fs.String("log-level", "", "override log.level (trace, debug, info, warn, error)")
	exec := cmd.flags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%s: unexpected arguments: %s", cmd.name, strings.Join(fs.Args(), " "))
	}

	cfgPath, err := config.ResolvePath(*configPath)
	if err != nil {
		return err
	}
	e := &env{stdout: stdout, stderr: stderr, configPath: cfgPath, logLevel: *logLevel}
	if cmd.name == "init" || cmd.name == "version" {
		return exec(ctx, e)
	}

	if err := e.loadConfig(); err != nil {
		return err
	}
	cfg := e.cfg

	logFile := ""
	if cfg.Log.File != "" {
		logFile = cfg.Path(cfg.Log.File)
	}
	log, closer := logger.Setup(stderr, logger.ParseLevel(cfg.Log.Level), logFile, cfg.Log.MaxSizeMB)
	defer closer.Close()
	prev := slog.Default()
	slog.SetDefault(log)
	defer slog.SetDefault(prev)

	slog.Debug("siteassets starting", "command", cmd.name, "version", resolveVersion(), "root", cfg.Root().Dir)
	return exec(ctx, e)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: siteassets <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every command accepts -config and -log-level. Run 'siteassets <command> -h' for its flags.")
}
