// Package main is the entry point for the kiln editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tverras/kiln/internal/app"
	"github.com/tverras/kiln/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath, path, ok := parseFlags()
	if !ok {
		return 1
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	editor, err := app.New(path, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Live config reload; a broken watcher is not fatal.
	watcher, err := config.Watch(configPath, editor.ReloadConfig, func(error) {})
	if err == nil {
		defer watcher.Close()
	}

	if err := editor.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (configPath, path string, ok bool) {
	var showVersion bool

	flag.StringVar(&configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "kiln - a terminal text editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: kiln [options] file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("kiln %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return "", "", false
	}

	path, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return "", "", false
	}
	return configPath, path, true
}
