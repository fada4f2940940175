package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	stickerplaner "github.com/menta2k/sticker-planer"
	"github.com/menta2k/sticker-planer/internal/config"
	"github.com/menta2k/sticker-planer/internal/log"
	"github.com/menta2k/sticker-planer/internal/utils"
	"github.com/menta2k/sticker-planer/pkg/planner"
)

func main() {
	os.Exit(run(filepath.Base(os.Args[0]), os.Args[1:], os.Stderr))
}

// run processes the stickers named in args and returns the exit code
func run(name string, args []string, stderr io.Writer) int {
	var configPath, logPath, reportPath string
	var recursive, debug, verbose bool

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configPath, "config", "", "JSON config file (defaults are used when empty)")
	fs.StringVar(&logPath, "log", "", "also write logs to this rotating file")
	fs.StringVar(&reportPath, "report", "", "write a JSON report of all processed files")
	fs.BoolVar(&recursive, "r", false, "expand directories into the image files they contain")
	fs.BoolVar(&debug, "debug", false, "write debug overlays next to the outputs")
	fs.BoolVar(&verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] sticker.png...\n", name)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 0
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(configPath); err != nil {
			log.Fatal(err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if logPath != "" {
		cfg.Log.File = logPath
	}
	if cfg.Log.File != "" {
		closer, err := log.SetFile(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays)
		if err != nil {
			log.Fatal(err)
		}
		defer closer.Close()
	}
	log.SetDebug(verbose)

	files := fs.Args()
	if recursive {
		var err error
		if files, err = utils.ExpandInputs(files, cfg.Output.Subdir); err != nil {
			log.Fatal(err)
		}
	}

	sp := stickerplaner.NewWithConfig(
		planner.Config{
			ToleranceNum:      cfg.Planner.ToleranceNum,
			ToleranceDen:      cfg.Planner.ToleranceDen,
			MinPaddingDivisor: cfg.Planner.MinPaddingDivisor,
		},
		stickerplaner.Options{
			TargetSize: cfg.Output.TargetSize,
			Subdir:     cfg.Output.Subdir,
			Format:     cfg.Output.Format,
			Quality:    cfg.Output.Quality,
			Lossless:   cfg.Output.Lossless,
			Debug:      cfg.Output.Debug || debug,
		},
	)

	results := sp.ProcessFiles(files)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			continue
		}
		if info, err := os.Stat(r.Output); err == nil {
			log.Debugf("%s: %s", r.Output, utils.FormatFileSize(info.Size()))
		}
	}
	log.Printf("processed %d file(s), %d failed", len(results), failed)

	if reportPath != "" {
		if err := stickerplaner.WriteReport(results, reportPath); err != nil {
			log.Printf("report failed: %v", err)
		} else {
			log.Printf("wrote %s", reportPath)
		}
	}
	return 0
}
