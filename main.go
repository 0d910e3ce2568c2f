// Command visual-match checks whether a template image appears inside a
// target screenshot at some unknown scale. Exit code 0 means found, 1 means
// not found, 2 means the check could not run.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mlenz/visual-match-go/config"
	"github.com/mlenz/visual-match-go/domain/match"
	"github.com/mlenz/visual-match-go/verify"
)

func main() {
	var (
		cfgPath      = flag.String("config", "visual-match.json", "path to JSON config file")
		targetPath   = flag.String("target", "", "target image (screenshot) to search in")
		templatePath = flag.String("template", "", "template image to search for")
		threshold    = flag.Float64("threshold", 0, "minimum correlation score to accept (0 uses the config default)")
		description  = flag.String("description", "", "name for this check, used for the artifact file")
		live         = flag.Bool("live", false, "match against a live screen capture instead of -target")
		debug        = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	cfg, cfgErr := config.Load(*cfgPath)
	level := slog.LevelInfo
	if *debug || cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if cfgErr != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", cfgErr)
	}

	if *templatePath == "" || (!*live && *targetPath == "") {
		fmt.Fprintln(os.Stderr, "usage: visual-match -target screenshot.png -template button.png [-threshold 0.9]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	thr := *threshold
	if thr == 0 {
		thr = cfg.Threshold
	}

	v := verify.New(cfg, logger)
	var (
		res match.Result
		err error
	)
	if *live {
		res, err = v.VerifyScreen(*templatePath, thr, *description)
	} else {
		res, err = v.Verify(*targetPath, *templatePath, thr, *description)
	}
	if err != nil {
		logger.Error("verification failed", "error", err)
		os.Exit(2)
	}
	if !res.Found {
		os.Exit(1)
	}
}
