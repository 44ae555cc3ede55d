package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/fmuoria/candidate-manager/internal/config"
	"github.com/fmuoria/candidate-manager/internal/export"
	"github.com/fmuoria/candidate-manager/internal/gui"
	"github.com/fmuoria/candidate-manager/internal/logging"
)

func main() {
	templatePath := flag.String("template", "", "write a blank upload workbook to this path and exit")
	flag.Parse()

	logger := logging.New(os.Stderr, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("Failed to load config, using defaults", "err", err)
		cfg = config.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	level, err := cfg.Level()
	if err != nil {
		logger.Error("Invalid log level", "err", err)
		os.Exit(1)
	}
	logger = logging.New(os.Stderr, level)

	if *templatePath != "" {
		if err := writeTemplate(*templatePath); err != nil {
			logger.Error("Failed to write template", "path", *templatePath, "err", err)
			os.Exit(1)
		}
		logger.Info("Template written", "path", *templatePath)
		return
	}

	logger.Info("Starting Candidate Manager", "api", cfg.APIURL, "page_size", cfg.PageSize)
	gui.NewApp(cfg, logger).Run()
}

func writeTemplate(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteTemplate(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
