package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/media-utils/internal/cli"
	"github.com/ironsheep/media-utils/internal/config"
	"github.com/ironsheep/media-utils/internal/media"
	"github.com/ironsheep/media-utils/internal/server"
	"github.com/ironsheep/media-utils/internal/service"
	"github.com/ironsheep/media-utils/internal/storage"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("media-utils %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "media-utils: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// Logs go to stderr; stdout carries command output and the protocol.
	logger := cfg.NewLogger(os.Stderr)
	logger.Debug("starting", "version", Version, "commit", GitCommit, "config", cfg.String())

	local, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return err
	}

	var s3 storage.Storage
	if cfg.S3Enabled() {
		backend, err := storage.NewS3Storage(ctx, cfg.S3Config())
		if err != nil {
			return err
		}
		s3 = backend
	}

	images := service.NewImageService(storage.NewRouter(local, s3), cfg.CodecOptions(), logger)
	runner := media.NewFFmpegRunner(cfg.FFmpegPath, cfg.FFprobePath, logger)
	srv := server.New(images, Version, logger)

	app := &cli.App{
		Images:   images,
		Media:    media.NewProcessor(runner, local),
		Prompter: cli.NewLinePrompter(os.Stdin, os.Stderr),
		Serve: func(ctx context.Context) error {
			return srv.Run(ctx, os.Stdin, os.Stdout)
		},
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	return app.Run(ctx, args)
}
