package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"tubio/internal/config"
	"tubio/internal/daemon"
	"tubio/internal/logging"
	"tubio/internal/segments"
	"tubio/internal/server"
	"tubio/internal/services/dearrow"
	"tubio/internal/services/sponsorblock"
	"tubio/internal/session"
	"tubio/internal/usercfg"
	"tubio/internal/ytdlp"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	crypto, err := usercfg.NewCryptoContext(cfg.Crypto.Key)
	if err != nil {
		log.Fatalf("init crypto: %v", err)
	}

	store, err := session.Open(cfg, logger)
	if err != nil {
		log.Fatalf("open session store: %v", err)
	}

	runner, err := ytdlp.New(cfg.YTDLP.Binary, cfg.YTDLP.Extractors, cfg.YTDLP.TimeoutSeconds, logger,
		ytdlp.WithTempDir(cfg.YTDLP.TempDir))
	if err != nil {
		log.Fatalf("init yt-dlp runner: %v", err)
	}

	srv := server.New(cfg, logger, crypto, store, runner,
		segments.NewRewriter(logger),
		sponsorblock.NewClient(sponsorblock.WithBaseURL(cfg.SponsorBlock.BaseURL)),
		dearrow.NewClient(dearrow.WithBaseURL(cfg.DeArrow.BaseURL), dearrow.WithThumbnailBaseURL(cfg.DeArrow.ThumbnailBaseURL)))

	d, err := daemon.New(cfg, store, logger, srv)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("tubiod shutting down")
}
