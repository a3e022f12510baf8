package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

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

func newRunCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the addon service in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("prepare directories: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			d, err := buildDaemon(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Start(ctx); err != nil {
				return fmt.Errorf("start daemon: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", d.Addr())

			<-ctx.Done()
			return context.Canceled
		},
	}
}

func buildDaemon(cfg *config.Config) (*daemon.Daemon, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	crypto, err := usercfg.NewCryptoContext(cfg.Crypto.Key)
	if err != nil {
		return nil, fmt.Errorf("init crypto: %w", err)
	}
	store, err := session.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	runner, err := ytdlp.New(cfg.YTDLP.Binary, cfg.YTDLP.Extractors, cfg.YTDLP.TimeoutSeconds, logger,
		ytdlp.WithTempDir(cfg.YTDLP.TempDir))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init yt-dlp runner: %w", err)
	}

	srv := server.New(cfg, logger, crypto, store, runner,
		segments.NewRewriter(logger),
		sponsorblock.NewClient(sponsorblock.WithBaseURL(cfg.SponsorBlock.BaseURL)),
		dearrow.NewClient(dearrow.WithBaseURL(cfg.DeArrow.BaseURL), dearrow.WithThumbnailBaseURL(cfg.DeArrow.ThumbnailBaseURL)))

	d, err := daemon.New(cfg, store, logger, srv)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create daemon: %w", err)
	}
	return d, nil
}
