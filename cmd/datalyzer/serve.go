package main

import (
	"context"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xavrousseau/datalyzer/internal/logging"
	"github.com/xavrousseau/datalyzer/internal/server"
	"github.com/xavrousseau/datalyzer/internal/session"
)

var flagListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagListenAddr != "" {
			cfg.ListenAddr = flagListenAddr
		}

		logger, flush := logging.Setup(parseLevel(cfg.LogLevel), cfg.SeqURL)
		defer flush()
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mgr := session.NewManager(cfg.MaxUploadBytes)
		srv := server.New(cfg, mgr)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListenAddr, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
