package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/env"
	"github.com/neura-ai/neura/env/api"
	"github.com/neura-ai/neura/env/web"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the NEURA HTTP API and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runtime, err := env.NewRuntime(cfg)
			if err != nil {
				return err
			}
			defer runtime.Close()

			logger := newLogger(cfg.LogLevel)
			apiServer := api.NewServer(runtime, logger)
			wsHandler := web.NewHandler(runtime, logger)

			router := mux.NewRouter()
			router.Handle("/v1/ws", wsHandler)
			router.PathPrefix("/").Handler(apiServer.Handler())

			logger.Info("neura server listening", "addr", cfg.Server.Addr, "environment", cfg.Environment)
			return http.ListenAndServe(cfg.Server.Addr, router)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
