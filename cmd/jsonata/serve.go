package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jsonata-lang/jsonata/internal/cli/config"
	"github.com/jsonata-lang/jsonata/internal/web/server"
)

func serveCmd() *cobra.Command {
	var addr string
	var devLog bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP evaluation service",
		Long: `Start an HTTP service exposing POST /evaluate. Configuration is read
from jsonata.yml in the working directory; flags override it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, devLog)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&devLog, "dev", false, "human-readable development logging")

	return cmd
}

func runServe(addr string, devLog bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Address()
	}

	logger, err := buildLogger(devLog)
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	defer logger.Sync() //nolint:errcheck

	handler := server.NewHandler(logger, server.Limits{
		MaxDepth:  cfg.Limits.MaxDepth,
		TimeLimit: cfg.Limits.TimeLimit,
	})

	serverConfig := server.DefaultConfig(handler)
	serverConfig.Address = addr
	srv, err := server.New(serverConfig)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		done <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func buildLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
