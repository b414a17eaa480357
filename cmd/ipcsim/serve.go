package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lakshith-P/ipc-debugging-tools/internal/config"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/coordinator"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/logging"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/monitoring"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the status/log/alert surface over HTTP",
	RunE:  serve,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func serve(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault()
	if serveAddr == "" {
		serveAddr = cfg.HTTP.Addr
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	metrics := monitoring.New()
	coord := coordinator.New(cfg, log, metrics)
	srv := server.NewServer(coord, metrics, log)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(serveAddr)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigs:
		log.Info("shutting down")
		return srv.Close()
	case err := <-errChan:
		log.Error("server error", zap.Error(err))
		return err
	}
}
