package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lakshith-P/ipc-debugging-tools/internal/config"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/coordinator"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/ipc"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/logging"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/monitoring"
)

var (
	runProcs    int
	runSeconds  int
	runChannel  string
	runDeadlock bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a short headless simulation and export its log",
	RunE:  runHeadless,
}

func init() {
	runCmd.Flags().IntVar(&runProcs, "procs", 0, "number of workers to spawn (default from config)")
	runCmd.Flags().IntVar(&runSeconds, "seconds", 5, "how long to run the simulation")
	runCmd.Flags().StringVar(&runChannel, "channel", "", "channel kind: pipe, queue, or shm (default from config)")
	runCmd.Flags().BoolVar(&runDeadlock, "deadlock", false, "enable the deadlock demo (shm channel, >3 workers)")
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault()
	if runProcs == 0 {
		runProcs = cfg.Sim.Procs
	}
	if runChannel == "" {
		runChannel = cfg.Sim.Channel
	}

	kind, err := ipc.ParseKind(runChannel)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	coord := coordinator.New(cfg, log, monitoring.New())
	if err := coord.Start(runProcs, kind, runDeadlock); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	select {
	case <-time.After(time.Duration(runSeconds) * time.Second):
	case <-sigs:
		fmt.Println("interrupted, stopping early")
	}

	coord.Stop()

	if alert := coord.Alert(); alert != "" {
		fmt.Printf("Final alert: %s\n", alert)
	}
	fmt.Println(coord.Throughput())
	fmt.Println(coord.AvgLatency())

	path, err := coord.ExportLog()
	if err != nil {
		return err
	}
	fmt.Printf("Headless run finished; log written to %s\n", path)
	return nil
}
