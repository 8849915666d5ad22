// Package clifacade builds the cobra command tree for the demo engine
// binary: load config, build a Facade, run a small worker pool, and
// optionally serve Prometheus metrics. This is the external-collaborator
// layer of spec §1/§6; no wire format or CLI surface is part of the core
// itself.
package clifacade

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/internal/config"
	"github.com/ChuLiYu/jobcore/internal/facade"
	"github.com/ChuLiYu/jobcore/internal/metrics"
	"github.com/ChuLiYu/jobcore/internal/opworker"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

var log = slog.Default()

var configFile string

// BuildCLI returns the root cobra command.
func BuildCLI() *cobra.Command {
	root := &cobra.Command{
		Use:     "jobcore",
		Short:   "jobcore: an in-memory job coordination engine",
		Version: "0.1.0",
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")
	root.AddCommand(buildRunCommand())
	root.AddCommand(buildStatusCommand())
	return root
}

func loadConfigOrDefault() config.Config {
	if configFile == "" {
		return config.Default()
	}
	if _, err := os.Stat(configFile); err != nil {
		return config.Default()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Warn("falling back to default config", "error", err)
		return config.Default()
	}
	return cfg
}

func buildRunCommand() *cobra.Command {
	var queues []string
	var workerCount int
	var metricsPort int
	var metricsEnabled bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the engine with a small demo worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefault()
			if metricsEnabled {
				go func() {
					if err := metrics.StartServer(metricsPort); err != nil {
						log.Error("metrics server stopped", "error", err)
					}
				}()
			}
			return runEngine(cfg, queues, workerCount)
		},
	}
	cmd.Flags().StringSliceVar(&queues, "queues", []string{"default"}, "queues to serve, in priority order")
	cmd.Flags().IntVar(&workerCount, "workers", 4, "number of demo worker goroutines")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics", false, "expose Prometheus metrics")
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 9090, "metrics HTTP port")
	return cmd
}

func runEngine(cfg config.Config, queues []string, workerCount int) error {
	if cfg.Engine.IDType == config.IDTypeUUID {
		var gen types.UUIDKeyGenerator
		return runWith(cfg, queues, workerCount, gen.Next)
	}
	gen := &types.IntKeyGenerator{}
	return runWith(cfg, queues, workerCount, gen.Next)
}

func runWith[K types.Key[K]](cfg config.Config, queues []string, workerCount int, keyGen func() K) error {
	f := facade.New[K](cfg, clock.NewReal(), keyGen)
	defer f.Close()

	pool := opworker.New[K](f, queues, func(ctx context.Context, key K) error {
		log.Info("processed job", "key", key.String())
		return nil
	})
	if err := pool.Start(workerCount); err != nil {
		return err
	}
	defer pool.Stop()

	log.Info("engine running", "queues", queues, "workers", workerCount)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
	return nil
}

func buildStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefault()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config file: %s\n", configFile)
			fmt.Fprintf(out, "id type: %s\n", cfg.Engine.IDType)
			fmt.Fprintf(out, "string comparer: %s\n", cfg.Engine.StringComparer)
			fmt.Fprintf(out, "max state history length: %d\n", cfg.Engine.MaxStateHistoryLength)
			fmt.Fprintf(out, "command timeout: %s\n", cfg.Engine.CommandTimeout)
			fmt.Fprintf(out, "read strategy: %s\n", cfg.Engine.ReadStrategy)
			return nil
		},
	}
}
