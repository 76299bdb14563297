package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"syshealth/internal/collector"
	"syshealth/internal/config"
	"syshealth/internal/logger"
	"syshealth/internal/sampler"
	"syshealth/internal/scheduler"
	"syshealth/internal/server"
	"syshealth/internal/snapshot"
	"syshealth/internal/zabbix"
	"syshealth/pkg/profiler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sampler and serve snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			if err := cfg.Load(cmd); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := logger.Initialize(cfg.LogLevel); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	config.AddFlags(cmd)
	return cmd
}

// buildSampler собирает источник и сэмплер по конфигурации
func buildSampler(cfg *config.Config, store sampler.Publisher) (*sampler.Sampler, error) {
	src, err := collector.New(cfg.Source, logger.Component("collector"))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics source: %w", err)
	}

	var opts sampler.Options
	if cfg.DiskIO {
		opts.DiskProbe = collector.NewDiskProbe(logger.Component("collector"))
	}

	return sampler.New(src, store, logger.Component("sampler"), opts), nil
}

// runServe запускает планировщик и читателей, работает до отмены ctx
func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.Logger
	log.Info("Starting syshealth",
		zap.String("version", version),
		zap.Duration("interval", cfg.Interval),
		zap.String("source", cfg.Source),
		zap.Bool("disk_io", cfg.DiskIO))

	store := snapshot.NewStore()

	smp, err := buildSampler(cfg, store)
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Options{
		Interval:    cfg.Interval,
		TickTimeout: cfg.TickTimeout,
	}, smp, store, logger.Component("scheduler"))

	prof := profiler.New(profiler.Config{
		Enable:      cfg.ProfileEnable,
		CPUProfile:  cfg.ProfileCPUFile,
		MemProfile:  cfg.ProfileMemFile,
		ProfileTime: cfg.ProfileTime,
	}, logger.Component("profiler"))
	if err := prof.Start(ctx); err != nil {
		return fmt.Errorf("failed to start profiler: %w", err)
	}
	defer func() {
		if err := prof.Stop(); err != nil {
			log.Error("Failed to stop profiler", zap.Error(err))
		}
	}()

	srv := server.New(server.Options{
		Addr: cfg.ListenAddr,
		Header: snapshot.ReportHeader{
			Title:   cfg.ReportTitle,
			Members: cfg.ReportMembers,
		},
		WSPollInterval: cfg.WSPollInterval,
	}, store, sched, logger.Component("server"))
	if prof.Enabled() {
		srv.Mount(profiler.MountPath, prof.Handler())
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Без поверхности чтения расписание не нужно, откатываемся
	if _, err := srv.Start(); err != nil {
		sched.Stop()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.ZabbixEnable {
		sender := zabbix.NewSender(cfg.ZabbixServer, cfg.ZabbixPort, cfg.ZabbixTimeout, logger.Component("zabbix"))
		exporter := zabbix.NewExporter(zabbix.ExporterConfig{
			HostName:         cfg.ZabbixHost,
			Interval:         cfg.ZabbixInterval,
			MaxRetries:       cfg.MaxRetries,
			RetryBackoffBase: cfg.RetryBackoffBase,
		}, sender, store, logger.Component("zabbix"))

		g.Go(func() error {
			return exporter.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		sched.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("syshealth stopped", zap.Uint64("ticks", smp.Ticks()))
	return nil
}
