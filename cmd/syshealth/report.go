package main

import (
	"context"
	"fmt"
	"io"

	"syshealth/internal/config"
	"syshealth/internal/logger"
	"syshealth/internal/snapshot"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sample once and print the health report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			if err := cfg.Load(cmd); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := logger.Initialize(cfg.LogLevel); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Cleanup()

			return runReport(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	config.AddFlags(cmd)
	return cmd
}

// runReport делает один тик и печатает отчет
func runReport(ctx context.Context, cfg *config.Config, w io.Writer) error {
	store := snapshot.NewStore()

	smp, err := buildSampler(cfg, store)
	if err != nil {
		return err
	}

	timeout := cfg.TickTimeout
	if timeout <= 0 {
		timeout = cfg.Interval
	}
	tickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	smp.Tick(tickCtx)

	header := snapshot.ReportHeader{Title: cfg.ReportTitle, Members: cfg.ReportMembers}
	return snapshot.Render(w, header, store.Read())
}
