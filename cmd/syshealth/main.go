package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version задается при сборке через -ldflags
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "syshealth",
		Short:         "Background system health sampler",
		Long:          "syshealth periodically samples CPU load, memory and disk I/O and serves the latest snapshot over HTTP, Prometheus, websocket and Zabbix trapper.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newReportCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "syshealth %s\n", version)
		},
	}
}
