package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"distmaster/internal/config"
	"distmaster/internal/logsink"
	"distmaster/internal/master"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		slavePort  int
		proxyPort  int
		adminAddr  string
		maxSlaves  int
		verbosity  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the master protocol core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("slave-port") {
				cfg.SlaveAddr = fmt.Sprintf(":%d", slavePort)
			}
			if cmd.Flags().Changed("proxy-port") {
				cfg.ProxyAddr = fmt.Sprintf(":%d", proxyPort)
			}
			if cmd.Flags().Changed("admin-addr") {
				cfg.AdminAddr = adminAddr
			}
			if cmd.Flags().Changed("max-slaves") {
				cfg.MaxSlaves = maxSlaves
			}
			if cmd.Flags().Changed("verbosity") {
				cfg.LogVerbosity = verbosity
			}

			sink := logsink.New(os.Stdout, cfg.LogVerbosity)
			m := master.New(cfg, sink)

			if configPath != "" {
				watcher, err := config.Watch(configPath, m.Reconfigure)
				if err == nil {
					defer watcher.Close()
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return m.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().IntVar(&slavePort, "slave-port", 0, "port to listen for slave connections on")
	cmd.Flags().IntVar(&proxyPort, "proxy-port", 0, "port to listen for proxy connections on")
	cmd.Flags().StringVar(&adminAddr, "admin-addr", "", "address to serve the admin HTTP API on")
	cmd.Flags().IntVar(&maxSlaves, "max-slaves", 0, "maximum number of slaves expected to reply")
	cmd.Flags().IntVar(&verbosity, "verbosity", 0, "diagnostic log verbosity")

	return cmd
}
