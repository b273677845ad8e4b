package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/datrium/postgrest-go/pkg/config"
	"github.com/datrium/postgrest-go/pkg/metrics"
)

var cfgFile string
var logLevel string
var cfg *config.Config
var logger *zap.Logger
var rootCmd = &cobra.Command{
	Use:   "pgrest",
	Short: "pgrest queries PostgREST endpoints",
	Long:  `pgrest reads and writes rows of a PostgREST-compatible HTTP API using its filter grammar`,
	Run: func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			fmt.Println(config.Version)
			return
		}

		// If no subcommand is provided, print help
		cmd.Help()
	},
}

func Main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger, initMetrics)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pgrest.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "L", "info", "log at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("url", "", "PostgREST base URL (overrides config)")
	rootCmd.PersistentFlags().String("token", "", "bearer token (overrides config)")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print the version number")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	if url, _ := rootCmd.PersistentFlags().GetString("url"); url != "" {
		cfg.Endpoint.BaseURL = url
	}
	if token, _ := rootCmd.PersistentFlags().GetString("token"); token != "" {
		cfg.Endpoint.Token = token
	}
}

var metricsWG sync.WaitGroup

// initMetrics starts the Prometheus listener when enabled. The server lives
// for the duration of the command and is torn down with the process.
func initMetrics() {
	if cfg == nil || !cfg.Metrics.Enabled {
		return
	}
	metrics.StartPrometheusServer(context.Background(), &metricsWG, &metrics.PromServerOpts{
		Addr: cfg.Metrics.Addr,
	})
}

func initLogger() {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err = zcfg.Build()
	if err != nil {
		fmt.Println("Error building logger:", err)
		os.Exit(1)
	}
}
