package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/xavrousseau/datalyzer/internal/config"
)

var (
	cfgFile string
	debug   bool

	cfg *cfgpkg.Config
)

var rootCmd = &cobra.Command{
	Use:   "datalyzer",
	Short: "Datalyzer: interactive exploratory data analysis service",
	Long: `Datalyzer profiles tabular files (CSV, XLSX, Parquet), scores and executes
joins across tables, and manages per-session snapshots and exports over an
HTTP JSON API.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datalyzer/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c
	if debug {
		cfg.LogLevel = "debug"
	}
}
