package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/xavrousseau/datalyzer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Datalyzer configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		if cfg.SeqURL != "" {
			fmt.Printf("seq_url: %s\n", cfg.SeqURL)
		}
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("max_upload_bytes: %d\n", cfg.MaxUploadBytes)
		fmt.Printf("suggest_max_cols_per_side: %d\n", cfg.SuggestMaxColsPerSide)
		fmt.Printf("suggest_max_uniques: %d\n", cfg.SuggestMaxUniques)
		fmt.Printf("suggest_min_score: %.3f\n", cfg.SuggestMinScore)
		fmt.Printf("outlier_z_threshold: %.3f\n", cfg.OutlierZThreshold)
		fmt.Printf("top_values: %d\n", cfg.TopValues)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "listen_addr":
			cfg.ListenAddr = val
		case "seq_url":
			cfg.SeqURL = val
		case "log_level":
			switch val {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = val
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		case "max_upload_bytes":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for max_upload_bytes: %v", val)
			}
			cfg.MaxUploadBytes = i
		case "suggest_max_cols_per_side":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for suggest_max_cols_per_side: %v", val)
			}
			cfg.SuggestMaxColsPerSide = i
		case "suggest_max_uniques":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for suggest_max_uniques: %v", val)
			}
			cfg.SuggestMaxUniques = i
		case "suggest_min_score":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 || f > 1 {
				return fmt.Errorf("invalid score for suggest_min_score: %v", val)
			}
			cfg.SuggestMinScore = f
		case "outlier_z_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for outlier_z_threshold: %v", val)
			}
			cfg.OutlierZThreshold = f
		case "top_values":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for top_values: %v", val)
			}
			cfg.TopValues = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
