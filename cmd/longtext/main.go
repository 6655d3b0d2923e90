// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the longtext CLI: outline-driven
// long-form generation with branch exploration, judge scoring, and
// continuity memory.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the longtext CLI.
var rootCmd = &cobra.Command{
	Use:   "longtext",
	Short: "Long-form text generation with quality-gated sections",
	Long: `longtext generates long-form documents (fiction, reports, articles) from
an outline. Each section is drafted in parallel branches, scored by a
rubric-driven judge, retried under a bounded policy, and extended until
it meets its length target. Chapter summaries persist in a local memory
store so later sections stay consistent with earlier ones.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./longtext.yaml or ~/.config/longtext/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("longtext")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "longtext"))
		}
	}

	viper.SetEnvPrefix("LONGTEXT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
