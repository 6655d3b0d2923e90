package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/llm"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/writer"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List writing modes and model providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		ms, err := writer.LoadModes(cfg.ModesPath)
		if err != nil {
			return err
		}

		names := ms.Names()
		sort.Strings(names)
		fmt.Println("Writing modes:")
		for _, name := range names {
			marker := " "
			if name == ms.DefaultMode {
				marker = "*"
			}
			fmt.Printf("  %s %-10s %s\n", marker, name, ms.Get(name).Name)
		}

		providers := llm.Providers()
		keys := make([]string, 0, len(providers))
		for k := range providers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("\nProviders:")
		for _, k := range keys {
			fmt.Printf("    %-10s %s\n", k, providers[k])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
