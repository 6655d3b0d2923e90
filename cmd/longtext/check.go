package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/checker"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/pipeline"
	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run consistency checks over generated chapters",
	Long: `Check replays every chapter in the memory store through the consistency
checker (character names and traits, timeline, setting, plot logic,
continuity) and writes a Markdown report to the output directory. With
--file, a single existing text file is checked instead and the report
prints to stdout.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("title", "Untitled", "document title for the report")
	checkCmd.Flags().String("mode", "novel", "writing mode")
	checkCmd.Flags().String("file", "", "check an existing text file instead of the memory store")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	mode, _ := cmd.Flags().GetString("mode")
	file, _ := cmd.Flags().GetString("file")

	p, err := pipeline.New(buildConfig(), mode, os.Stdout)
	if err != nil {
		return err
	}
	defer p.Close()

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		result, err := p.CheckText(cmd.Context(), string(data))
		if err != nil {
			return err
		}
		if err := checker.WriteReport(os.Stdout, title, []types.CheckResult{result}); err != nil {
			return err
		}
		if !result.Passed {
			return fmt.Errorf("consistency check failed")
		}
		return nil
	}

	results, path, err := p.CheckAll(cmd.Context(), title)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	fmt.Printf("report written to %s\n", path)
	if failed > 0 {
		return fmt.Errorf("%d chapter(s) failed the consistency check", failed)
	}
	return nil
}
