package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/pipeline"
	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Generate one section from an ad hoc context",
	Long: `Section runs a single section request outside any plan: the given
context goes straight to branch generation, judge scoring, and length
inflation. The section text prints to stdout; progress goes to stderr.`,
	RunE: runSection,
}

func init() {
	sectionCmd.Flags().String("context", "", "section context text")
	sectionCmd.Flags().String("context-file", "", "read the section context from a file")
	sectionCmd.Flags().Int("words", 2000, "target length in words")
	sectionCmd.Flags().String("mode", "novel", "writing mode")
	sectionCmd.Flags().String("style", "", "extra style directives")
	sectionCmd.Flags().Bool("json", false, "print the full section result as JSON")

	rootCmd.AddCommand(sectionCmd)
}

func runSection(cmd *cobra.Command, args []string) error {
	contextText, _ := cmd.Flags().GetString("context")
	contextFile, _ := cmd.Flags().GetString("context-file")
	words, _ := cmd.Flags().GetInt("words")
	mode, _ := cmd.Flags().GetString("mode")
	style, _ := cmd.Flags().GetString("style")

	if contextFile != "" {
		data, err := os.ReadFile(contextFile)
		if err != nil {
			return fmt.Errorf("reading context file: %w", err)
		}
		contextText = string(data)
	}
	if strings.TrimSpace(contextText) == "" {
		return fmt.Errorf("provide --context or --context-file")
	}

	p, err := pipeline.New(buildConfig(), mode, os.Stderr)
	if err != nil {
		return err
	}
	defer p.Close()

	result := p.ProduceOne(cmd.Context(), contextText, words, style)
	if result.Outcome == types.OutcomeError {
		return fmt.Errorf("no usable draft produced after %d round(s)", result.RoundsUsed)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(result.Text)
	fmt.Fprintf(os.Stderr, "%s: %d words in %d round(s), %d expansion(s)\n",
		result.Outcome, result.Length, result.RoundsUsed, result.Expansions)
	return nil
}
