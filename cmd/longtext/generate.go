package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a full document from an outline",
	Long: `Generate parses an outline (structured YAML or natural language), splits
it into section-sized subtasks, and produces each section through branch
exploration and judge scoring. The assembled document is written to the
output directory; chapter summaries go to the memory store.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("outline", "", "path to the outline file (required)")
	generateCmd.Flags().Int("words", 10000, "total target length in words")
	generateCmd.Flags().String("mode", "novel", "writing mode: novel, drama, report, article, document")
	generateCmd.Flags().String("style", "", "extra style directives folded into the system prompt")
	generateCmd.Flags().Bool("relaxed", false, "single branch, no retries (faster, cheaper, lower quality)")
	generateCmd.MarkFlagRequired("outline")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	outlinePath, _ := cmd.Flags().GetString("outline")
	words, _ := cmd.Flags().GetInt("words")
	mode, _ := cmd.Flags().GetString("mode")
	style, _ := cmd.Flags().GetString("style")
	relaxed, _ := cmd.Flags().GetBool("relaxed")

	outline, err := os.ReadFile(outlinePath)
	if err != nil {
		return fmt.Errorf("reading outline: %w", err)
	}

	cfg := buildConfig()
	if relaxed {
		cfg.Engine.BranchCount = 1
		cfg.Engine.MaxRetries = -1
	}

	p, err := pipeline.New(cfg, mode, os.Stdout)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.Run(cmd.Context(), string(outline), words, style)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d section(s), %d words\n", result.Title, result.Sections, result.TotalWords)
	if result.Rejected > 0 {
		fmt.Printf("note: %d section(s) shipped below the quality gate after retry exhaustion\n", result.Rejected)
	}
	fmt.Printf("written to %s\n", result.OutputPath)
	return nil
}
