package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/memory"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List stored consistency findings per chapter",
	Long: `Issues prints the findings the last check pass recorded in the memory
store, chapter by chapter. With --chapter, only that chapter's findings
are shown.`,
	RunE: runIssues,
}

func init() {
	issuesCmd.Flags().Int("chapter", 0, "show only this chapter's findings")

	rootCmd.AddCommand(issuesCmd)
}

func runIssues(cmd *cobra.Command, args []string) error {
	chapter, _ := cmd.Flags().GetInt("chapter")

	store, err := memory.Open(buildConfig().MemoryDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if chapter > 0 {
		return printChapterIssues(cmd, store, chapter)
	}

	found := false
	for chapterID := 1; ; chapterID++ {
		sections, err := store.ChapterSections(cmd.Context(), chapterID)
		if err != nil {
			return err
		}
		if len(sections) == 0 {
			break
		}
		found = true
		if err := printChapterIssues(cmd, store, chapterID); err != nil {
			return err
		}
	}
	if !found {
		fmt.Println("the memory store has no chapters; run generate and check first")
	}
	return nil
}

func printChapterIssues(cmd *cobra.Command, store *memory.Store, chapterID int) error {
	issues, err := store.Issues(cmd.Context(), chapterID)
	if err != nil {
		return err
	}

	fmt.Printf("chapter %d: %d issue(s)\n", chapterID, len(issues))
	for _, issue := range issues {
		fmt.Printf("  [%s/%s] %s\n", issue.Type, issue.Severity, issue.Description)
		if issue.Location != "" {
			fmt.Printf("    at: %s\n", issue.Location)
		}
		if issue.Suggestion != "" {
			fmt.Printf("    fix: %s\n", issue.Suggestion)
		}
	}
	return nil
}
