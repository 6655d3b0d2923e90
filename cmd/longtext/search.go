package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/memory"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/textutil"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over generated sections",
	Long: `Search runs a full-text query over the sections in the memory store
and prints the matching chapters with a content snippet. Useful for
locating where a character, place, or plot thread last appeared before
continuing a run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 10, "maximum number of matches")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	store, err := memory.Open(buildConfig().MemoryDir)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Search(cmd.Context(), query, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("no sections match %q\n", query)
		return nil
	}

	for _, rec := range records {
		fmt.Printf("chapter %d, subtask %d: %s (%d words)\n",
			rec.ChapterID, rec.SubTaskID, rec.Title, rec.Words)
		fmt.Printf("  %s\n", textutil.Truncate(strings.TrimSpace(rec.Content), 200))
	}
	fmt.Printf("%d match(es)\n", len(records))
	return nil
}
