package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rogersnm/kanban/internal/markdown"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/view"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search task descriptions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, _ := cmd.Flags().GetString("bucket")

		results := view.Search(brd.State(), args[0], func(b model.Bucket) bool {
			if bucket != "" && b.Name != bucket {
				return false
			}
			return b.Authenticates(tokenFor(cmd, b.Name))
		})
		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		slices.SortStableFunc(results, func(a, b view.SearchResult) int {
			return strings.Compare(a.Bucket, b.Bucket)
		})
		current := ""
		for _, r := range results {
			if r.Bucket != current {
				current = r.Bucket
				fmt.Printf("\n%s:\n", current)
			}
			fmt.Printf("  %s  %s\n", r.TaskID, markdown.RenderState(r.State))
			if r.Snippet != "" {
				fmt.Printf("    %s\n", r.Snippet)
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	searchCmd.Flags().StringP("bucket", "b", "", "filter by bucket")
	rootCmd.AddCommand(searchCmd)
}
