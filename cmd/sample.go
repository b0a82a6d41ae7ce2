package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Replace the board with sample tasks and buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if n := len(brd.State().Committed()); n > 0 && !force {
			var confirm bool
			if err := huh.NewConfirm().
				Title(fmt.Sprintf("Replace %d existing task(s) with sample data?", n)).
				Affirmative("Replace").
				Negative("Cancel").
				Value(&confirm).
				Run(); err != nil || !confirm {
				return fmt.Errorf("cancelled")
			}
		}
		brd.InitializeWithSampleData()
		snap := brd.State()
		fmt.Printf("Loaded %d sample tasks in %d buckets\n", len(snap.Tasks), len(snap.Buckets))
		return nil
	},
}

func init() {
	sampleCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	rootCmd.AddCommand(sampleCmd)
}
