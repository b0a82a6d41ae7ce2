package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rogersnm/kanban/internal/config"
	"github.com/rogersnm/kanban/internal/id"
	"github.com/rogersnm/kanban/internal/markdown"
	"github.com/rogersnm/kanban/internal/repofile"
	"github.com/rogersnm/kanban/internal/route"
	"github.com/rogersnm/kanban/internal/view"
	"github.com/spf13/cobra"
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage buckets",
}

var bucketCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a bucket",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		private, _ := cmd.Flags().GetBool("private")

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			if err := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Bucket name").
					Value(&name),
				huh.NewConfirm().
					Title("Make it private?").
					Description("Private buckets need a token to read or change.").
					Value(&private),
			)).Run(); err != nil {
				return fmt.Errorf("cancelled")
			}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("bucket name is required")
		}

		token := ""
		if private {
			tok, err := id.NewToken()
			if err != nil {
				return err
			}
			token = tok
		}
		b, token := brd.CreateBucket(name, token)
		fmt.Printf("Created bucket %s\n", b.Name)
		fmt.Println(markdown.RenderField("Address", route.Format(b.Name, token)))
		return nil
	},
}

var bucketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List buckets with their progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := brd.State()
		rows := make([]markdown.BucketRow, 0, len(snap.Buckets))
		for _, b := range snap.Buckets {
			tasks := brd.BucketTasks(b.Name)
			rows = append(rows, markdown.BucketRow{
				Bucket:   b,
				Tasks:    len(tasks),
				Progress: markdown.RenderProgress(view.ProgressOf(tasks)),
			})
		}
		fmt.Println(markdown.RenderBucketTable(rows))
		return nil
	},
}

var bucketShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show the tasks of a bucket",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var addr route.Address
		if len(args) == 1 {
			addr = route.Address{Bucket: args[0], Token: tokenFor(cmd, args[0])}
		} else {
			var err error
			if addr, err = resolveBucket(cmd); err != nil {
				return err
			}
		}
		return printBucket(addr)
	},
}

var bucketOpenCmd = &cobra.Command{
	Use:   "open <address>",
	Short: "Show a bucket from its address (/bucket/<name>?token=...)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := route.Parse(args[0])
		if err != nil {
			return err
		}
		return printBucket(addr)
	},
}

func printBucket(addr route.Address) error {
	v := view.Bucket(brd.State(), addr.Bucket, addr.Token)
	if !v.Known && len(v.Tasks()) == 0 {
		return fmt.Errorf("bucket %q not found", addr.Bucket)
	}

	visibility := "public"
	if v.Bucket.Protected() {
		visibility = "private"
	}
	fields := []string{
		markdown.RenderField("Visibility", visibility),
		markdown.RenderField("Progress", markdown.RenderProgress(v.Progress)),
	}
	if !v.Authenticated {
		fields = append(fields, markdown.RenderField("Access", "read-only, descriptions hidden"))
	}
	fmt.Print(markdown.RenderEntityHeader(v.Name, fields))
	fmt.Println()

	if v.Placeholder {
		fmt.Println("This bucket is private.")
		return nil
	}
	fmt.Println(markdown.RenderTaskTable(v.Active))
	if len(v.Done) > 0 {
		fmt.Printf("\nDone (%d):\n", len(v.Done))
		fmt.Println(markdown.RenderTaskTable(v.Done))
	}
	return nil
}

var bucketSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := brd.GetBucketConfig(args[0]); !ok {
			return fmt.Errorf("bucket %q not found", args[0])
		}
		cfg.DefaultBucket = args[0]
		if err := config.Save(dataDir, cfg); err != nil {
			return err
		}
		fmt.Printf("Default bucket set to %s\n", args[0])
		return nil
	},
}

var bucketRebalanceCmd = &cobra.Command{
	Use:   "rebalance [name]",
	Short: "Renumber the order keys of a bucket evenly",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var addr route.Address
		if len(args) == 1 {
			addr = route.Address{Bucket: args[0], Token: tokenFor(cmd, args[0])}
		} else {
			var err error
			if addr, err = resolveBucket(cmd); err != nil {
				return err
			}
		}
		if err := checkAccess(addr.Bucket, addr.Token); err != nil {
			return err
		}
		brd.RebalanceBucket(addr.Bucket)
		fmt.Printf("Rebalanced bucket %s\n", addr.Bucket)
		return nil
	},
}

var bucketLinkCmd = &cobra.Command{
	Use:   "link [address]",
	Short: "Link the current directory to a bucket",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var addr route.Address
		if len(args) == 1 {
			var err error
			if addr, err = route.Parse(args[0]); err != nil {
				return err
			}
		} else {
			buckets := brd.State().Buckets
			if len(buckets) == 0 {
				return fmt.Errorf("no buckets exist; create one first with: kanban bucket create <name>")
			}
			opts := make([]huh.Option[int], len(buckets))
			for i, b := range buckets {
				opts[i] = huh.NewOption(b.Name, i)
			}
			var choice int
			if err := huh.NewSelect[int]().
				Title("Select a bucket").
				Options(opts...).
				Value(&choice).
				Run(); err != nil {
				return fmt.Errorf("selection cancelled")
			}
			addr = route.Address{Bucket: buckets[choice].Name, Token: buckets[choice].Token}
		}

		if err := checkAccess(addr.Bucket, addr.Token); err != nil {
			return err
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if err := repofile.Write(cwd, addr); err != nil {
			return err
		}
		fmt.Printf("Linked %s to bucket %s\n", cwd, addr.Bucket)
		return nil
	},
}

var bucketUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Remove the repo-local bucket link",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		path := cwd + "/" + repofile.FileName
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("No bucket linked.")
				return nil
			}
			return err
		}
		fmt.Println("Unlinked bucket.")
		return nil
	},
}

func init() {
	bucketCreateCmd.Flags().Bool("private", false, "protect the bucket with a generated token")
	bucketShowCmd.Flags().StringP("bucket", "b", "", "bucket name")
	bucketRebalanceCmd.Flags().StringP("bucket", "b", "", "bucket name")

	bucketCmd.AddCommand(bucketCreateCmd)
	bucketCmd.AddCommand(bucketListCmd)
	bucketCmd.AddCommand(bucketShowCmd)
	bucketCmd.AddCommand(bucketOpenCmd)
	bucketCmd.AddCommand(bucketSetDefaultCmd)
	bucketCmd.AddCommand(bucketRebalanceCmd)
	bucketCmd.AddCommand(bucketLinkCmd)
	bucketCmd.AddCommand(bucketUnlinkCmd)
	rootCmd.AddCommand(bucketCmd)
}
