package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mtp "github.com/modeltoolsprotocol/go-sdk"
	"github.com/rogersnm/kanban/internal/board"
	"github.com/rogersnm/kanban/internal/config"
	"github.com/rogersnm/kanban/internal/id"
	"github.com/rogersnm/kanban/internal/logging"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/repofile"
	"github.com/rogersnm/kanban/internal/route"
	"github.com/rogersnm/kanban/internal/store"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	dataDir   string
	cfg       *config.Config
	brd       *board.Store
	adapter   store.Adapter
	persister *store.Persister
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".kanban")
	}
	return filepath.Join(home, ".kanban")
}

var rootCmd = &cobra.Command{
	Use:     "kanban",
	Short:   "Bucket-based task board",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		var err error
		cfg, err = config.Load(dataDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logging.Setup(os.Stderr, cfg.LogLevel)

		// Config commands work without opening the board
		if cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config") {
			return nil
		}
		return openBoard(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeBoard()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "data directory path")
	rootCmd.PersistentFlags().String("token", "", "access token for a private bucket")

	mtpOpts := &mtp.DescribeOptions{
		Commands: map[string]*mtp.CommandAnnotation{
			"bucket create": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Bucket name and its address (with token for private buckets)",
				},
				Examples: []mtp.Example{
					{Description: "Create a public bucket", Command: "kanban bucket create ideas"},
					{Description: "Create a private bucket", Command: "kanban bucket create plans --private"},
				},
			},
			"bucket show": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Progress bar followed by active and done tasks of the bucket",
				},
				Examples: []mtp.Example{
					{Description: "Show a private bucket", Command: "kanban bucket show plans --token 3f9c2a7d1b8e4c06"},
				},
			},
			"bucket open": {
				Examples: []mtp.Example{
					{Description: "Open a bucket from its address", Command: "kanban bucket open '/bucket/plans?token=3f9c2a7d1b8e4c06'"},
				},
			},
			"bucket link": {
				Examples: []mtp.Example{
					{Description: "Link current directory to a bucket", Command: "kanban bucket link /bucket/ideas"},
				},
			},
			"bucket unlink": {
				Examples: []mtp.Example{
					{Description: "Remove repo-local bucket link", Command: "kanban bucket unlink"},
				},
			},
			"task add": {
				Stdin: &mtp.IODescriptor{
					ContentType: "text/markdown",
					Description: "Task description, used when no description argument is given",
				},
				Examples: []mtp.Example{
					{Description: "Add a task to a bucket", Command: "kanban task add \"Write the release notes\" --bucket ideas"},
					{Description: "Insert a task after another", Command: "kanban task add \"Review\" --after <id>"},
					{Description: "Add a task from piped text", Command: "echo 'Fix the flaky test' | kanban task add --bucket ideas"},
				},
			},
			"task list": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Table of tasks with ID, description, bucket, state and tags",
				},
			},
			"task update": {
				Stdin: &mtp.IODescriptor{
					ContentType: "text/markdown",
					Description: "New task description",
				},
				Examples: []mtp.Example{
					{Description: "Change the state of a task", Command: "kanban task update <id> --state prog"},
					{Description: "Clear the parent of a task", Command: "kanban task update <id> --parent \"\""},
				},
			},
			"task state": {
				Examples: []mtp.Example{
					{Description: "Mark a task blocked", Command: "kanban task state <id> blck"},
				},
			},
			"task move": {
				Examples: []mtp.Example{
					{Description: "Move a task to the end of another bucket", Command: "kanban task move <id> --bucket done"},
					{Description: "Move a task after another task", Command: "kanban task move <id> --after <other-id>"},
				},
			},
			"task delete": {
				Examples: []mtp.Example{
					{Description: "Delete a task (interactive confirm)", Command: "kanban task delete <id>"},
					{Description: "Delete a task (skip confirm)", Command: "kanban task delete <id> --force"},
				},
			},
			"task tree": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "ASCII tree of tasks and their parent links",
				},
			},
			"search": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Matching tasks with ID, bucket and snippet",
				},
				Examples: []mtp.Example{
					{Description: "Search task descriptions", Command: "kanban search \"release\""},
				},
			},
			"serve": {
				Examples: []mtp.Example{
					{Description: "Serve the HTTP API on another port", Command: "kanban serve --listen :8080"},
				},
			},
		},
	}

	mtp.WithDescribe(rootCmd, mtpOpts)
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// openBoard loads the configured backend into a fresh board and keeps it
// saved for the rest of the command.
func openBoard(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := slog.Default()

	a, err := store.Open(dataDir, cfg, log)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	brd = board.New(board.WithLogger(log))
	brd.SetLoading(true)
	data, err := a.Load(ctx)
	if err != nil {
		brd.SetError(err.Error())
		a.Close()
		return fmt.Errorf("loading board: %w", err)
	}

	adapter = a
	brd.Hydrate(data.Tasks, data.Buckets)
	persister = store.Attach(ctx, brd, adapter, log)
	return nil
}

func closeBoard() error {
	if adapter == nil {
		return nil
	}
	persister.Detach()
	saveErr := persister.Err()
	if saveErr != nil {
		// one more attempt with the final state before giving up
		saveErr = persister.Flush()
	}
	closeErr := adapter.Close()
	adapter = nil
	if saveErr != nil {
		return fmt.Errorf("saving board: %w", saveErr)
	}
	return closeErr
}

// resolveBucket returns the bucket address from the --bucket flag, the
// repo-local link file, or the configured default, in that order. A --token
// flag overrides the token of a linked address.
func resolveBucket(cmd *cobra.Command) (route.Address, error) {
	token, _ := cmd.Flags().GetString("token")
	if b, _ := cmd.Flags().GetString("bucket"); b != "" {
		return route.Address{Bucket: b, Token: token}, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		if addr, _, _ := repofile.Find(cwd); addr.Bucket != "" {
			if token != "" {
				addr.Token = token
			}
			return addr, nil
		}
	}
	if cfg != nil && cfg.DefaultBucket != "" {
		return route.Address{Bucket: cfg.DefaultBucket, Token: token}, nil
	}
	return route.Address{}, fmt.Errorf("--bucket is required (or set a default with: kanban bucket set-default <name>, or link a directory with: kanban bucket link)")
}

// tokenFor returns the token the caller holds for bucket: the --token flag,
// or the token of a linked address naming the same bucket.
func tokenFor(cmd *cobra.Command, bucket string) string {
	if token, _ := cmd.Flags().GetString("token"); token != "" {
		return token
	}
	if cwd, err := os.Getwd(); err == nil {
		if addr, _, _ := repofile.Find(cwd); addr.Bucket == bucket {
			return addr.Token
		}
	}
	return ""
}

// checkAccess fails when bucket is private and token does not open it.
func checkAccess(bucket, token string) error {
	b, ok := brd.GetBucketConfig(bucket)
	if !ok || b.Authenticates(token) {
		return nil
	}
	return fmt.Errorf("bucket %q is private: pass --token or link it with: kanban bucket link <address>", bucket)
}

// findTask returns the task named by ref and checks the caller may open it.
// ref is a full id or a unique prefix of one, such as the short ids shown by
// task tree.
func findTask(cmd *cobra.Command, ref string) (model.Task, error) {
	t, err := lookupTask(ref)
	if err != nil {
		return model.Task{}, err
	}
	if err := checkAccess(t.Bucket, tokenFor(cmd, t.Bucket)); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func lookupTask(ref string) (model.Task, error) {
	if t, ok := brd.Task(ref); ok && !t.Pending {
		return t, nil
	}
	if ref == "" || id.IsTask(ref) {
		return model.Task{}, fmt.Errorf("task %s not found", ref)
	}
	var matches []model.Task
	for _, t := range brd.State().Committed() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("task %s not found", ref)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}
