package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rogersnm/kanban/internal/board"
	"github.com/rogersnm/kanban/internal/editor"
	"github.com/rogersnm/kanban/internal/markdown"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/ordering"
	"github.com/rogersnm/kanban/internal/tree"
	"github.com/rogersnm/kanban/internal/view"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [description]",
	Short: "Add a task to a bucket",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var desc string
		if len(args) == 1 {
			desc = args[0]
		} else {
			desc = readStdin()
		}
		if strings.TrimSpace(desc) == "" {
			return fmt.Errorf("a description argument or piped description is required")
		}

		var created model.Task
		if after, _ := cmd.Flags().GetString("after"); after != "" {
			anchor, err := findTask(cmd, after)
			if err != nil {
				return err
			}
			t, ok := brd.AddTaskAfter(anchor.ID, anchor.Bucket)
			if !ok {
				return fmt.Errorf("task %s not found", after)
			}
			created = t
		} else {
			addr, err := resolveBucket(cmd)
			if err != nil {
				return err
			}
			if err := checkAccess(addr.Bucket, addr.Token); err != nil {
				return err
			}
			t, ok := brd.AddTempTask(addr.Bucket)
			if !ok {
				return fmt.Errorf("another task is already being added")
			}
			created = t
		}

		editing := false
		p := board.Patch{Description: &desc, Editing: &editing}
		if cmd.Flags().Changed("tags") {
			tags := splitTags(cmd)
			p.Tags = &tags
		}
		brd.UpdateTask(created.ID, p)

		fmt.Printf("Created task %s in %s\n", created.ID, created.Bucket)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		stateFilter, _ := cmd.Flags().GetString("state")
		if stateFilter != "" {
			if err := model.ValidateState(model.State(stateFilter)); err != nil {
				return err
			}
		}

		var tasks []model.Task
		if all {
			for _, b := range brd.State().Buckets {
				v := view.Bucket(brd.State(), b.Name, tokenFor(cmd, b.Name))
				if v.Authenticated {
					tasks = append(tasks, v.Tasks()...)
				}
			}
		} else {
			addr, err := resolveBucket(cmd)
			if err != nil {
				return err
			}
			v := view.Bucket(brd.State(), addr.Bucket, addr.Token)
			if v.Placeholder {
				fmt.Printf("Bucket %s is private.\n", addr.Bucket)
				return nil
			}
			tasks = v.Tasks()
		}

		if stateFilter != "" {
			tasks = slices.DeleteFunc(tasks, func(t model.Task) bool {
				return t.State != model.State(stateFilter)
			})
		}
		fmt.Println(markdown.RenderTaskTable(tasks))
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := findTask(cmd, args[0])
		if err != nil {
			return err
		}

		pretty, _ := cmd.Flags().GetBool("pretty")
		if !pretty {
			data, err := markdown.Marshal(t, t.Description)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		}

		fields := []string{
			markdown.RenderField("ID", t.ID),
			markdown.RenderField("Bucket", t.Bucket),
			markdown.RenderField("State", markdown.RenderState(t.State)),
		}
		if parent := t.Parent(); parent != "" {
			fields = append(fields, markdown.RenderField("Parent", parent))
		}
		if ancestors := tree.Build(brd.State().Committed()).Ancestors(t.ID); len(ancestors) > 1 {
			slices.Reverse(ancestors)
			fields = append(fields, markdown.RenderField("Ancestors", strings.Join(ancestors, " > ")))
		}
		if len(t.Tags) > 0 {
			fields = append(fields, markdown.RenderField("Tags", strings.Join(t.Tags, ", ")))
		}
		fields = append(fields,
			markdown.RenderField("Order", fmt.Sprintf("%g", t.Order)),
			markdown.RenderField("Created", t.CreatedAt.Format(time.DateTime)),
			markdown.RenderField("Updated", t.UpdatedAt.Format(time.DateTime)),
		)
		fmt.Print(markdown.RenderEntityHeader(tree.Summary(t.Description, 72), fields))

		rendered, err := markdown.RenderMarkdown(t.Description)
		if err != nil {
			fmt.Println(t.Description)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := findTask(cmd, args[0])
		if err != nil {
			return err
		}

		var p board.Patch
		changed := false
		if cmd.Flags().Changed("description") {
			desc, _ := cmd.Flags().GetString("description")
			p.Description = &desc
			changed = true
		} else if body := readStdin(); body != "" {
			p.Description = &body
			changed = true
		}
		if cmd.Flags().Changed("bucket") {
			bucket, _ := cmd.Flags().GetString("bucket")
			if err := checkAccess(bucket, tokenFor(cmd, bucket)); err != nil {
				return err
			}
			p.Bucket = &bucket
			changed = true
		}
		if cmd.Flags().Changed("parent") {
			parent, _ := cmd.Flags().GetString("parent")
			var pp *string
			if parent != "" {
				pp = &parent
			}
			p.ParentID = &pp
			changed = true
		}
		if cmd.Flags().Changed("tags") {
			tags := splitTags(cmd)
			p.Tags = &tags
			changed = true
		}
		if cmd.Flags().Changed("order") {
			order, _ := cmd.Flags().GetFloat64("order")
			if !ordering.Valid(order) {
				return fmt.Errorf("invalid --order %v: must be a finite number", order)
			}
			p.Order = &order
			changed = true
		}
		if cmd.Flags().Changed("state") {
			s, _ := cmd.Flags().GetString("state")
			state := model.State(s)
			if err := model.ValidateState(state); err != nil {
				return err
			}
			p.State = &state
			changed = true
		}
		if !changed {
			return fmt.Errorf("at least one update flag or piped description is required (--description, --bucket, --parent, --tags, --order, --state, stdin)")
		}

		brd.UpdateTask(t.ID, p)
		reportUpdate(t.ID, "Updated")
		return nil
	},
}

// reportUpdate prints the outcome of an update, which deletes the task when
// its description was emptied.
func reportUpdate(taskID, verb string) {
	if _, ok := brd.Task(taskID); !ok {
		fmt.Printf("Deleted task %s (empty description)\n", taskID)
		return
	}
	fmt.Printf("%s task %s\n", verb, taskID)
}

func setState(cmd *cobra.Command, taskID string, state model.State, verb string) error {
	t, err := findTask(cmd, taskID)
	if err != nil {
		return err
	}
	brd.UpdateTask(t.ID, board.Patch{State: &state})
	fmt.Printf("%s task %s\n", verb, t.ID)
	return nil
}

var taskStateCmd = &cobra.Command{
	Use:       "state <id> <todo|prog|done|blck>",
	Short:     "Set the state of a task",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"todo", "prog", "done", "blck"},
	RunE: func(cmd *cobra.Command, args []string) error {
		state := model.State(args[1])
		if err := model.ValidateState(state); err != nil {
			return err
		}
		return setState(cmd, args[0], state, "Updated")
	},
}

var taskStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a task (set state to prog)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setState(cmd, args[0], model.StateProg, "Started")
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Finish a task (set state to done)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setState(cmd, args[0], model.StateDone, "Finished")
	},
}

var taskBlockCmd = &cobra.Command{
	Use:   "block <id>",
	Short: "Block a task (set state to blck)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setState(cmd, args[0], model.StateBlocked, "Blocked")
	},
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Move a task after another task or to the end of a bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := findTask(cmd, args[0])
		if err != nil {
			return err
		}
		bucket, _ := cmd.Flags().GetString("bucket")
		after, _ := cmd.Flags().GetString("after")
		if bucket == "" && after == "" {
			return fmt.Errorf("--bucket or --after is required")
		}

		target := bucket
		if after != "" {
			anchor, err := findTask(cmd, after)
			if err != nil {
				return err
			}
			after, target = anchor.ID, anchor.Bucket
		}
		if err := checkAccess(target, tokenFor(cmd, target)); err != nil {
			return err
		}

		brd.MoveTask(t.ID, bucket, after)
		fmt.Printf("Moved task %s to %s\n", t.ID, target)
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task description in $EDITOR (saving it empty deletes the task)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := findTask(cmd, args[0])
		if err != nil {
			return err
		}
		brd.EditingTask(t.ID)

		desc, err := editor.Edit(t.Description)
		if err != nil {
			return fmt.Errorf("editing task: %w", err)
		}
		editing := false
		brd.UpdateTask(t.ID, board.Patch{Description: &desc, Editing: &editing})
		reportUpdate(t.ID, "Saved")
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := findTask(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Task: %s (%s)\n", tree.Summary(t.Description, 60), t.ID)
		if err := confirmDelete(cmd, t.ID); err != nil {
			return err
		}
		brd.DeleteTask(t.ID)
		fmt.Printf("Deleted task %s\n", t.ID)
		return nil
	},
}

var taskTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show tasks as a tree of parent links",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := brd.State()
		var tasks []model.Task
		if cmd.Flags().Changed("bucket") {
			addr, err := resolveBucket(cmd)
			if err != nil {
				return err
			}
			if err := checkAccess(addr.Bucket, addr.Token); err != nil {
				return err
			}
			tasks = board.SortedBucket(snap.Committed(), addr.Bucket)
		} else {
			for _, t := range snap.Committed() {
				if checkAccess(t.Bucket, tokenFor(cmd, t.Bucket)) == nil {
					tasks = append(tasks, t)
				}
			}
		}

		tr := tree.Build(tasks)
		fmt.Println(tree.RenderASCII(tr))
		for _, c := range tr.Cycles() {
			fmt.Printf("warning: parent cycle %s\n", strings.Join(c, " -> "))
		}
		return nil
	},
}

func splitTags(cmd *cobra.Command) []string {
	raw, _ := cmd.Flags().GetString("tags")
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func confirmDelete(cmd *cobra.Command, taskID string) error {
	if force, _ := cmd.Flags().GetBool("force"); force {
		return nil
	}
	var confirm bool
	if err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete task %s?", taskID)).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&confirm).
		Run(); err != nil || !confirm {
		return fmt.Errorf("cancelled")
	}
	return nil
}

// readStdin returns piped input, or "" when stdin is a terminal.
func readStdin() string {
	info, err := os.Stdin.Stat()
	if err != nil {
		return ""
	}
	if info.Mode()&os.ModeNamedPipe == 0 && info.Size() == 0 {
		return ""
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ""
	}
	return string(data)
}

func init() {
	taskAddCmd.Flags().StringP("bucket", "b", "", "bucket name")
	taskAddCmd.Flags().String("after", "", "insert after this task (takes its bucket)")
	taskAddCmd.Flags().String("tags", "", "comma-separated tags")

	taskListCmd.Flags().StringP("bucket", "b", "", "bucket name")
	taskListCmd.Flags().StringP("state", "s", "", "filter by state (todo, prog, done, blck)")
	taskListCmd.Flags().Bool("all", false, "list tasks of every bucket you can open")

	taskShowCmd.Flags().Bool("pretty", false, "render with styling instead of raw markdown")

	taskUpdateCmd.Flags().String("description", "", "new description (empty deletes the task)")
	taskUpdateCmd.Flags().StringP("bucket", "b", "", "move to bucket (appends)")
	taskUpdateCmd.Flags().String("parent", "", "parent task id (empty clears)")
	taskUpdateCmd.Flags().String("tags", "", "comma-separated tags (empty clears)")
	taskUpdateCmd.Flags().Float64("order", 0, "order key within the bucket")
	taskUpdateCmd.Flags().StringP("state", "s", "", "state (todo, prog, done, blck)")

	taskMoveCmd.Flags().StringP("bucket", "b", "", "target bucket (task goes to the end)")
	taskMoveCmd.Flags().String("after", "", "place after this task")

	taskDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	taskTreeCmd.Flags().StringP("bucket", "b", "", "only tasks of this bucket")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskStateCmd)
	taskCmd.AddCommand(taskStartCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskBlockCmd)
	taskCmd.AddCommand(taskMoveCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskTreeCmd)
	rootCmd.AddCommand(taskCmd)
}
