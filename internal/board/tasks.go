package board

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/ordering"
)

// Patch is a partial task update. Nil fields are left alone. ParentID is a
// double pointer so a patch can clear the parent (non-nil outer, nil inner).
type Patch struct {
	Description *string
	Bucket      *string
	ParentID    **string
	Tags        *[]string
	Order       *float64
	Editing     *bool
	State       *model.State
}

// AddTempTask opens a pending task at the end of bucket with editing focus.
// It is a no-op while another pending task exists anywhere in the store.
func (s *Store) AddTempTask(bucket string) (model.Task, bool) {
	var created model.Task
	ok := s.update("addTempTask", func(st *Snapshot) bool {
		if _, exists := findPending(st.Tasks); exists {
			return false
		}
		now := s.now()
		created = model.Task{
			ID:        s.newID(),
			Bucket:    bucket,
			Tags:      []string{},
			Order:     ordering.Append(ordering.BucketOrders(st.Tasks, bucket, "")),
			CreatedAt: now,
			UpdatedAt: now,
			Editing:   true,
			State:     model.StateTodo,
			Pending:   true,
		}
		tasks := make([]model.Task, 0, len(st.Tasks)+1)
		tasks = append(tasks, created)
		tasks = append(tasks, st.Tasks...)
		clearEditing(tasks[1:])
		st.Tasks = tasks
		st.Error = ""
		return true
	})
	return created, ok
}

// AddTaskAfter inserts a committed, empty task right after afterID in
// bucket and gives it editing focus. Unknown afterID is a no-op.
func (s *Store) AddTaskAfter(afterID, bucket string) (model.Task, bool) {
	var created model.Task
	ok := s.update("addTaskAfter", func(st *Snapshot) bool {
		i := indexOf(st.Tasks, afterID)
		if i < 0 {
			return false
		}
		now := s.now()
		created = model.Task{
			ID:        s.newID(),
			Bucket:    bucket,
			Tags:      []string{},
			Order:     ordering.InsertAfter(st.Tasks[i].Order, ordering.BucketOrders(st.Tasks, bucket, "")),
			CreatedAt: now,
			UpdatedAt: now,
			Editing:   true,
			State:     model.StateTodo,
		}
		tasks := make([]model.Task, 0, len(st.Tasks)+1)
		tasks = append(tasks, st.Tasks...)
		clearEditing(tasks)
		st.Tasks = append(tasks, created)
		st.Error = ""
		return true
	})
	return created, ok
}

// UpdateTask applies p to the task with the given id. A patch that changes
// nothing leaves the task untouched, UpdatedAt included. Saving empty
// content removes the task instead: a description that trims to "", or a
// pending task leaving edit mode while still empty. A pending task that
// ends up with content is committed.
func (s *Store) UpdateTask(taskID string, p Patch) {
	s.update("updateTask", func(st *Snapshot) bool {
		i := indexOf(st.Tasks, taskID)
		if i < 0 {
			return false
		}
		cur := st.Tasks[i]

		if discards(cur, p) {
			st.Tasks = without(st.Tasks, i)
			st.Error = ""
			return true
		}

		next, changed := s.merge(st.Tasks, cur, p)
		if !changed {
			return false
		}
		if next.Pending && strings.TrimSpace(next.Description) != "" {
			next.Pending = false
		}
		next.UpdatedAt = s.now()

		tasks := slices.Clone(st.Tasks)
		if next.Editing && !cur.Editing {
			clearEditing(tasks)
		}
		tasks[i] = next
		st.Tasks = tasks
		st.Error = ""
		return true
	})
}

func discards(cur model.Task, p Patch) bool {
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return true
	}
	leaving := p.Editing != nil && !*p.Editing
	desc := cur.Description
	if p.Description != nil {
		desc = *p.Description
	}
	return cur.Pending && leaving && strings.TrimSpace(desc) == ""
}

// merge compares p with cur field by field and returns the merged task and
// whether any field differs.
func (s *Store) merge(tasks []model.Task, cur model.Task, p Patch) (model.Task, bool) {
	next := cur
	changed := false

	if p.Description != nil && *p.Description != cur.Description {
		next.Description = *p.Description
		changed = true
	}
	if p.ParentID != nil && !equalPtr(*p.ParentID, cur.ParentID) {
		next.ParentID = clonePtr(*p.ParentID)
		changed = true
	}
	if p.Tags != nil && !slices.Equal(*p.Tags, cur.Tags) {
		next.Tags = slices.Clone(*p.Tags)
		changed = true
	}
	if p.Editing != nil && *p.Editing != cur.Editing {
		next.Editing = *p.Editing
		changed = true
	}
	if p.State != nil && *p.State != cur.State {
		if err := model.ValidateState(*p.State); err != nil {
			s.log.Debug("board: ignoring state", "task", cur.ID, "err", err)
		} else {
			next.State = *p.State
			changed = true
		}
	}

	if p.Order != nil && !ordering.Valid(*p.Order) {
		s.log.Debug("board: ignoring order", "task", cur.ID, "order", *p.Order)
		p.Order = nil
	}
	moved := p.Bucket != nil && *p.Bucket != "" && *p.Bucket != cur.Bucket
	reordered := p.Order != nil && *p.Order != cur.Order
	switch {
	case moved:
		next.Bucket = *p.Bucket
		orders := ordering.BucketOrders(tasks, next.Bucket, cur.ID)
		if p.Order != nil {
			next.Order = ordering.Resolve(*p.Order, orders)
		} else {
			next.Order = ordering.Append(orders)
		}
		changed = true
	case reordered:
		next.Order = ordering.Resolve(*p.Order, ordering.BucketOrders(tasks, cur.Bucket, cur.ID))
		changed = changed || next.Order != cur.Order
	}
	return next, changed
}

// DeleteTask removes the task. Unknown ids are ignored.
func (s *Store) DeleteTask(taskID string) {
	s.update("deleteTask", func(st *Snapshot) bool {
		i := indexOf(st.Tasks, taskID)
		if i < 0 {
			return false
		}
		st.Tasks = without(st.Tasks, i)
		st.Error = ""
		return true
	})
}

// EditingTask moves the store-wide editing focus to taskID.
func (s *Store) EditingTask(taskID string) {
	s.update("editingTask", func(st *Snapshot) bool {
		if indexOf(st.Tasks, taskID) < 0 {
			return false
		}
		changed := false
		for _, t := range st.Tasks {
			if t.Editing != (t.ID == taskID) {
				changed = true
				break
			}
		}
		if !changed {
			return false
		}
		tasks := slices.Clone(st.Tasks)
		for i := range tasks {
			tasks[i].Editing = tasks[i].ID == taskID
		}
		st.Tasks = tasks
		st.Error = ""
		return true
	})
}

// MoveTask places a task after afterID (taking that task's bucket) or, with
// an empty afterID, at the end of bucket.
func (s *Store) MoveTask(taskID, bucket, afterID string) {
	s.update("moveTask", func(st *Snapshot) bool {
		i := indexOf(st.Tasks, taskID)
		if i < 0 || afterID == taskID {
			return false
		}
		cur := st.Tasks[i]
		next := cur
		if afterID != "" {
			j := indexOf(st.Tasks, afterID)
			if j < 0 {
				return false
			}
			next.Bucket = st.Tasks[j].Bucket
			next.Order = ordering.InsertAfter(st.Tasks[j].Order, ordering.BucketOrders(st.Tasks, next.Bucket, taskID))
		} else {
			if bucket != "" {
				next.Bucket = bucket
			}
			next.Order = ordering.Append(ordering.BucketOrders(st.Tasks, next.Bucket, taskID))
		}
		if next.Bucket == cur.Bucket && next.Order == cur.Order {
			return false
		}
		next.UpdatedAt = s.now()
		tasks := slices.Clone(st.Tasks)
		tasks[i] = next
		st.Tasks = tasks
		st.Error = ""
		return true
	})
}

// RebalanceBucket renumbers the bucket's keys to Step, 2*Step, ... keeping
// their current order.
func (s *Store) RebalanceBucket(bucket string) {
	s.update("rebalanceBucket", func(st *Snapshot) bool {
		var idx []int
		for i := range st.Tasks {
			if st.Tasks[i].Bucket == bucket {
				idx = append(idx, i)
			}
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(st.Tasks[a].Order, st.Tasks[b].Order)
		})
		keys := ordering.Rebalance(len(idx))
		tasks := slices.Clone(st.Tasks)
		changed := false
		now := s.now()
		for k, i := range idx {
			if tasks[i].Order != keys[k] {
				tasks[i].Order = keys[k]
				tasks[i].UpdatedAt = now
				changed = true
			}
		}
		if !changed {
			return false
		}
		st.Tasks = tasks
		st.Error = ""
		return true
	})
}

// Task returns a copy of the task with the given id.
func (s *Store) Task(taskID string) (model.Task, bool) {
	st := s.State()
	if i := indexOf(st.Tasks, taskID); i >= 0 {
		return st.Tasks[i].Clone(), true
	}
	return model.Task{}, false
}

// BucketTasks returns copies of the bucket's tasks sorted by order.
func (s *Store) BucketTasks(bucket string) []model.Task {
	return SortedBucket(s.State().Tasks, bucket)
}

// Pending returns the pending task, if any.
func (s *Store) Pending() (model.Task, bool) {
	t, ok := findPending(s.State().Tasks)
	return t.Clone(), ok
}

// Editing returns the task holding editing focus, if any.
func (s *Store) Editing() (model.Task, bool) {
	for _, t := range s.State().Tasks {
		if t.Editing {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

// SortedBucket filters tasks down to bucket and sorts them by order.
func SortedBucket(tasks []model.Task, bucket string) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.Bucket == bucket {
			out = append(out, t.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

func findPending(tasks []model.Task) (model.Task, bool) {
	for _, t := range tasks {
		if t.Pending {
			return t, true
		}
	}
	return model.Task{}, false
}

func indexOf(tasks []model.Task, taskID string) int {
	for i := range tasks {
		if tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// clearEditing drops editing focus in place; callers pass a slice they own.
func clearEditing(tasks []model.Task) {
	for i := range tasks {
		tasks[i].Editing = false
	}
}

func without(tasks []model.Task, i int) []model.Task {
	out := make([]model.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
