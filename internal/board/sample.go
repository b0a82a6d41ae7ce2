package board

import (
	"time"

	"github.com/rogersnm/kanban/internal/id"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/ordering"
)

const day = 24 * time.Hour

type sampleTask struct {
	description string
	bucket      string
	state       model.State
	created     time.Duration
	updated     time.Duration
}

var sampleTasks = []sampleTask{
	{"Create wireframes and mockups for the new dashboard", "in_progress", model.StateProg, 2 * day, day},
	{"Configure PostgreSQL database and create initial tables", "done", model.StateDone, 3 * day, day},
	{"Add user login and registration functionality", "idea", model.StateTodo, day, day},
	{"Document all REST API endpoints with examples", "idea", model.StateTodo, 0, 0},
	{"Profile and improve application performance", "in_progress", model.StateProg, day, 0},
}

// SampleData builds the demo board relative to now. Task ids are stable
// across calls; buckets are public and listed in first-use order.
func SampleData(now time.Time) ([]model.Task, []model.Bucket) {
	tasks := make([]model.Task, 0, len(sampleTasks))
	var buckets []model.Bucket
	seen := map[string]bool{}
	for i, st := range sampleTasks {
		tasks = append(tasks, model.Task{
			ID:          id.Sample(i + 1),
			Description: st.description,
			Bucket:      st.bucket,
			Tags:        []string{},
			Order:       ordering.Append(ordering.BucketOrders(tasks, st.bucket, "")),
			CreatedAt:   now.Add(-st.created),
			UpdatedAt:   now.Add(-st.updated),
			State:       st.state,
		})
		if !seen[st.bucket] {
			seen[st.bucket] = true
			buckets = append(buckets, model.Bucket{Name: st.bucket})
		}
	}
	return tasks, buckets
}

// InitializeWithSampleData replaces the whole board with the demo data.
// Nothing from the previous state survives.
func (s *Store) InitializeWithSampleData() {
	tasks, buckets := SampleData(s.now())
	s.update("initializeWithSampleData", func(st *Snapshot) bool {
		st.Tasks = tasks
		st.Buckets = buckets
		st.Loading = false
		st.Error = ""
		return true
	})
}
