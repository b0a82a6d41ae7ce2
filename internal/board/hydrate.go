package board

import (
	"cmp"
	"slices"

	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/ordering"
)

// Hydrate replaces the board with state loaded from persistence. The input
// is normalized on the way in: pending flags are dropped, at most one task
// keeps editing focus, clashing keys within a bucket are separated and any
// bucket referenced by a task but not declared is added as public.
func (s *Store) Hydrate(tasks []model.Task, buckets []model.Bucket) {
	tasks, buckets = normalize(tasks, buckets)
	s.update("hydrate", func(st *Snapshot) bool {
		st.Tasks = tasks
		st.Buckets = buckets
		st.Loading = false
		return true
	})
}

func normalize(in []model.Task, inBuckets []model.Bucket) ([]model.Task, []model.Bucket) {
	tasks := make([]model.Task, 0, len(in))
	for _, t := range in {
		tasks = append(tasks, t.Clone())
	}

	editing := false
	for i := range tasks {
		tasks[i].Pending = false
		if tasks[i].State == "" {
			tasks[i].State = model.StateTodo
		}
		if tasks[i].Tags == nil {
			tasks[i].Tags = []string{}
		}
		if tasks[i].Editing {
			if editing {
				tasks[i].Editing = false
			}
			editing = true
		}
	}

	// Separate duplicate keys per bucket, lowest original key first.
	idx := make([]int, len(tasks))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(tasks[a].Order, tasks[b].Order)
	})
	seen := map[string][]float64{}
	for _, i := range idx {
		b := tasks[i].Bucket
		tasks[i].Order = ordering.Resolve(tasks[i].Order, seen[b])
		seen[b] = append(seen[b], tasks[i].Order)
	}

	buckets := slices.Clone(inBuckets)
	if buckets == nil {
		buckets = []model.Bucket{}
	}
	for _, t := range tasks {
		if _, ok := findBucket(buckets, t.Bucket); !ok && t.Bucket != "" {
			buckets = append(buckets, model.Bucket{Name: t.Bucket})
		}
	}
	return tasks, buckets
}
