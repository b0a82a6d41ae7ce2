// Package view derives what a viewer sees from a board snapshot: the
// authenticated or masked contents of a bucket, its progress and search
// results.
package view

import (
	"github.com/rogersnm/kanban/internal/board"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/obfuscate"
)

type BucketView struct {
	Name          string
	Bucket        model.Bucket
	Known         bool // a bucket config exists
	Authenticated bool
	Placeholder   bool // tasks are synthetic stand-ins
	Active        []model.Task
	Done          []model.Task
	Progress      Progress
}

// CanAdd reports whether the viewer may add tasks.
func (v BucketView) CanAdd() bool {
	return v.Authenticated
}

// Tasks returns active tasks followed by done tasks.
func (v BucketView) Tasks() []model.Task {
	out := make([]model.Task, 0, len(v.Active)+len(v.Done))
	out = append(out, v.Active...)
	return append(out, v.Done...)
}

// Bucket builds the view of bucket name for a viewer holding token. Buckets
// without a config, or without a token, are open to everyone. Other viewers
// get masked descriptions, or placeholder tasks when the bucket is empty.
func Bucket(snap board.Snapshot, name, token string) BucketView {
	v := BucketView{Name: name, Authenticated: true}
	for _, b := range snap.Buckets {
		if b.Name == name {
			v.Bucket, v.Known = b, true
			v.Authenticated = b.Authenticates(token)
			break
		}
	}

	tasks := board.SortedBucket(snap.Tasks, name)
	if !v.Authenticated {
		tasks = obfuscate.Tasks(tasks)
		if len(tasks) == 0 {
			tasks = obfuscate.Placeholders(name, obfuscate.DefaultPlaceholderCount)
			v.Placeholder = true
		}
	}

	for _, t := range tasks {
		if t.IsDone() {
			v.Done = append(v.Done, t)
		} else {
			v.Active = append(v.Active, t)
		}
	}
	v.Progress = ProgressOf(tasks)
	return v
}
