package model

import (
	"fmt"
	"slices"
	"time"
)

type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"-"`
	Bucket      string    `json:"bucket" yaml:"bucket"`
	ParentID    *string   `json:"parent_id" yaml:"parent_id,omitempty"`
	Tags        []string  `json:"tags" yaml:"tags,omitempty"`
	Order       float64   `json:"order" yaml:"order"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
	Editing     bool      `json:"editing" yaml:"editing,omitempty"`
	State       State     `json:"state" yaml:"state"`

	// Pending marks the single not-yet-committed task. It is owned by the
	// board store and never serialized.
	Pending bool `json:"-" yaml:"-"`
}

func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}
	if t.Bucket == "" {
		return fmt.Errorf("task bucket is required")
	}
	return ValidateState(t.State)
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	c := t
	c.Tags = slices.Clone(t.Tags)
	if t.ParentID != nil {
		p := *t.ParentID
		c.ParentID = &p
	}
	return c
}

// Parent returns the parent id, or "" when the task has none.
func (t *Task) Parent() string {
	if t.ParentID == nil {
		return ""
	}
	return *t.ParentID
}

func (t *Task) IsDone() bool {
	return t.State == StateDone
}
