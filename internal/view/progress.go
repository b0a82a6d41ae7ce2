package view

import (
	"math"

	"github.com/rogersnm/kanban/internal/model"
)

const DefaultBarLength = 10

type Progress struct {
	Total      int
	Done       int
	InProgress int
}

func ProgressOf(tasks []model.Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		switch t.State {
		case model.StateDone:
			p.Done++
		case model.StateProg:
			p.InProgress++
		}
	}
	return p
}

// Percent is the rounded share of done tasks, 0 for an empty bucket.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Done) / float64(p.Total) * 100))
}

// Cells splits a bar of length cells into done, in-progress and empty
// segments. Each filled segment is rounded on its own; empty never goes
// negative.
func (p Progress) Cells(length int) (done, prog, empty int) {
	if p.Total == 0 {
		return 0, 0, length
	}
	done = int(math.Round(float64(p.Done) / float64(p.Total) * float64(length)))
	prog = int(math.Round(float64(p.InProgress) / float64(p.Total) * float64(length)))
	empty = max(0, length-done-prog)
	return done, prog, empty
}
