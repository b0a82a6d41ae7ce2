// Package tree arranges tasks by their parent links. Parent ids are stored
// as given, so the links may dangle or form cycles; both are tolerated.
package tree

import (
	"cmp"
	"slices"

	"github.com/rogersnm/kanban/internal/model"
)

type Tree struct {
	nodes    map[string]model.Task
	children map[string][]string // parent -> children, by order
	order    []string            // every id, by bucket then order
}

func Build(tasks []model.Task) *Tree {
	t := &Tree{
		nodes:    make(map[string]model.Task, len(tasks)),
		children: make(map[string][]string),
	}
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b model.Task) int {
		return cmp.Or(cmp.Compare(a.Bucket, b.Bucket), cmp.Compare(a.Order, b.Order))
	})
	for _, task := range sorted {
		t.nodes[task.ID] = task
		t.order = append(t.order, task.ID)
	}
	for _, id := range t.order {
		if p := t.parentOf(id); p != "" {
			t.children[p] = append(t.children[p], id)
		}
	}
	return t
}

// parentOf returns the parent id if it names a task on the board.
func (t *Tree) parentOf(id string) string {
	task := t.nodes[id]
	p := task.Parent()
	if _, ok := t.nodes[p]; !ok || p == id {
		return ""
	}
	return p
}

func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Children(id string) []string {
	return t.children[id]
}

// Roots returns tasks without a known parent, followed by one entry task for
// every cycle that no root reaches.
func (t *Tree) Roots() []string {
	var roots []string
	reached := make(map[string]bool)
	for _, id := range t.order {
		if t.parentOf(id) == "" {
			roots = append(roots, id)
			t.mark(id, reached)
		}
	}
	for _, id := range t.order {
		if !reached[id] {
			roots = append(roots, id)
			t.mark(id, reached)
		}
	}
	return roots
}

func (t *Tree) mark(id string, reached map[string]bool) {
	if reached[id] {
		return
	}
	reached[id] = true
	for _, c := range t.children[id] {
		t.mark(c, reached)
	}
}

// Cycles lists each parent cycle once, starting from its first task in
// board order.
func (t *Tree) Cycles() [][]string {
	var cycles [][]string
	done := make(map[string]bool)
	for _, start := range t.order {
		if done[start] {
			continue
		}
		pos := make(map[string]int)
		var path []string
		cur := start
		for cur != "" && !done[cur] {
			if i, ok := pos[cur]; ok {
				cycles = append(cycles, slices.Clone(path[i:]))
				break
			}
			pos[cur] = len(path)
			path = append(path, cur)
			cur = t.parentOf(cur)
		}
		for _, id := range path {
			done[id] = true
		}
	}
	return cycles
}

// Ancestors walks parent links upward from id, stopping at a missing parent
// or at the first repeat.
func (t *Tree) Ancestors(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	for p := t.parentOf(id); p != "" && !seen[p]; p = t.parentOf(p) {
		seen[p] = true
		out = append(out, p)
	}
	return out
}
