package tree

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rogersnm/kanban/internal/model"
)

var (
	todoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")) // white
	progStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)

const labelWidth = 60

func stateStyle(s model.State) lipgloss.Style {
	switch s {
	case model.StateDone:
		return doneStyle
	case model.StateProg:
		return progStyle
	case model.StateBlocked:
		return blockedStyle
	default:
		return todoStyle
	}
}

// Summary returns the first line of a description cut to width runes.
func Summary(desc string, width int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(desc), "\n")
	r := []rune(strings.TrimSpace(line))
	if len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return string(r)
}

// RenderASCII draws the forest of parent links.
func RenderASCII(t *Tree) string {
	if t.Len() == 0 {
		return "No tasks."
	}
	visited := make(map[string]bool)
	var sb strings.Builder
	for i, root := range t.Roots() {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderNode(&sb, t, root, "", true, visited)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, t *Tree, id, prefix string, isLast bool, visited map[string]bool) {
	task, ok := t.nodes[id]
	if !ok {
		return
	}

	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" {
		connector = ""
	}

	label := stateStyle(task.State).Render(fmt.Sprintf("%s %s [%s/%s]",
		shortID(task.ID), Summary(task.Description, labelWidth), task.Bucket, task.State))

	if visited[id] {
		sb.WriteString(prefix + connector + label + " (see above)\n")
		return
	}
	visited[id] = true

	sb.WriteString(prefix + connector + label + "\n")

	children := t.Children(id)
	childPrefix := prefix
	if prefix == "" {
		childPrefix = "    "
	} else if isLast {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}
	for i, child := range children {
		renderNode(sb, t, child, childPrefix, i == len(children)-1, visited)
	}
}

// shortID keeps the first uuid group, which is enough to tell tasks apart
// on screen.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
