package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/view"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	todoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	progStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	blockedSty   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	barDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	barProgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	barIdleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func StateStyle(state model.State) lipgloss.Style {
	switch state {
	case model.StateDone:
		return doneStyle
	case model.StateProg:
		return progStyle
	case model.StateBlocked:
		return blockedSty
	default:
		return todoStyle
	}
}

func RenderField(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func RenderState(state model.State) string {
	return StateStyle(state).Render(state.Label())
}

func RenderEntityHeader(title string, fields []string) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title))
	sb.WriteString("\n")
	for _, f := range fields {
		sb.WriteString("  " + f + "\n")
	}
	return sb.String()
}

// RenderProgress draws "NN% [█████░░░░░]": done cells solid, in-progress and
// idle cells shaded in different colours.
func RenderProgress(p view.Progress) string {
	done, prog, empty := p.Cells(view.DefaultBarLength)
	return fmt.Sprintf("%3d%% [%s%s%s]",
		p.Percent(),
		barDoneStyle.Render(strings.Repeat("█", done)),
		barProgStyle.Render(strings.Repeat("░", prog)),
		barIdleStyle.Render(strings.Repeat("░", empty)),
	)
}
