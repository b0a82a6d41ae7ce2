package markdown

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/tree"
)

var (
	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle      = lipgloss.NewStyle()
)

const summaryWidth = 50

type BucketRow struct {
	Bucket   model.Bucket
	Tasks    int
	Progress string
}

func RenderBucketTable(rows []BucketRow) string {
	if len(rows) == 0 {
		return "No buckets found."
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		visibility := "public"
		if r.Bucket.Protected() {
			visibility = "private"
		}
		cells[i] = []string{r.Bucket.Name, visibility, strconv.Itoa(r.Tasks), r.Progress}
	}
	return renderTable([]string{"Bucket", "Visibility", "Tasks", "Progress"}, cells)
}

func RenderTaskTable(tasks []model.Task) string {
	if len(tasks) == 0 {
		return "No tasks found."
	}
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		rows[i] = []string{
			t.ID,
			tree.Summary(t.Description, summaryWidth),
			t.Bucket,
			RenderState(t.State),
			strings.Join(t.Tags, ","),
		}
	}
	return renderTable([]string{"ID", "Description", "Bucket", "State", "Tags"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerRowStyle
			}
			return cellStyle
		})
	return t.Render()
}
