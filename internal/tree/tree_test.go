package tree

import (
	"strings"
	"testing"

	"github.com/rogersnm/kanban/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(id string, order float64, parent string) model.Task {
	t := model.Task{ID: id, Description: "task " + id, Bucket: "b", Order: order, State: model.StateTodo}
	if parent != "" {
		t.ParentID = &parent
	}
	return t
}

func TestBuild_Empty(t *testing.T) {
	tr := Build(nil)
	assert.Empty(t, tr.Roots())
	assert.Equal(t, "No tasks.", RenderASCII(tr))
}

func TestBuild_Forest(t *testing.T) {
	tr := Build([]model.Task{
		task("C", 3000, "A"),
		task("A", 1000, ""),
		task("B", 2000, "A"),
		task("D", 4000, ""),
	})
	assert.Equal(t, []string{"A", "D"}, tr.Roots())
	assert.Equal(t, []string{"B", "C"}, tr.Children("A"), "children follow board order")
	assert.Empty(t, tr.Cycles())
}

func TestBuild_DanglingParentIsRoot(t *testing.T) {
	tr := Build([]model.Task{task("A", 1000, "gone")})
	assert.Equal(t, []string{"A"}, tr.Roots())
}

func TestBuild_SelfParentIsRoot(t *testing.T) {
	tr := Build([]model.Task{task("A", 1000, "A")})
	assert.Equal(t, []string{"A"}, tr.Roots())
	assert.Empty(t, tr.Cycles())
}

func TestCycles(t *testing.T) {
	tr := Build([]model.Task{
		task("A", 1000, "B"),
		task("B", 2000, "A"),
		task("C", 3000, "A"),
		task("D", 4000, ""),
	})
	require.Equal(t, [][]string{{"A", "B"}}, tr.Cycles())
	assert.Equal(t, []string{"D", "A"}, tr.Roots(), "a cycle gets an entry point")
	assert.Equal(t, []string{"B"}, tr.Ancestors("A"))
	assert.Equal(t, []string{"A", "B"}, tr.Ancestors("C"))
}

func TestRenderASCII_Cycle(t *testing.T) {
	tr := Build([]model.Task{
		task("A", 1000, "B"),
		task("B", 2000, "A"),
	})
	out := RenderASCII(tr)
	assert.Contains(t, out, "task A")
	assert.Contains(t, out, "task B")
	assert.Contains(t, out, "(see above)")
}

func TestRenderASCII_Nesting(t *testing.T) {
	tr := Build([]model.Task{
		task("A", 1000, ""),
		task("B", 2000, "A"),
		task("C", 3000, "B"),
	})
	lines := strings.Split(strings.TrimRight(RenderASCII(tr), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "A task A")
	assert.Contains(t, lines[1], "└── B task B")
	assert.Contains(t, lines[2], "└── C task C")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "First line", Summary("  First line\nsecond", 60))
	assert.Equal(t, "abcd…", Summary("abcdefgh", 5))
	assert.Equal(t, "", Summary("", 10))
}
