package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/rogersnm/kanban/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TaskFields(t *testing.T) {
	input := `---
id: 2f6d1c0e-8b1a-4a57-9d3c-3c2b9a1e7f00
bucket: in_progress
parent_id: 11111111-1111-4111-8111-111111111111
tags:
  - ops
  - urgent
order: 1500.5
state: prog
created_at: 2026-01-01T00:00:00Z
updated_at: 2026-01-02T00:00:00Z
---

Book the venue.
`
	task, body, err := Parse[model.Task](strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "2f6d1c0e-8b1a-4a57-9d3c-3c2b9a1e7f00", task.ID)
	assert.Equal(t, "in_progress", task.Bucket)
	assert.Equal(t, "11111111-1111-4111-8111-111111111111", task.Parent())
	assert.Equal(t, []string{"ops", "urgent"}, task.Tags)
	assert.Equal(t, 1500.5, task.Order)
	assert.Equal(t, model.StateProg, task.State)
	assert.Equal(t, "", task.Description, "description lives in the body")
	assert.Equal(t, "Book the venue.", body)
}

func TestParse_EmptyBody(t *testing.T) {
	input := `---
id: t1
bucket: idea
---
`
	task, body, err := Parse[model.Task](strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, "", body)
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := "Just some plain markdown."
	task, body, err := Parse[model.Task](strings.NewReader(input))
	// adrg/frontmatter returns empty struct when no frontmatter found
	require.NoError(t, err)
	assert.Equal(t, "", task.ID)
	assert.Equal(t, "Just some plain markdown.", body)
}

func TestParse_MalformedYAML(t *testing.T) {
	input := "---\n{{invalid yaml\n---\n"
	_, _, err := Parse[model.Task](strings.NewReader(input))
	assert.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	parent := "p1"
	original := model.Task{
		ID:        "t1",
		Bucket:    "idea",
		ParentID:  &parent,
		Tags:      []string{"home"},
		Order:     1000,
		State:     model.StateBlocked,
		Editing:   true,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	body := "Some body content."

	data, err := Marshal(&original, body)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "pending")

	parsed, parsedBody, err := Parse[model.Task](strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
	assert.Equal(t, body, parsedBody)
}

func TestMarshal_EmptyBody(t *testing.T) {
	meta := model.Bucket{Name: "idea"}
	data, err := Marshal(meta, "")
	require.NoError(t, err)

	parsed, body, err := Parse[model.Bucket](strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, meta, parsed)
	assert.Equal(t, "", body)
}

func TestMarshal_PreservesBody(t *testing.T) {
	body := "Line 1\n\n```go\nfunc main() {}\n```\n\n**Bold** and *italic*"
	data, err := Marshal(model.Task{ID: "t1", Bucket: "idea"}, body)
	require.NoError(t, err)

	_, parsedBody, err := Parse[model.Task](strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, body, parsedBody)
}

func TestMarshal_KeepsSurroundingWhitespace(t *testing.T) {
	body := "  indented first line\nlast line ends with newline\n"
	data, err := Marshal(model.Task{ID: "t1", Bucket: "idea"}, body)
	require.NoError(t, err)

	_, parsedBody, err := Parse[model.Task](strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, body, parsedBody)
}
