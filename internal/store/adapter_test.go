package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rogersnm/kanban/internal/config"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func fixture() Data {
	parent := "11111111-1111-4111-8111-111111111111"
	return Data{
		Buckets: []model.Bucket{
			{Name: "idea"},
			{Name: "secret plans", Token: "tok123"},
		},
		Tasks: []model.Task{
			{
				ID:          parent,
				Description: "Plan the launch",
				Bucket:      "idea",
				Tags:        []string{},
				Order:       1000,
				CreatedAt:   created,
				UpdatedAt:   created,
				State:       model.StateTodo,
			},
			{
				ID:          "22222222-2222-4222-8222-222222222222",
				Description: "Book the venue\n\nCall before Friday.",
				Bucket:      "secret plans",
				ParentID:    &parent,
				Tags:        []string{"ops", "urgent"},
				Order:       1500.5,
				CreatedAt:   created,
				UpdatedAt:   created.Add(time.Hour),
				Editing:     true,
				State:       model.StateProg,
			},
		},
	}
}

// roundTrip saves the fixture through a, reloads it, and compares.
func roundTrip(t *testing.T, a Adapter) {
	t.Helper()
	ctx := context.Background()
	want := fixture()
	require.NoError(t, a.Save(ctx, want))

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Buckets, got.Buckets)
	if diff := cmp.Diff(want.Tasks, got.Tasks); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
}

// pruneOnSave checks that tasks dropped from the board disappear from storage.
func pruneOnSave(t *testing.T, a Adapter) {
	t.Helper()
	ctx := context.Background()
	data := fixture()
	require.NoError(t, a.Save(ctx, data))

	data.Tasks = data.Tasks[:1]
	data.Buckets = data.Buckets[:1]
	require.NoError(t, a.Save(ctx, data))

	got, err := a.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, data.Tasks[0].ID, got.Tasks[0].ID)
	assert.Equal(t, data.Buckets, got.Buckets)
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		want    any
	}{
		{"", &JSONStore{}},
		{"json", &JSONStore{}},
		{"markdown", &MarkdownStore{}},
		{"sqlite", &SQLStore{}},
	}
	for _, tt := range tests {
		t.Run("backend="+tt.backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Backend = tt.backend
			a, err := Open(dir, cfg, nil)
			require.NoError(t, err)
			defer a.Close()
			assert.IsType(t, tt.want, a)
		})
	}
}

func TestOpen_SlotNamesFile(t *testing.T) {
	cfg := config.Default()
	cfg.Slot = "work"
	a, err := Open("/data", cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "work.json"), a.(*JSONStore).Path())
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "postgres"
	_, err := Open(t.TempDir(), cfg, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
