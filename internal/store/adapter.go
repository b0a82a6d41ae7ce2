// Package store persists board snapshots. Each backend implements Adapter;
// Open picks one from configuration.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/rogersnm/kanban/internal/config"
	"github.com/rogersnm/kanban/internal/model"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Data is the persisted part of a board.
type Data struct {
	Tasks   []model.Task   `json:"tasks"`
	Buckets []model.Bucket `json:"buckets"`
}

// Adapter loads and saves whole board snapshots.
type Adapter interface {
	Load(ctx context.Context) (Data, error)
	Save(ctx context.Context, data Data) error
	Close() error
}

// compile-time checks
var (
	_ Adapter = (*JSONStore)(nil)
	_ Adapter = (*MarkdownStore)(nil)
	_ Adapter = (*SQLStore)(nil)
)

// Open returns the adapter named by cfg.Backend, rooted in dataDir and keyed
// by cfg.Slot.
func Open(dataDir string, cfg *config.Config, log *slog.Logger) (Adapter, error) {
	slot := cfg.Slot
	if slot == "" {
		slot = config.DefaultSlot
	}
	if log == nil {
		log = slog.Default()
	}
	switch cfg.Backend {
	case "", "json":
		return NewJSON(filepath.Join(dataDir, slot+".json")), nil
	case "markdown":
		return NewMarkdown(filepath.Join(dataDir, slot)), nil
	case "sqlite":
		return NewSQL(filepath.Join(dataDir, slot+".db"), log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
