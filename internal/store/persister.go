package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rogersnm/kanban/internal/board"
)

// Persister saves the board through an Adapter whenever its tasks or
// buckets change. Pending tasks are never written. A failed save is
// reported on the board's Error field.
type Persister struct {
	ctx         context.Context
	adapter     Adapter
	board       *board.Store
	log         *slog.Logger
	unsubscribe func()

	mu    sync.Mutex
	saved uint64
	err   error
}

// Attach subscribes a Persister to b. The board's current revision counts
// as already saved.
func Attach(ctx context.Context, b *board.Store, a Adapter, log *slog.Logger) *Persister {
	if log == nil {
		log = slog.Default()
	}
	p := &Persister{ctx: ctx, adapter: a, board: b, log: log}
	p.saved = b.State().Revision
	p.unsubscribe = b.Subscribe(p.onChange)
	return p
}

func (p *Persister) onChange(snap board.Snapshot) {
	p.mu.Lock()
	if snap.Revision <= p.saved {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	if err := p.save(snap); err != nil {
		p.board.SetError(err.Error())
	}
}

// Flush saves the current snapshot unconditionally.
func (p *Persister) Flush() error {
	return p.save(p.board.State())
}

func (p *Persister) save(snap board.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.adapter.Save(p.ctx, Data{Tasks: snap.Committed(), Buckets: snap.Buckets})
	if err != nil {
		p.log.Error("saving board", "revision", snap.Revision, "err", err)
		p.err = err
		return err
	}
	p.log.Debug("board saved", "revision", snap.Revision, "tasks", len(snap.Tasks))
	if snap.Revision > p.saved {
		p.saved = snap.Revision
	}
	p.err = nil
	return nil
}

// Err returns the error from the most recent save, if it failed.
func (p *Persister) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Detach stops saving future changes.
func (p *Persister) Detach() {
	p.unsubscribe()
}
