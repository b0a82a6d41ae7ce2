// Package board owns the canonical task and bucket state of a kanban board.
//
// A Store is constructed explicitly and handed to every consumer. All reads
// go through State and the selectors, all writes through the Store's
// operations. Operations never return errors: unknown ids and attempts to
// break an invariant are silent no-ops, and the Error field of the snapshot
// is reserved for failures reported by collaborators such as persistence.
//
// State is copy-on-write. Every mutation publishes fresh Tasks/Buckets
// slices and never writes into a slice it has already published, so
// subscribers can detect changes by comparing slice identity or Revision.
package board

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rogersnm/kanban/internal/id"
	"github.com/rogersnm/kanban/internal/model"
)

// Snapshot is an immutable view of the store. Callers must not modify the
// slices it carries.
type Snapshot struct {
	Tasks    []model.Task
	Buckets  []model.Bucket
	Loading  bool
	Error    string
	Revision uint64 // bumped only when Tasks or Buckets change
}

// Committed returns the tasks that are not pending.
func (s Snapshot) Committed() []model.Task {
	out := make([]model.Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if !t.Pending {
			out = append(out, t)
		}
	}
	return out
}

type Listener func(Snapshot)

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

type subscription struct {
	id int
	fn Listener
}

type Store struct {
	mu    sync.Mutex
	state Snapshot

	now   func() time.Time
	newID func() string
	log   *slog.Logger

	subs     []subscription
	nextSub  int
	queue    []Snapshot
	draining bool
}

func New(opts ...Option) *Store {
	s := &Store{
		now:   defaultNow,
		newID: id.NewTask,
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// State returns the current snapshot.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every new snapshot. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	sid := s.nextSub
	subs := make([]subscription, len(s.subs), len(s.subs)+1)
	copy(subs, s.subs)
	s.subs = append(subs, subscription{id: sid, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := make([]subscription, 0, len(s.subs))
		for _, sub := range s.subs {
			if sub.id != sid {
				subs = append(subs, sub)
			}
		}
		s.subs = subs
	}
}

// update runs fn against a copy of the current state and publishes the
// result if fn reports a change. Listeners run outside the lock, one
// snapshot at a time and in publication order. A mutation made from inside
// a listener is queued behind the snapshot being delivered.
func (s *Store) update(op string, fn func(st *Snapshot) bool) bool {
	s.mu.Lock()
	next := s.state
	if !fn(&next) {
		s.mu.Unlock()
		s.log.Debug("board: no-op", "op", op)
		return false
	}
	if !sameSlice(next.Tasks, s.state.Tasks) || !sameSlice(next.Buckets, s.state.Buckets) {
		next.Revision = s.state.Revision + 1
	}
	s.state = next
	s.queue = append(s.queue, next)
	if s.draining {
		s.mu.Unlock()
		return true
	}
	s.draining = true
	for len(s.queue) > 0 {
		batch, subs := s.queue, s.subs
		s.queue = nil
		s.mu.Unlock()
		for _, snap := range batch {
			for _, sub := range subs {
				sub.fn(snap)
			}
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
	return true
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func (s *Store) SetLoading(loading bool) {
	s.update("setLoading", func(st *Snapshot) bool {
		if st.Loading == loading {
			return false
		}
		st.Loading = loading
		return true
	})
}

func (s *Store) SetError(msg string) {
	s.update("setError", func(st *Snapshot) bool {
		if st.Error == msg {
			return false
		}
		st.Error = msg
		return true
	})
}

func (s *Store) ClearError() {
	s.SetError("")
}
