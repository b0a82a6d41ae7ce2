package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rogersnm/kanban/internal/model"
	"github.com/rogersnm/kanban/internal/ordering"
)

const (
	lockTimeout = 3 * time.Second
	lockRetry   = 100 * time.Millisecond
)

// JSONStore keeps the board in a single JSON file guarded by a sibling
// .lock file, so several processes can share one slot.
type JSONStore struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

func NewJSON(path string) *JSONStore {
	return &JSONStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Load(ctx context.Context) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return Data{}, nil
	}
	unlock, err := s.acquire(ctx)
	if err != nil {
		return Data{}, err
	}
	defer unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Data{}, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return Data{}, nil
	}
	data, err := decode(raw)
	if err != nil {
		return Data{}, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return data, nil
}

func (s *JSONStore) Save(ctx context.Context, data Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if data.Tasks == nil {
		data.Tasks = []model.Task{}
	}
	if data.Buckets == nil {
		data.Buckets = []model.Bucket{}
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling board: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) acquire(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire lock on %s", s.path)
	}
	return func() { _ = s.lock.Unlock() }, nil
}

type fileShape struct {
	Tasks   json.RawMessage `json:"tasks"`
	Cards   json.RawMessage `json:"cards"`
	Buckets json.RawMessage `json:"buckets"`
	State   json.RawMessage `json:"state"`
}

// legacyCard is a task as written by the browser build, which used numeric
// ids and negative ids for unsaved cards.
type legacyCard struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Bucket      string    `json:"bucket"`
	ParentID    *int64    `json:"parent_id"`
	Tags        []string  `json:"tags"`
	Order       *float64  `json:"order"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func decode(raw []byte) (Data, error) {
	var shape fileShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return Data{}, err
	}
	// Browser storage wraps the persisted fields in {"state": ..., "version": n}.
	if len(shape.State) > 0 && shape.Tasks == nil && shape.Cards == nil {
		return decode(shape.State)
	}

	var data Data
	buckets, err := decodeBuckets(shape.Buckets)
	if err != nil {
		return Data{}, err
	}
	data.Buckets = buckets

	switch {
	case shape.Tasks != nil:
		if err := json.Unmarshal(shape.Tasks, &data.Tasks); err != nil {
			return Data{}, fmt.Errorf("tasks: %w", err)
		}
	case shape.Cards != nil:
		var cards []legacyCard
		if err := json.Unmarshal(shape.Cards, &cards); err != nil {
			return Data{}, fmt.Errorf("cards: %w", err)
		}
		data.Tasks = fromLegacy(cards)
	}
	return data, nil
}

// decodeBuckets accepts either bucket objects or plain bucket names.
func decodeBuckets(raw json.RawMessage) ([]model.Bucket, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var buckets []model.Bucket
	if err := json.Unmarshal(raw, &buckets); err == nil {
		return buckets, nil
	}
	// A failed decode can leave zero-valued elements behind.
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("buckets: %w", err)
	}
	buckets = make([]model.Bucket, 0, len(names))
	for _, n := range names {
		buckets = append(buckets, model.Bucket{Name: n})
	}
	return buckets, nil
}

func fromLegacy(cards []legacyCard) []model.Task {
	tasks := make([]model.Task, 0, len(cards))
	for _, c := range cards {
		if c.ID < 0 {
			continue
		}
		t := model.Task{
			ID:          strconv.FormatInt(c.ID, 10),
			Description: c.Description,
			Bucket:      c.Bucket,
			Tags:        c.Tags,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
			State:       model.State(c.State),
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		if c.ParentID != nil {
			p := strconv.FormatInt(*c.ParentID, 10)
			t.ParentID = &p
		}
		if model.ValidateState(t.State) != nil {
			t.State = model.StateTodo
		}
		if c.Order != nil {
			t.Order = *c.Order
		} else {
			t.Order = ordering.Append(ordering.BucketOrders(tasks, t.Bucket, ""))
		}
		tasks = append(tasks, t)
	}
	return tasks
}
