package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rogersnm/kanban/internal/markdown"
	"github.com/rogersnm/kanban/internal/model"
)

// MarkdownStore keeps the board as a directory of markdown files:
//
//	<dir>/buckets.md                   frontmatter list of buckets
//	<dir>/tasks/<bucket>/<task-id>.md  task frontmatter, description as body
//
// Bucket directory names are path-escaped.
type MarkdownStore struct {
	BaseDir string
}

type bucketsMeta struct {
	Buckets []model.Bucket `yaml:"buckets"`
}

func NewMarkdown(baseDir string) *MarkdownStore {
	return &MarkdownStore{BaseDir: baseDir}
}

func (s *MarkdownStore) BucketsFile() string {
	return filepath.Join(s.BaseDir, "buckets.md")
}

func (s *MarkdownStore) TasksDir() string {
	return filepath.Join(s.BaseDir, "tasks")
}

func (s *MarkdownStore) TaskPath(t model.Task) string {
	return filepath.Join(s.TasksDir(), escapeName(t.Bucket), t.ID+".md")
}

func (s *MarkdownStore) Load(ctx context.Context) (Data, error) {
	var data Data

	meta, _, err := ReadEntity[bucketsMeta](s.BucketsFile())
	switch {
	case err == nil:
		data.Buckets = meta.Buckets
	case !os.IsNotExist(err):
		return Data{}, err
	}

	files, err := s.ListFiles(filepath.Join(s.TasksDir(), "*"), "*.md")
	if err != nil {
		return Data{}, err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return Data{}, err
		}
		t, body, err := ReadEntity[model.Task](f)
		if err != nil {
			return Data{}, err
		}
		t.Description = body
		if t.Tags == nil {
			t.Tags = []string{}
		}
		data.Tasks = append(data.Tasks, t)
	}
	return data, nil
}

// Save writes every bucket and task, then prunes task files that are no
// longer part of the board.
func (s *MarkdownStore) Save(ctx context.Context, data Data) error {
	if err := s.WriteEntity(s.BucketsFile(), bucketsMeta{Buckets: data.Buckets}, ""); err != nil {
		return err
	}

	keep := make(map[string]bool, len(data.Tasks))
	for _, t := range data.Tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
		path := s.TaskPath(t)
		if err := s.WriteEntity(path, &t, t.Description); err != nil {
			return err
		}
		keep[path] = true
	}

	files, err := s.ListFiles(filepath.Join(s.TasksDir(), "*"), "*.md")
	if err != nil {
		return err
	}
	for _, f := range files {
		if keep[f] {
			continue
		}
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("removing %s: %w", f, err)
		}
		// Drops the bucket dir once its last task is gone.
		_ = os.Remove(filepath.Dir(f))
	}
	return nil
}

func (s *MarkdownStore) Close() error { return nil }

func (s *MarkdownStore) WriteEntity(path string, meta any, body string) error {
	data, err := markdown.Marshal(meta, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating parent dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

func (s *MarkdownStore) ListFiles(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("globbing %s/%s: %w", dir, pattern, err)
	}
	return matches, nil
}

func ReadEntity[T any](path string) (T, string, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		if os.IsNotExist(err) {
			return zero, "", err
		}
		return zero, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return markdown.Parse[T](f)
}

// escapeName turns a bucket name into a single safe path element.
func escapeName(name string) string {
	esc := url.PathEscape(name)
	if strings.HasPrefix(esc, ".") {
		esc = "%2E" + esc[1:]
	}
	return esc
}
