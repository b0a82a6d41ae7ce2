package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rogersnm/kanban/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS buckets (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL,
	token    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	bucket      TEXT NOT NULL,
	parent_id   TEXT,
	tags        TEXT NOT NULL DEFAULT '[]',
	sort_order  REAL NOT NULL,
	state       TEXT NOT NULL DEFAULT 'todo',
	editing     INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_bucket ON tasks(bucket, sort_order);
`

var taskColumns = []string{
	"id", "description", "bucket", "parent_id", "tags",
	"sort_order", "state", "editing", "created_at", "updated_at",
}

// SQLStore keeps the board in SQLite. Save replaces the stored board in a
// single transaction.
type SQLStore struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	log *slog.Logger
}

func NewSQL(dbPath string, log *slog.Logger) (*SQLStore, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// One connection keeps writers serialized within the process.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLStore{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log,
	}, nil
}

func (s *SQLStore) Load(ctx context.Context) (Data, error) {
	var data Data

	q, args, err := s.sq.Select("name", "token").From("buckets").OrderBy("position").ToSql()
	if err != nil {
		return Data{}, err
	}
	s.logQuery("load buckets", q, args)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return Data{}, fmt.Errorf("querying buckets: %w", err)
	}
	for rows.Next() {
		var b model.Bucket
		if err := rows.Scan(&b.Name, &b.Token); err != nil {
			rows.Close()
			return Data{}, fmt.Errorf("scanning bucket: %w", err)
		}
		data.Buckets = append(data.Buckets, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Data{}, err
	}

	q, args, err = s.sq.Select(taskColumns...).From("tasks").OrderBy("bucket", "sort_order").ToSql()
	if err != nil {
		return Data{}, err
	}
	s.logQuery("load tasks", q, args)
	rows, err = s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return Data{}, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return Data{}, err
		}
		data.Tasks = append(data.Tasks, t)
	}
	return data, rows.Err()
}

func scanTask(rows *sql.Rows) (model.Task, error) {
	var (
		t         model.Task
		parent    sql.NullString
		tags      string
		state     string
		createdAt time.Time
		updatedAt time.Time
	)
	err := rows.Scan(&t.ID, &t.Description, &t.Bucket, &parent, &tags,
		&t.Order, &state, &t.Editing, &createdAt, &updatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("scanning task: %w", err)
	}
	if parent.Valid {
		p := parent.String
		t.ParentID = &p
	}
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return model.Task{}, fmt.Errorf("task %s tags: %w", t.ID, err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.State = model.State(state)
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updatedAt.UTC()
	return t, nil
}

func (s *SQLStore) Save(ctx context.Context, data Data) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"tasks", "buckets"} {
		q, args, err := s.sq.Delete(table).ToSql()
		if err != nil {
			return err
		}
		s.logQuery("clear "+table, q, args)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if len(data.Buckets) > 0 {
		insert := s.sq.Insert("buckets").Columns("position", "name", "token")
		for i, b := range data.Buckets {
			insert = insert.Values(i, b.Name, b.Token)
		}
		if err := s.exec(ctx, tx, "insert buckets", insert); err != nil {
			return err
		}
	}

	for _, t := range data.Tasks {
		tags, err := json.Marshal(nonNil(t.Tags))
		if err != nil {
			return fmt.Errorf("task %s tags: %w", t.ID, err)
		}
		var parent any
		if t.ParentID != nil {
			parent = *t.ParentID
		}
		insert := s.sq.Insert("tasks").Columns(taskColumns...).Values(
			t.ID, t.Description, t.Bucket, parent, string(tags),
			t.Order, string(t.State), t.Editing, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
		)
		if err := s.exec(ctx, tx, "insert task", insert); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func (s *SQLStore) exec(ctx context.Context, tx *sql.Tx, op string, b squirrel.InsertBuilder) error {
	q, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logQuery(op, q, args)
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SQLStore) logQuery(op, q string, args []any) {
	s.log.Debug("sql_query", "operation", op, "sql", q, "args", len(args))
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
