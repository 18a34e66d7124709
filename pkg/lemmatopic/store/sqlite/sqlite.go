package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/corpus"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	input_dir TEXT,
	language TEXT,
	chunk_size INTEGER,
	params TEXT
);

CREATE TABLE IF NOT EXISTS chunks (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	chunk_id TEXT NOT NULL,
	text TEXT NOT NULL,
	PRIMARY KEY(run_id, seq),
	UNIQUE(run_id, chunk_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS stoplist (
	run_id TEXT NOT NULL,
	token TEXT NOT NULL,
	PRIMARY KEY(run_id, token),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS models (
	run_id TEXT PRIMARY KEY,
	model TEXT NOT NULL,
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// CreateRun inserts a run under a new ULID.
func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ID = store.NewRunID(r.CreatedAt)
	r.Chunks = 0
	r.Fitted = false

	params, err := json.Marshal(r.Params)
	if err != nil {
		return store.Run{}, err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, created_at, input_dir, language, chunk_size, params)
VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.InputDir,
		r.Language,
		r.ChunkSize,
		string(params),
	)
	if err != nil {
		return store.Run{}, fmt.Errorf("create run: %w", err)
	}
	return r, nil
}

const runColumns = `
SELECT r.id, r.created_at, r.input_dir, r.language, r.chunk_size, r.params,
	(SELECT COUNT(*) FROM chunks c WHERE c.run_id = r.id),
	EXISTS(SELECT 1 FROM models m WHERE m.run_id = r.id)
FROM runs r`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (store.Run, error) {
	var (
		r         store.Run
		createdAt string
		params    sql.NullString
		fitted    int
	)
	if err := row.Scan(&r.ID, &createdAt, &r.InputDir, &r.Language, &r.ChunkSize, &params, &r.Chunks, &fitted); err != nil {
		return store.Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.Run{}, fmt.Errorf("run %s: created_at: %w", r.ID, err)
	}
	r.CreatedAt = t
	r.Fitted = fitted != 0
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &r.Params); err != nil {
			return store.Run{}, fmt.Errorf("run %s: params: %w", r.ID, err)
		}
	}
	return r, nil
}

// GetRun returns a run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, runColumns+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, notFound(id)
	}
	return r, err
}

// Runs lists runs newest first. ULIDs sort by creation time.
func (s *sqliteStore) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	query := runColumns + ` ORDER BY r.id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func requireRun(ctx context.Context, q rowQuerier, runID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(runID)
	}
	return err
}

// SaveChunks replaces the run's corpus in a single transaction.
func (s *sqliteStore) SaveChunks(ctx context.Context, runID string, c *corpus.Corpus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireRun(ctx, tx, runID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE run_id = ?`, runID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (run_id, seq, chunk_id, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, p := range c.Pairs() {
		if _, err := stmt.ExecContext(ctx, runID, i, p.ID, p.Text); err != nil {
			return fmt.Errorf("save chunk %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Chunks returns the run's corpus in the order it was saved.
func (s *sqliteStore) Chunks(ctx context.Context, runID string) (*corpus.Corpus, error) {
	if err := requireRun(ctx, s.db, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT chunk_id, text FROM chunks WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []corpus.Pair
	for rows.Next() {
		var p corpus.Pair
		if err := rows.Scan(&p.ID, &p.Text); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return corpus.FromPairs(pairs)
}

// SaveStoplist replaces the run's stopword set in a single transaction.
func (s *sqliteStore) SaveStoplist(ctx context.Context, runID string, terms []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireRun(ctx, tx, runID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stoplist WHERE run_id = ?`, runID); err != nil {
		return err
	}

	if len(terms) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO stoplist (run_id, token) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, tok := range terms {
			if _, err := stmt.ExecContext(ctx, runID, tok); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Stoplist returns the run's stopwords, sorted.
func (s *sqliteStore) Stoplist(ctx context.Context, runID string) ([]string, error) {
	if err := requireRun(ctx, s.db, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM stoplist WHERE run_id = ? ORDER BY token`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var tok string
		if err := rows.Scan(&tok); err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, rows.Err()
}

// SaveModel stores the model as JSON and records its params on the run.
func (s *sqliteStore) SaveModel(ctx context.Context, runID string, m *topic.Model) error {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return err
	}
	params, err := json.Marshal(m.Params)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireRun(ctx, tx, runID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO models (run_id, model) VALUES (?, ?)
ON CONFLICT(run_id) DO UPDATE SET model=excluded.model`, runID, buf.String())
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE runs SET params = ? WHERE id = ?`, string(params), runID); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadModel decodes the run's model.
func (s *sqliteStore) LoadModel(ctx context.Context, runID string) (*topic.Model, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT model FROM models WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: model for run %s", internalerr.ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return topic.Decode(bytes.NewBufferString(data))
}

func notFound(runID string) error {
	return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, runID)
}
