// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot saves kinship results in SQLite so they can be shared by
// slug and shown again without re-running the search.
package snapshot

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/kinpath/internal/kinship"
	"github.com/pdiddy/kinpath/pkg/types"
)

const (
	dbFile = "kinpath.db"

	// slugBytes random bytes encode to an 8-character URL-safe slug.
	slugBytes = 6
)

// ErrNotFound is returned when no snapshot has the requested slug.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one saved result.
type Snapshot struct {
	ID        string       `json:"id" yaml:"id"`
	Slug      string       `json:"slug" yaml:"slug"`
	StartID   string       `json:"start_id" yaml:"start_id"`
	EndID     string       `json:"end_id" yaml:"end_id"`
	MaxDepth  int          `json:"max_depth" yaml:"max_depth"`
	Provider  string       `json:"provider" yaml:"provider"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Result    types.Result `json:"result" yaml:"result"`
}

// Summary is the list form of a Snapshot.
type Summary struct {
	Slug      string
	StartID   string
	EndID     string
	Paths     int
	CreatedAt time.Time
}

// Store manages the snapshot database.
type Store struct {
	db     *sql.DB
	dir    string
	locale string
	now    func() time.Time
}

// NewStore opens or creates dir/kinpath.db and its schema. Labels missing
// from stored results are filled in using locale when they are read.
func NewStore(cfg types.StoreConfig, locale string) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = ".kinpath"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir, locale: locale, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			start_id TEXT NOT NULL,
			end_id TEXT NOT NULL,
			max_depth INTEGER NOT NULL,
			provider TEXT,
			path_count INTEGER NOT NULL,
			result TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores res under a new random slug and returns the snapshot.
func (s *Store) Save(ctx context.Context, res types.Result, provider types.ProviderKind) (Snapshot, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshaling result: %w", err)
	}
	slug, err := newSlug()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		ID:        uuid.NewString(),
		Slug:      slug,
		StartID:   string(res.StartID),
		EndID:     string(res.EndID),
		MaxDepth:  res.MaxDepth,
		Provider:  string(provider),
		CreatedAt: s.now().UTC(),
		Result:    res,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, slug, start_id, end_id, max_depth, provider, path_count, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Slug, snap.StartID, snap.EndID, snap.MaxDepth, snap.Provider,
		len(res.Paths), string(data), snap.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("inserting snapshot: %w", err)
	}
	return snap, nil
}

// Get loads the snapshot with the given slug.
func (s *Store) Get(ctx context.Context, slug string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, slug, start_id, end_id, max_depth, provider, result, created_at
		 FROM snapshots WHERE slug = ?`, slug)
	snap, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return snap, err
}

// List returns summaries of all snapshots, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, start_id, end_id, path_count, created_at
		 FROM snapshots ORDER BY created_at DESC, slug`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var created string
		if err := rows.Scan(&sum.Slug, &sum.StartID, &sum.EndID, &sum.Paths, &created); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the snapshot with the given slug.
func (s *Store) Delete(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return nil
}

func (s *Store) all(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, start_id, end_id, max_depth, provider, result, created_at
		 FROM snapshots ORDER BY created_at, slug`)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(row scanner) (Snapshot, error) {
	var snap Snapshot
	var provider sql.NullString
	var result, created string
	err := row.Scan(&snap.ID, &snap.Slug, &snap.StartID, &snap.EndID, &snap.MaxDepth, &provider, &result, &created)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Provider = provider.String
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if err := json.Unmarshal([]byte(result), &snap.Result); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot %s: %w", snap.Slug, err)
	}
	kinship.FillDegreeLabels(snap.Result.Paths, s.locale)
	return snap, nil
}

func newSlug() (string, error) {
	b := make([]byte, slugBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating slug: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
