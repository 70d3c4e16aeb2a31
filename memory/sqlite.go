package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a single-file SQLite-backed Store, grounded on
// graph/store/sqlite.go's connection setup (WAL mode, single writer,
// busy timeout) repurposed from workflow-step persistence to a single
// documents table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and migrates) a SQLite database at path. Use
// ":memory:" for an ephemeral, test-only store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("memory: %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			doc_type TEXT NOT NULL,
			run_id TEXT NOT NULL DEFAULT '',
			user_id TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("memory: create documents table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)"); err != nil {
		return fmt.Errorf("memory: create idx_documents_run_id: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents(user_id)"); err != nil {
		return fmt.Errorf("memory: create idx_documents_user_id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) insert(ctx context.Context, text, runID, userID, docType string, metadata map[string]interface{}) (string, error) {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("memory: marshal metadata: %w", err)
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, text, doc_type, run_id, user_id, metadata) VALUES (?, ?, ?, ?, ?, ?)`,
		id, text, docType, runID, userID, string(metaJSON),
	)
	if err != nil {
		return "", fmt.Errorf("memory: insert document: %w", err)
	}
	return id, nil
}

// AddSession implements Store.
func (s *SQLiteStore) AddSession(ctx context.Context, text, runID, docType string, metadata map[string]interface{}) (string, error) {
	return s.insert(ctx, text, runID, "", docType, metadata)
}

// AddUser implements Store.
func (s *SQLiteStore) AddUser(ctx context.Context, text, userID, docType string, metadata map[string]interface{}) (string, error) {
	return s.insert(ctx, text, "", userID, docType, metadata)
}

// Search implements Store. It loads the candidate rows (scoped by
// IncludeSession/IncludeUser) and ranks them with the deterministic
// token-overlap scorer in score.go.
func (s *SQLiteStore) Search(ctx context.Context, q SearchQuery) ([]Hit, error) {
	var clauses []string
	var args []interface{}

	if q.IncludeSession && q.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, q.RunID)
	}
	if q.IncludeUser && q.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, q.UserID)
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	where := clauses[0]
	for _, c := range clauses[1:] {
		where += " OR " + c
	}

	s.mu.RLock()
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT id, text, metadata FROM documents WHERE %s", where), args...)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("memory: search query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hits []Hit
	for rows.Next() {
		var id, text, metaJSON string
		if err := rows.Scan(&id, &text, &metaJSON); err != nil {
			return nil, fmt.Errorf("memory: scan row: %w", err)
		}
		var meta map[string]interface{}
		_ = json.Unmarshal([]byte(metaJSON), &meta)
		hits = append(hits, Hit{ID: id, Text: text, Metadata: meta, Distance: distance(q.Query, text)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory: iterate rows: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if q.K > 0 && len(hits) > q.K {
		hits = hits[:q.K]
	}
	return hits, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
