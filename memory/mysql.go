package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB-backed Store, grounded on
// graph/store/mysql.go's pooled-connection setup, repurposed from
// workflow-step persistence to the same documents table SQLiteStore uses.
type MySQLStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewMySQLStore opens a MySQL-backed store using dsn (the
// github.com/go-sql-driver/mysql DSN format, e.g.
// "user:pass@tcp(localhost:3306)/tripchat?parseTime=true").
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("memory: open mysql: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("memory: ping mysql: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore) createTables(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS documents (
			id VARCHAR(36) PRIMARY KEY,
			text TEXT NOT NULL,
			doc_type VARCHAR(32) NOT NULL,
			run_id VARCHAR(64) NOT NULL DEFAULT '',
			user_id VARCHAR(64) NOT NULL DEFAULT '',
			metadata JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_documents_run_id (run_id),
			INDEX idx_documents_user_id (user_id)
		) ENGINE=InnoDB
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("memory: create documents table: %w", err)
	}
	return nil
}

func (s *MySQLStore) insert(ctx context.Context, text, runID, userID, docType string, metadata map[string]interface{}) (string, error) {
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
func (s *MySQLStore) AddSession(ctx context.Context, text, runID, docType string, metadata map[string]interface{}) (string, error) {
	return s.insert(ctx, text, runID, "", docType, metadata)
}

// AddUser implements Store.
func (s *MySQLStore) AddUser(ctx context.Context, text, userID, docType string, metadata map[string]interface{}) (string, error) {
	return s.insert(ctx, text, "", userID, docType, metadata)
}

// Search implements Store, identically scored to SQLiteStore.Search.
func (s *MySQLStore) Search(ctx context.Context, q SearchQuery) ([]Hit, error) {
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
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
