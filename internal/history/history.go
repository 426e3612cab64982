// Package history provides SQLite-backed persistence for chat turns and
// the uploaded-document registry.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrDocumentNotFound is returned when a requested document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// Store wraps the chat-history database.
type Store struct {
	db *sql.DB
}

// DocumentInfo describes one uploaded document.
type DocumentInfo struct {
	ID       int64     `json:"id"`
	Filename string    `json:"filename"`
	Uploaded time.Time `json:"upload_timestamp"`
}

const schema = `
CREATE TABLE IF NOT EXISTS chat_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	user_message TEXT NOT NULL,
	ai_response TEXT NOT NULL,
	model TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_chat_history_session ON chat_history(session_id);

CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT NOT NULL,
	upload_timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Open opens (creating if needed) the history database at path. Use
// ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		// WAL mode and a busy timeout keep the single-writer discipline
		// painless under concurrent turns.
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// AppendTurn records one user/assistant exchange for a session.
func (s *Store) AppendTurn(sessionID, userMessage, aiResponse, model string) error {
	_, err := s.db.Exec(
		`INSERT INTO chat_history (session_id, user_message, ai_response, model) VALUES (?, ?, ?, ?)`,
		sessionID, userMessage, aiResponse, model,
	)
	if err != nil {
		return fmt.Errorf("inserting chat turn: %w", err)
	}
	return nil
}

// ListSessions returns distinct session ids, most recent first.
func (s *Store) ListSessions() ([]string, error) {
	rows, err := s.db.Query(`SELECT session_id FROM chat_history GROUP BY session_id ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()
	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// InsertDocument registers an uploaded document and returns its id.
func (s *Store) InsertDocument(filename string) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO documents (filename) VALUES (?)`, filename)
	if err != nil {
		return 0, fmt.Errorf("inserting document record: %w", err)
	}
	return res.LastInsertId()
}

// ListDocuments returns all registered documents, newest first.
func (s *Store) ListDocuments() ([]DocumentInfo, error) {
	rows, err := s.db.Query(`SELECT id, filename, upload_timestamp FROM documents ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()
	var docs []DocumentInfo
	for rows.Next() {
		var d DocumentInfo
		if err := rows.Scan(&d.ID, &d.Filename, &d.Uploaded); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document record.
func (s *Store) DeleteDocument(id int64) error {
	res, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
