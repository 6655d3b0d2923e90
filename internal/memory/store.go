// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package memory persists continuity state for a generation run: section
// records with summaries, the work's settings, and consistency issues.
// Full-text search over stored sections backs continuity lookups.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

const dbFile = "memory.db"

// SectionRecord is one stored generation unit.
type SectionRecord struct {
	ID        int64
	ChapterID int
	SubTaskID int
	Title     string
	Content   string
	Summary   string
	Words     int
	CreatedAt time.Time
}

// Store manages the continuity SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the continuity database at dir/memory.db,
// creating the schema if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating memory directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sections (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chapter_id INTEGER NOT NULL,
			subtask_id INTEGER NOT NULL,
			title TEXT,
			content TEXT NOT NULL,
			summary TEXT,
			words INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_chapter ON sections(chapter_id)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS issues (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chapter_id INTEGER NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			description TEXT NOT NULL,
			location TEXT,
			suggestion TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_issues_chapter ON issues(chapter_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sections_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE sections_fts USING fts5(content, content=sections, content_rowid=rowid)`,
			`CREATE TRIGGER sections_ai AFTER INSERT ON sections BEGIN
				INSERT INTO sections_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER sections_ad AFTER DELETE ON sections BEGIN
				INSERT INTO sections_fts(sections_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER sections_au AFTER UPDATE ON sections BEGIN
				INSERT INTO sections_fts(sections_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO sections_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveSection appends a finished section record.
func (s *Store) SaveSection(ctx context.Context, rec SectionRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sections (chapter_id, subtask_id, title, content, summary, words, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ChapterID, rec.SubTaskID, rec.Title, rec.Content, rec.Summary, rec.Words,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting section: %w", err)
	}
	return res.LastInsertId()
}

// RecentSummaries returns the summaries of the last n stored sections,
// oldest first. Empty summaries are skipped.
func (s *Store) RecentSummaries(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT summary FROM (
			SELECT rowid, summary FROM sections
			WHERE summary != '' ORDER BY rowid DESC LIMIT ?
		 ) ORDER BY rowid ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var summaries []string
	for rows.Next() {
		var summary string
		if err := rows.Scan(&summary); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// LastSection returns the most recently stored section, or nil when the
// store is empty.
func (s *Store) LastSection(ctx context.Context) (*SectionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT rowid, chapter_id, subtask_id, title, content, summary, words, created_at
		 FROM sections ORDER BY rowid DESC LIMIT 1`)
	rec, err := scanSection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ChapterSections returns all sections of a chapter in insertion order.
func (s *Store) ChapterSections(ctx context.Context, chapterID int) ([]SectionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rowid, chapter_id, subtask_id, title, content, summary, words, created_at
		 FROM sections WHERE chapter_id = ? ORDER BY rowid ASC`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("querying chapter sections: %w", err)
	}
	defer rows.Close()
	return collectSections(rows)
}

// Search runs a full-text query over stored section content.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SectionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.rowid, s.chapter_id, s.subtask_id, s.title, s.content, s.summary, s.words, s.created_at
		 FROM sections_fts f JOIN sections s ON s.rowid = f.rowid
		 WHERE sections_fts MATCH ? ORDER BY rank LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching sections: %w", err)
	}
	defer rows.Close()
	return collectSections(rows)
}

// SaveSettings stores the work's settings map; values persist as JSON.
func (s *Store) SaveSettings(ctx context.Context, settings map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range settings {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding setting %s: %w", key, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
			key, string(data))
		if err != nil {
			return fmt.Errorf("upserting setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Settings loads the stored settings map.
func (s *Store) Settings(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]any)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("decoding setting %s: %w", key, err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// SaveIssues records a consistency check's findings for a chapter,
// replacing any earlier findings for that chapter.
func (s *Store) SaveIssues(ctx context.Context, result types.CheckResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM issues WHERE chapter_id = ?`, result.ChapterID); err != nil {
		return fmt.Errorf("clearing old issues: %w", err)
	}

	for _, issue := range result.Issues {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO issues (chapter_id, type, severity, description, location, suggestion)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			result.ChapterID, string(issue.Type), string(issue.Severity),
			issue.Description, issue.Location, issue.Suggestion)
		if err != nil {
			return fmt.Errorf("inserting issue: %w", err)
		}
	}
	return tx.Commit()
}

// Issues returns the stored findings for a chapter.
func (s *Store) Issues(ctx context.Context, chapterID int) ([]types.ConsistencyIssue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, severity, description, location, suggestion
		 FROM issues WHERE chapter_id = ? ORDER BY rowid ASC`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("querying issues: %w", err)
	}
	defer rows.Close()

	var issues []types.ConsistencyIssue
	for rows.Next() {
		var issue types.ConsistencyIssue
		var issueType, severity string
		if err := rows.Scan(&issueType, &severity, &issue.Description, &issue.Location, &issue.Suggestion); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		issue.Type = types.IssueType(issueType)
		issue.Severity = types.IssueSeverity(severity)
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSection(row rowScanner) (*SectionRecord, error) {
	var rec SectionRecord
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.ChapterID, &rec.SubTaskID, &rec.Title,
		&rec.Content, &rec.Summary, &rec.Words, &createdAt); err != nil {
		return nil, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &rec, nil
}

func collectSections(rows *sql.Rows) ([]SectionRecord, error) {
	var records []SectionRecord
	for rows.Next() {
		rec, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
