package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jdelaire/notebot/core/note"
)

// ErrNotFound is returned by At when no note exists at the requested offset.
var ErrNotFound = errors.New("note not found")

var schema = []string{`
CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	chat_id    INTEGER NOT NULL,
	message_id INTEGER NOT NULL DEFAULT 0,
	text       TEXT    NOT NULL,
	written_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS notes_owner_written ON notes (user_id, chat_id, written_at)`,
}

// Store persists notes in SQLite. Times are stored as UTC unix seconds.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to :memory: is a separate database, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts n and returns its id.
func (s *Store) Add(ctx context.Context, n note.Note) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (user_id, chat_id, message_id, text, written_at) VALUES (?, ?, ?, ?, ?)`,
		n.UserID, n.ChatID, n.MessageID, n.Text, n.WrittenAt.UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	return id, nil
}

// Count returns how many notes the user wrote in the chat, on day if it is
// non-nil and in total otherwise.
func (s *Store) Count(ctx context.Context, userID, chatID int64, day *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM notes WHERE user_id = ? AND chat_id = ?`
	args := []any{userID, chatID}
	if day != nil {
		from, to := dayRange(*day)
		query += ` AND written_at >= ? AND written_at < ?`
		args = append(args, from, to)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return n, nil
}

// MostRecent returns the write time of the user's latest note in the chat.
func (s *Store) MostRecent(ctx context.Context, userID, chatID int64) (time.Time, bool, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(written_at) FROM notes WHERE user_id = ? AND chat_id = ?`,
		userID, chatID).Scan(&last)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest note: %w", err)
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(last.Int64, 0).UTC(), true, nil
}

// At returns the note at offset (0-based) among the user's notes on day,
// ordered by write time.
func (s *Store) At(ctx context.Context, userID, chatID int64, day time.Time, offset int) (note.Note, error) {
	from, to := dayRange(day)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, chat_id, message_id, text, written_at
		FROM notes
		WHERE user_id = ? AND chat_id = ? AND written_at >= ? AND written_at < ?
		ORDER BY written_at, id
		LIMIT 1 OFFSET ?`,
		userID, chatID, from, to, offset)

	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return note.Note{}, fmt.Errorf("%w: %s offset %d", ErrNotFound, day.Format("2006-01-02"), offset)
	}
	if err != nil {
		return note.Note{}, fmt.Errorf("read note: %w", err)
	}
	return n, nil
}

// GroupByMonth counts the user's notes per calendar month (UTC).
func (s *Store) GroupByMonth(ctx context.Context, userID, chatID int64) ([]note.MonthCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(strftime('%Y', written_at, 'unixepoch') AS INTEGER) AS y,
		       CAST(strftime('%m', written_at, 'unixepoch') AS INTEGER) AS m,
		       COUNT(*)
		FROM notes
		WHERE user_id = ? AND chat_id = ?
		GROUP BY y, m`,
		userID, chatID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []note.MonthCount
	for rows.Next() {
		var mc note.MonthCount
		var month int
		if err := rows.Scan(&mc.Year, &month, &mc.Count); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		mc.Month = time.Month(month)
		out = append(out, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

// List returns all of the user's notes in the chat, oldest first.
func (s *Store) List(ctx context.Context, userID, chatID int64) ([]note.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, chat_id, message_id, text, written_at
		FROM notes
		WHERE user_id = ? AND chat_id = ?
		ORDER BY written_at, id`,
		userID, chatID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []note.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(sc scanner) (note.Note, error) {
	var n note.Note
	var written int64
	if err := sc.Scan(&n.ID, &n.UserID, &n.ChatID, &n.MessageID, &n.Text, &written); err != nil {
		return note.Note{}, err
	}
	n.WrittenAt = time.Unix(written, 0).UTC()
	return n, nil
}

func dayRange(day time.Time) (from, to int64) {
	start := note.Day(day)
	return start.Unix(), start.AddDate(0, 0, 1).Unix()
}
