package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// StartSession inserts a new session and returns its id.
func StartSession(db DBExecutor, requested int) (int64, error) {
	if requested < 1 {
		return 0, fmt.Errorf("requested must be positive, got %d", requested)
	}
	res, err := db.Exec(`INSERT INTO sessions (requested, started_at) VALUES (?, ?)`, requested, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	return res.LastInsertId()
}

// FinishSession stores the final counters of a session.
func FinishSession(db DBExecutor, sessionID int64, shown, acknowledged int) error {
	if sessionID <= 0 {
		return fmt.Errorf("sessionID must be positive")
	}
	res, err := db.Exec(`UPDATE sessions SET shown = ?, acknowledged = ?, finished_at = ? WHERE id = ?`,
		shown, acknowledged, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish session: no session %d", sessionID)
	}
	return nil
}

// RecordReview stores the outcome of showing word in a session.
func RecordReview(db DBExecutor, sessionID int64, word string, acknowledged bool, timesShown int) error {
	if sessionID <= 0 {
		return fmt.Errorf("sessionID must be positive")
	}
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return fmt.Errorf("word must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO reviews (session_id, word, acknowledged, times_shown, reviewed_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, trimmed, acknowledged, timesShown, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetSessionReviews returns the reviews of a session in the order they happened.
func GetSessionReviews(db DBExecutor, sessionID int64) ([]Review, error) {
	rows, err := db.Query(`SELECT id, session_id, word, acknowledged, times_shown, reviewed_at FROM reviews WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Word, &r.Acknowledged, &r.TimesShown, &r.ReviewedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListSessions returns the most recent sessions, newest first.
func ListSessions(db DBExecutor, limit int) ([]Session, error) {
	rows, err := db.Query(`SELECT id, requested, shown, acknowledged, started_at, finished_at FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		var s Session
		var finished sql.NullTime
		if err := rows.Scan(&s.ID, &s.Requested, &s.Shown, &s.Acknowledged, &s.StartedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			s.FinishedAt = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetStats aggregates the journal. skipLimit bounds the MostSkipped list.
func GetStats(db DBExecutor, skipLimit int) (Stats, error) {
	var st Stats
	if err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&st.Sessions); err != nil {
		return st, fmt.Errorf("count sessions: %w", err)
	}
	err := db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(acknowledged), 0) FROM reviews`).Scan(&st.Reviews, &st.Acknowledged)
	if err != nil {
		return st, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := db.Query(`SELECT word, COUNT(*) AS skips FROM reviews WHERE acknowledged = 0
		GROUP BY word ORDER BY skips DESC, word ASC LIMIT ?`, skipLimit)
	if err != nil {
		return st, fmt.Errorf("most skipped: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ws WordSkips
		if err := rows.Scan(&ws.Word, &ws.Skips); err != nil {
			return st, err
		}
		st.MostSkipped = append(st.MostSkipped, ws)
	}
	return st, rows.Err()
}
