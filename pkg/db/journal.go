package db

import "database/sql"

// Journal records the reviews of one learn session.
type Journal struct {
	conn      *sql.DB
	sessionID int64
}

// BeginJournal starts a session for requested words.
func BeginJournal(conn *sql.DB, requested int) (*Journal, error) {
	id, err := StartSession(conn, requested)
	if err != nil {
		return nil, err
	}
	return &Journal{conn: conn, sessionID: id}, nil
}

// SessionID returns the id of the journaled session.
func (j *Journal) SessionID() int64 { return j.sessionID }

// Record stores one review.
func (j *Journal) Record(word string, acknowledged bool, timesShown int) error {
	return RecordReview(j.conn, j.sessionID, word, acknowledged, timesShown)
}

// Finish stores the final counters of the session.
func (j *Journal) Finish(shown, acknowledged int) error {
	return FinishSession(j.conn, j.sessionID, shown, acknowledged)
}
