package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Visit is one location the browser navigated to.
type Visit struct {
	ID        int64     `json:"id"`
	Server    string    `json:"server"`
	Query     string    `json:"query"`
	VisitedAt time.Time `json:"visited_at"`
}

// RecordVisit appends a location to the history of server. A visit equal to
// the latest one for the same server is not recorded again; the existing
// visit's ID is returned instead.
func RecordVisit(db *sql.DB, server, query string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		lastID    int64
		lastQuery string
	)
	err = tx.QueryRow(
		`SELECT id, query FROM visits WHERE server = ? ORDER BY id DESC LIMIT 1`, server,
	).Scan(&lastID, &lastQuery)
	switch {
	case err == nil && lastQuery == query:
		return lastID, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("querying last visit: %w", err)
	}

	res, err := tx.Exec(
		`INSERT INTO visits (server, query, visited_at) VALUES (?, ?, ?)`,
		server, query, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting visit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading visit id: %w", err)
	}

	return id, tx.Commit()
}

// ListVisits returns visits newest first. An empty server lists every
// server; a limit of zero or less returns all of them.
func ListVisits(db *sql.DB, server string, limit int) ([]Visit, error) {
	query := `SELECT id, server, query, visited_at FROM visits`
	var args []any
	if server != "" {
		query += ` WHERE server = ?`
		args = append(args, server)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var (
			v         Visit
			visitedAt string
		)
		if err := rows.Scan(&v.ID, &v.Server, &v.Query, &visitedAt); err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		v.VisitedAt = parseTime(visitedAt)
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visit rows: %w", err)
	}

	return visits, nil
}

// LastVisit returns the most recent visit for server, or ErrNotFound.
func LastVisit(db *sql.DB, server string) (*Visit, error) {
	visits, err := ListVisits(db, server, 1)
	if err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return nil, ErrNotFound
	}
	return &visits[0], nil
}

// PruneVisits keeps the newest keep visits of every server and deletes the
// rest, returning how many were removed.
func PruneVisits(db *sql.DB, keep int) (int64, error) {
	res, err := db.Exec(
		`DELETE FROM visits WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY server ORDER BY id DESC) AS n
				FROM visits
			) WHERE n > ?
		)`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning visits: %w", err)
	}
	return res.RowsAffected()
}
