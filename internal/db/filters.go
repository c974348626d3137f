package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SavedFilter is a named search location.
type SavedFilter struct {
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateFilterName returns an error for names that cannot be used on the
// command line.
func ValidateFilterName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("filter name must not be empty")
	}
	if strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("invalid filter name %q: must not contain whitespace", name)
	}
	return nil
}

// SaveFilter stores query under name, replacing an existing filter of that
// name. It reports whether the filter was newly created.
func SaveFilter(db *sql.DB, name, query string) (bool, error) {
	if err := ValidateFilterName(name); err != nil {
		return false, err
	}

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)
	res, err := tx.Exec(`UPDATE saved_filters SET query = ?, updated_at = ? WHERE name = ?`, query, now, name)
	if err != nil {
		return false, fmt.Errorf("updating filter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated rows: %w", err)
	}

	created := n == 0
	if created {
		if _, err := tx.Exec(
			`INSERT INTO saved_filters (name, query, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			name, query, now, now,
		); err != nil {
			return false, fmt.Errorf("inserting filter: %w", err)
		}
	}

	return created, tx.Commit()
}

// GetFilter returns the filter called name, or ErrNotFound.
func GetFilter(db *sql.DB, name string) (*SavedFilter, error) {
	var (
		f                    SavedFilter
		createdAt, updatedAt string
	)
	err := db.QueryRow(
		`SELECT name, query, created_at, updated_at FROM saved_filters WHERE name = ?`, name,
	).Scan(&f.Name, &f.Query, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying filter: %w", err)
	}
	f.CreatedAt = parseTime(createdAt)
	f.UpdatedAt = parseTime(updatedAt)
	return &f, nil
}

// ListFilters returns every saved filter sorted by name.
func ListFilters(db *sql.DB) ([]SavedFilter, error) {
	rows, err := db.Query(`SELECT name, query, created_at, updated_at FROM saved_filters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying filters: %w", err)
	}
	defer rows.Close()

	var filters []SavedFilter
	for rows.Next() {
		var (
			f                    SavedFilter
			createdAt, updatedAt string
		)
		if err := rows.Scan(&f.Name, &f.Query, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning filter: %w", err)
		}
		f.CreatedAt = parseTime(createdAt)
		f.UpdatedAt = parseTime(updatedAt)
		filters = append(filters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating filter rows: %w", err)
	}

	return filters, nil
}

// DeleteFilter removes the filter called name, or returns ErrNotFound.
func DeleteFilter(db *sql.DB, name string) error {
	res, err := db.Exec(`DELETE FROM saved_filters WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting filter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
