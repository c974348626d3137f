package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ALT-F4-LLC/lintdeck/internal/db"
	"github.com/ALT-F4-LLC/lintdeck/internal/nav"
	"github.com/ALT-F4-LLC/lintdeck/internal/output"
)

// parseQuery accepts a bare query string or a full issues page URL and
// returns its parameters.
func parseQuery(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	raw = strings.TrimPrefix(raw, "#")
	loc, err := nav.Decode(raw)
	if err != nil {
		return nil, cmdErr(fmt.Errorf("invalid query %q: %w", raw, err), output.ErrValidation)
	}
	return loc, nil
}

// savedLocation returns the location stored under a filter name.
func savedLocation(conn *sql.DB, name string) (url.Values, error) {
	saved, err := db.GetFilter(conn, name)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, cmdErr(fmt.Errorf("filter %q not found", name), output.ErrNotFound)
		}
		return nil, cmdErr(fmt.Errorf("fetching filter: %w", err), output.ErrGeneral)
	}
	return parseQuery(saved.Query)
}

// lastLocation returns the location last visited on server, or an empty
// location when there is none.
func lastLocation(conn *sql.DB, server string) (url.Values, error) {
	visit, err := db.LastVisit(conn, server)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return url.Values{}, nil
		}
		return nil, cmdErr(fmt.Errorf("reading history: %w", err), output.ErrGeneral)
	}
	return parseQuery(visit.Query)
}
