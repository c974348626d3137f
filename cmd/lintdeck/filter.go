package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ALT-F4-LLC/lintdeck/internal/db"
	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
	"github.com/ALT-F4-LLC/lintdeck/internal/nav"
	"github.com/ALT-F4-LLC/lintdeck/internal/output"
	"github.com/ALT-F4-LLC/lintdeck/internal/render"
	"github.com/spf13/cobra"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Manage saved filters",
}

var filterSaveCmd = &cobra.Command{
	Use:   "save [name] [query]",
	Short: "Save a filter; without a query the last visited location is saved",
	Args:  cobra.RangeArgs(1, 2),
	Annotations: map[string]string{
		"skipClient": "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		cfg := getCfg(cmd)
		name := args[0]

		if err := db.ValidateFilterName(name); err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		var source string
		if len(args) == 2 {
			source = args[1]
		} else {
			visit, err := db.LastVisit(conn, cfg.Server)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return cmdErr(fmt.Errorf("no visited location to save; pass a query"), output.ErrValidation)
				}
				return cmdErr(fmt.Errorf("reading history: %w", err), output.ErrGeneral)
			}
			source = visit.Query
		}
		loc, err := parseQuery(source)
		if err != nil {
			return err
		}
		// The open issue is not part of a filter.
		query := nav.Encode(filter.WithOpen(loc, ""))

		created, err := db.SaveFilter(conn, name, query)
		if err != nil {
			return cmdErr(fmt.Errorf("saving filter: %w", err), output.ErrGeneral)
		}
		verb := "Updated"
		if created {
			verb = "Saved"
		}
		saved := db.SavedFilter{Name: name, Query: query}
		w.Success(saved, fmt.Sprintf("%s filter %s: %s", verb, name, displayQuery(query)))
		return nil
	},
}

var filterListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved filters",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	Annotations: map[string]string{
		"skipClient": "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		filters, err := db.ListFilters(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("listing filters: %w", err), output.ErrGeneral)
		}
		if filters == nil {
			filters = []db.SavedFilter{}
		}

		jsonMode, _ := cmd.Flags().GetBool("json")
		if jsonMode {
			w.Success(filters, "")
			return nil
		}
		if len(filters) == 0 {
			w.Success(filters, render.EmptyState("No saved filters.", "Save one with 'lintdeck filter save NAME QUERY'.", false))
			return nil
		}

		width := 0
		for _, f := range filters {
			width = max(width, len(f.Name))
		}
		lines := make([]string, len(filters))
		for i, f := range filters {
			lines[i] = fmt.Sprintf("%-*s  %-14s  %s", width, f.Name, humanize.Time(f.UpdatedAt), displayQuery(f.Query))
		}
		w.Success(filters, strings.Join(lines, "\n"))
		return nil
	},
}

var filterDeleteCmd = &cobra.Command{
	Use:     "delete [name]",
	Short:   "Delete a saved filter",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	Annotations: map[string]string{
		"skipClient": "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		if err := db.DeleteFilter(conn, args[0]); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return cmdErr(fmt.Errorf("filter %q not found", args[0]), output.ErrNotFound)
			}
			return cmdErr(fmt.Errorf("deleting filter: %w", err), output.ErrGeneral)
		}
		w.Success(map[string]string{"deleted": args[0]}, fmt.Sprintf("Deleted filter %s", args[0]))
		return nil
	},
}

// displayQuery shows an encoded location readably; the empty location
// matches every unresolved issue.
func displayQuery(query string) string {
	if query == "" {
		return "(all unresolved issues)"
	}
	return query
}

func init() {
	filterCmd.AddCommand(filterSaveCmd, filterListCmd, filterDeleteCmd)
	rootCmd.AddCommand(filterCmd)
}
