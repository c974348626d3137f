package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ALT-F4-LLC/lintdeck/internal/db"
	"github.com/ALT-F4-LLC/lintdeck/internal/output"
	"github.com/ALT-F4-LLC/lintdeck/internal/render"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List locations visited in the browser, newest first",
	Args:  cobra.NoArgs,
	Annotations: map[string]string{
		"skipClient": "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		cfg := getCfg(cmd)

		limit, _ := cmd.Flags().GetInt("limit")
		allServers, _ := cmd.Flags().GetBool("all-servers")
		server := cfg.Server
		if allServers {
			server = ""
		}

		visits, err := db.ListVisits(conn, server, limit)
		if err != nil {
			return cmdErr(fmt.Errorf("listing history: %w", err), output.ErrGeneral)
		}
		if visits == nil {
			visits = []db.Visit{}
		}

		jsonMode, _ := cmd.Flags().GetBool("json")
		if jsonMode {
			w.Success(visits, "")
			return nil
		}
		if len(visits) == 0 {
			w.Success(visits, render.EmptyState("No history.", "Run 'lintdeck browse' to start.", false))
			return nil
		}

		lines := make([]string, len(visits))
		for i, v := range visits {
			line := fmt.Sprintf("%5d  %-14s  %s", v.ID, humanize.Time(v.VisitedAt), displayQuery(v.Query))
			if allServers {
				line += "  @ " + v.Server
			}
			lines[i] = line
		}
		w.Success(visits, strings.Join(lines, "\n"))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of visits (0 for all)")
	historyCmd.Flags().Bool("all-servers", false, "Include visits to every server")
	rootCmd.AddCommand(historyCmd)
}
