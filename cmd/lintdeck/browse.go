package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/ALT-F4-LLC/lintdeck/internal/db"
	"github.com/ALT-F4-LLC/lintdeck/internal/nav"
	"github.com/ALT-F4-LLC/lintdeck/internal/output"
	"github.com/ALT-F4-LLC/lintdeck/internal/store"
	"github.com/ALT-F4-LLC/lintdeck/internal/tui"
	"github.com/spf13/cobra"
)

// keepVisits bounds the stored history per server.
const keepVisits = 1000

var browseCmd = &cobra.Command{
	Use:   "browse [query]",
	Short: "Browse issues interactively",
	Long: `Browse issues in a full-screen terminal UI.

The starting location is the query argument (a query string or an issues
page URL), the saved filter named by --filter, or with --resume the last
location visited on this server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn := getDB(cmd)
		cfg := getCfg(cmd)
		logger := getLogger(cmd)

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return cmdErr(errors.New("browse needs an interactive terminal; use 'lintdeck search' instead"), output.ErrValidation)
		}

		filterName, _ := cmd.Flags().GetString("filter")
		resume, _ := cmd.Flags().GetBool("resume")

		var (
			location url.Values
			err      error
		)
		switch {
		case len(args) == 1:
			location, err = parseQuery(args[0])
		case filterName != "":
			location, err = savedLocation(conn, filterName)
		case resume:
			location, err = lastLocation(conn, cfg.Server)
		default:
			location = url.Values{}
		}
		if err != nil {
			return err
		}

		record := func(loc url.Values) error {
			_, err := db.RecordVisit(conn, cfg.Server, nav.Encode(loc))
			return err
		}
		if err := record(location); err != nil {
			logger.Warn("recording location failed", "error", err)
		}
		history := nav.NewHistory(location, nav.WithRecorder(record))

		model := tui.NewModel(getClient(cmd), history, store.New(),
			tui.WithLogger(logger),
			tui.WithLogin(cfg.Login),
		)
		logger.Info("browse started", "server", cfg.Server, "location", nav.Encode(location))

		final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		if err != nil {
			return cmdErr(fmt.Errorf("running browser: %w", err), output.ErrGeneral)
		}

		if n, err := db.PruneVisits(conn, keepVisits); err != nil {
			logger.Warn("pruning history failed", "error", err)
		} else if n > 0 {
			logger.Debug("pruned history", "removed", n)
		}

		if m, ok := final.(tui.Model); ok {
			if query := nav.Encode(m.Location()); query != "" {
				getWriter(cmd).Info("Resume with: lintdeck browse '%s'", query)
			}
		}
		return nil
	},
}

func init() {
	browseCmd.Flags().StringP("filter", "f", "", "Start from a saved filter")
	browseCmd.Flags().BoolP("resume", "r", false, "Start from the last visited location")
	rootCmd.AddCommand(browseCmd)
}
