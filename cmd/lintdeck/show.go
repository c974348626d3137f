package main

import (
	"golang.org/x/sync/errgroup"

	"github.com/ALT-F4-LLC/lintdeck/internal/api"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
	"github.com/ALT-F4-LLC/lintdeck/internal/render"
	"github.com/spf13/cobra"
)

// showResult is the issue with its changelog and, when requested, the
// source lines around it.
type showResult struct {
	Issue     *model.Issue           `json:"issue"`
	Changelog []model.ChangelogEntry `json:"changelog"`
	Source    []api.SourceLine       `json:"source,omitempty"`
}

var showCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show issue details with comments and changelog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		client := getClient(cmd)
		key := args[0]
		withSource, _ := cmd.Flags().GetBool("source")

		var result showResult
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			issue, err := client.GetIssue(ctx, key)
			if err != nil {
				return serverErr("fetching issue "+key, err)
			}
			result.Issue = issue
			if withSource && issue.Line > 0 {
				from, to := render.SourceWindow(issue.Line)
				lines, err := client.SourceLines(ctx, issue.Component, from, to)
				if err != nil {
					return serverErr("fetching source of "+key, err)
				}
				result.Source = lines
			}
			return nil
		})
		g.Go(func() error {
			entries, err := client.Changelog(ctx, key)
			if err != nil {
				return serverErr("fetching changelog of "+key, err)
			}
			result.Changelog = entries
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}
		if result.Changelog == nil {
			result.Changelog = []model.ChangelogEntry{}
		}

		var source string
		if result.Source != nil {
			source = render.RenderSource(render.SourceSnippet{
				Path:      result.Issue.ComponentPath,
				Lines:     result.Source,
				IssueLine: result.Issue.Line,
				Message:   result.Issue.Message,
				Severity:  string(result.Issue.Severity),
			}, 0)
		}
		w.Sections(result, render.Breadcrumbs(result.Issue), source, render.RenderDetail(result.Issue, result.Changelog))
		return nil
	},
}

var changelogCmd = &cobra.Command{
	Use:   "changelog [key]",
	Short: "Show the change history of an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		client := getClient(cmd)

		entries, err := client.Changelog(cmd.Context(), args[0])
		if err != nil {
			return serverErr("fetching changelog of "+args[0], err)
		}
		if entries == nil {
			entries = []model.ChangelogEntry{}
		}

		w.Sections(entries, render.RenderChangelog(entries))
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("source", false, "Include the source lines around the issue")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(changelogCmd)
}
