package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ALT-F4-LLC/lintdeck/internal/api"
	"github.com/ALT-F4-LLC/lintdeck/internal/facets"
	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
	"github.com/ALT-F4-LLC/lintdeck/internal/output"
	"github.com/ALT-F4-LLC/lintdeck/internal/render"
	"github.com/spf13/cobra"
)

// maxSearchResults is the deepest the server pages into a result.
const maxSearchResults = 10000

type searchResult struct {
	Query  string                  `json:"query"`
	Paging model.Paging            `json:"paging"`
	Issues []*model.Issue          `json:"issues"`
	Facets map[string]filter.Facet `json:"facets,omitempty"`
}

// filterFlags maps the multi-valued filter flags to their properties.
var filterFlags = []struct {
	flag, property, usage string
}{
	{"types", filter.PropTypes, "Issue types (BUG, VULNERABILITY, CODE_SMELL)"},
	{"severities", filter.PropSeverities, "Severities (BLOCKER, CRITICAL, MAJOR, MINOR, INFO)"},
	{"statuses", filter.PropStatuses, "Statuses"},
	{"resolutions", filter.PropResolutions, "Resolutions"},
	{"assignees", filter.PropAssignees, "Assignee logins"},
	{"authors", filter.PropAuthors, "SCM authors"},
	{"rules", filter.PropRules, "Rule keys"},
	{"tags", filter.PropTags, "Tags"},
	{"projects", filter.PropProjects, "Project keys"},
	{"modules", filter.PropModules, "Module keys"},
	{"directories", filter.PropDirectories, "Directory paths"},
	{"files", filter.PropFiles, "File component keys"},
	{"languages", filter.PropLanguages, "Language keys"},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search issues",
	Long: `Search issues and print them grouped by component.

The filter starts from --filter (a saved filter) or --query (a query string
or issues page URL), and the filter flags then replace single fields.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		client := getClient(cmd)
		cfg := getCfg(cmd)

		f, err := searchFilter(cmd)
		if err != nil {
			return err
		}

		pageIndex, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")
		withFacets, _ := cmd.Flags().GetBool("facets")
		if limit <= 0 {
			limit = cfg.PageSize
		}
		if limit > 500 {
			return cmdErr(fmt.Errorf("invalid --limit %d: must be at most 500", limit), output.ErrValidation)
		}
		if pageIndex < 1 {
			return cmdErr(fmt.Errorf("invalid --page %d: must be at least 1", pageIndex), output.ErrValidation)
		}

		result := searchResult{Query: filter.Serialize(f).Encode()}
		refs := facets.Refs{}
		for {
			resp, err := client.SearchIssues(cmd.Context(), api.SearchParams(f, pageIndex, limit, withFacets && result.Facets == nil))
			if err != nil {
				return serverErr("searching issues", err)
			}
			if result.Facets == nil && withFacets {
				result.Facets = filter.ParseFacets(resp.Facets)
			}
			result.Issues = append(result.Issues, resp.Issues...)
			result.Paging = resp.Paging
			refs = refs.Merge(facets.NewRefs(resp.Components, resp.Users, resp.Rules, resp.Languages))

			if !all || len(resp.Issues) == 0 || !resp.Paging.HasMore(pageIndex*limit) || pageIndex*limit >= maxSearchResults {
				break
			}
			pageIndex++
		}

		jsonMode, _ := cmd.Flags().GetBool("json")
		if jsonMode {
			w.Success(result, "")
			return nil
		}

		var board, listing string
		if withFacets {
			board = render.RenderFacetBoard(f, result.Facets, render.BoardOptions{Refs: refs})
		}
		if len(result.Issues) == 0 {
			listing = render.EmptyState("No issues match.", "Widen the filter or run 'lintdeck search --facets'.", false)
		} else {
			listing = render.RenderTable(result.Issues)
			if result.Paging.HasMore(len(result.Issues)) && !all {
				w.Partial(len(result.Issues), result.Paging.Total, "issues", "Use --page or --all for more.")
			}
		}
		w.Sections(result, board, listing)
		return nil
	},
}

// searchFilter builds the filter from the base query and the filter flags.
func searchFilter(cmd *cobra.Command) (filter.Filter, error) {
	name, _ := cmd.Flags().GetString("filter")
	query, _ := cmd.Flags().GetString("query")

	var (
		base url.Values
		err  error
	)
	switch {
	case name != "" && query != "":
		return filter.Filter{}, cmdErr(fmt.Errorf("--filter and --query cannot be combined"), output.ErrValidation)
	case name != "":
		base, err = savedLocation(getDB(cmd), name)
	case query != "":
		base, err = parseQuery(query)
	}
	if err != nil {
		return filter.Filter{}, err
	}

	patch := filter.Patch{Values: map[string][]string{}}
	for _, ff := range filterFlags {
		if !cmd.Flags().Changed(ff.flag) {
			continue
		}
		values, _ := cmd.Flags().GetStringSlice(ff.flag)
		switch ff.property {
		case filter.PropTypes, filter.PropSeverities, filter.PropStatuses, filter.PropResolutions:
			for i, v := range values {
				values[i] = strings.ToUpper(v)
			}
		}
		if err := validateValues(ff.property, values); err != nil {
			return filter.Filter{}, cmdErr(err, output.ErrValidation)
		}
		patch.Values[ff.property] = values
	}

	for flag, target := range map[string]**bool{
		"resolved":          &patch.Resolved,
		"assigned":          &patch.Assigned,
		"since-leak-period": &patch.SinceLeakPeriod,
	} {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetBool(flag)
			*target = filter.Bool(v)
		}
	}

	for flag, target := range map[string]**string{
		"created-after":   &patch.CreatedAfter,
		"created-before":  &patch.CreatedBefore,
		"created-at":      &patch.CreatedAt,
		"created-in-last": &patch.CreatedInLast,
	} {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			if flag != "created-in-last" && v != "" && !facets.ValidDay(v) {
				return filter.Filter{}, cmdErr(fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", flag, v), output.ErrValidation)
			}
			*target = filter.String(v)
		}
	}

	return filter.Merge(filter.Parse(base), patch), nil
}

// validateValues checks enumerated properties against their known values.
func validateValues(property string, values []string) error {
	for _, v := range values {
		var err error
		switch property {
		case filter.PropTypes:
			err = model.ValidateType(model.IssueType(v))
		case filter.PropSeverities:
			err = model.ValidateSeverity(model.Severity(v))
		case filter.PropStatuses:
			err = model.ValidateStatus(model.Status(v))
		case filter.PropResolutions:
			err = model.ValidateResolution(model.Resolution(v))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// addFilterFlags registers the base query and filter field flags.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("filter", "f", "", "Start from a saved filter")
	cmd.Flags().String("query", "", "Start from a query string or issues page URL")
	for _, ff := range filterFlags {
		cmd.Flags().StringSlice(ff.flag, nil, ff.usage)
	}
	cmd.Flags().Bool("resolved", false, "Only resolved (true) or unresolved (false) issues")
	cmd.Flags().Bool("assigned", true, "Only assigned (true) or unassigned (false) issues")
	cmd.Flags().Bool("since-leak-period", false, "Only issues created in the new code period")
	cmd.Flags().String("created-after", "", "Created on or after YYYY-MM-DD")
	cmd.Flags().String("created-before", "", "Created before YYYY-MM-DD")
	cmd.Flags().String("created-at", "", "Created at an analysis date")
	cmd.Flags().String("created-in-last", "", "Created in the last period (e.g. 1w, 1m)")
}

func init() {
	addFilterFlags(searchCmd)
	searchCmd.Flags().Int("page", 1, "Page to fetch")
	searchCmd.Flags().Int("limit", 0, "Issues per page (default: config page_size)")
	searchCmd.Flags().Bool("all", false, "Fetch every page")
	searchCmd.Flags().Bool("facets", false, "Print the facet counts above the issues")
	rootCmd.AddCommand(searchCmd)
}
