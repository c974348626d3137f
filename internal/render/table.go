package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

const maxMessageWidth = 60

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// ColorFromName maps model color name strings to lipgloss colors.
func ColorFromName(name string) lipgloss.Color {
	switch name {
	case "red":
		return lipgloss.Color("9")
	case "yellow":
		return lipgloss.Color("11")
	case "blue":
		return lipgloss.Color("12")
	case "green":
		return lipgloss.Color("10")
	case "magenta":
		return lipgloss.Color("13")
	case "cyan":
		return lipgloss.Color("14")
	case "gray":
		return lipgloss.Color("8")
	default:
		return lipgloss.Color("15")
	}
}

// truncate shortens a string to maxLen runes, appending an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// TypeLabel returns the type with its icon, e.g. "✖ Bug".
func TypeLabel(t model.IssueType) string {
	return t.Icon() + " " + t.Label()
}

// SeverityLabel returns the severity with its icon.
func SeverityLabel(s model.Severity) string {
	return s.Icon() + " " + string(s)
}

// StatusLabel returns the status with its icon and, for resolved issues,
// the resolution: "✔ RESOLVED (FIXED)".
func StatusLabel(issue *model.Issue) string {
	label := issue.Status.Icon() + " " + string(issue.Status)
	if issue.Resolution != model.ResolutionNone {
		label += " (" + string(issue.Resolution) + ")"
	}
	return label
}

// LineLabel returns "L42", or "" for issues on the whole file.
func LineLabel(line int) string {
	if line <= 0 {
		return ""
	}
	return "L" + strconv.Itoa(line)
}

// NeedsComponentHeader reports whether the issue at index i starts a new
// component group. Issues are never re-sorted; a header is inserted each
// time the component differs from the previous row.
func NeedsComponentHeader(issues []*model.Issue, i int) bool {
	if i <= 0 {
		return i == 0 && len(issues) > 0
	}
	return issues[i].Component != issues[i-1].Component
}

// EmptyState renders a styled empty-state message with an optional contextual hint.
// When colors are enabled the message is rendered in dim gray and the hint is italic.
// When quiet is true the hint is suppressed.
func EmptyState(message, hint string, quiet bool) string {
	if !ColorsEnabled() {
		if quiet || hint == "" {
			return message
		}
		return message + "\n" + hint
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	result := dimStyle.Render(message)
	if !quiet && hint != "" {
		result += "\n" + hintStyle.Render(hint)
	}
	return result
}

const emptyHint = "Widen the filter, e.g. lintdeck search --resolved=false"

// RenderTable renders issues as a table, with a component row each time the
// component changes.
func RenderTable(issues []*model.Issue) string {
	if len(issues) == 0 {
		return EmptyState("No issues found.", emptyHint, false)
	}

	if !ColorsEnabled() {
		return renderPlainTable(issues)
	}

	headers := []string{"Key", "Line", "Message", "Type", "Severity", "Status", "Assignee", "Effort", "Created"}

	type rowKind struct {
		component bool
		issue     *model.Issue
	}
	var (
		rows  [][]string
		kinds []rowKind
	)
	for i, issue := range issues {
		if NeedsComponentHeader(issues, i) {
			rows = append(rows, []string{"", "", issue.ComponentDisplay(), "", "", "", "", "", ""})
			kinds = append(kinds, rowKind{component: true})
		}
		rows = append(rows, issueToRow(issue))
		kinds = append(kinds, rowKind{issue: issue})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}

			if row < 0 || row >= len(kinds) {
				return s
			}

			k := kinds[row]
			if k.component {
				return s.Bold(true).Foreground(lipgloss.Color("14"))
			}
			switch col {
			case 0:
				return s.Foreground(lipgloss.Color("8"))
			case 2:
				return s.Bold(true)
			case 3:
				return s.Foreground(ColorFromName(k.issue.Type.Color()))
			case 4:
				return s.Foreground(ColorFromName(k.issue.Severity.Color()))
			case 5:
				return s.Foreground(ColorFromName(k.issue.Status.Color()))
			default:
				return s
			}
		})

	return t.Render()
}

func issueToRow(issue *model.Issue) []string {
	return []string{
		issue.Key,
		LineLabel(issue.Line),
		truncate(issue.Message, maxMessageWidth),
		TypeLabel(issue.Type),
		SeverityLabel(issue.Severity),
		StatusLabel(issue),
		issue.AssigneeDisplay(),
		issue.Effort,
		humanize.Time(issue.CreatedAt),
	}
}

func renderPlainTable(issues []*model.Issue) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-22s %-6s %-60s %-16s %-12s %-24s %-16s %-8s %s\n",
		"Key", "Line", "Message", "Type", "Severity", "Status", "Assignee", "Effort", "Created")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 180))

	for i, issue := range issues {
		if NeedsComponentHeader(issues, i) {
			fmt.Fprintf(&b, "\n%s\n", issue.ComponentDisplay())
		}
		fmt.Fprintf(&b, "%-22s %-6s %-60s %-16s %-12s %-24s %-16s %-8s %s\n",
			issue.Key,
			LineLabel(issue.Line),
			truncate(issue.Message, maxMessageWidth),
			TypeLabel(issue.Type),
			SeverityLabel(issue.Severity),
			StatusLabel(issue),
			issue.AssigneeDisplay(),
			issue.Effort,
			humanize.Time(issue.CreatedAt),
		)
	}

	return b.String()
}

// RenderIssueItem renders one issue of the browsable list in two lines: the
// message with its age, then the issue attributes. width bounds each line.
func RenderIssueItem(issue *model.Issue, width int, selected bool) string {
	if width < 20 {
		width = 20
	}

	age := humanize.Time(issue.CreatedAt)
	message := truncate(issue.Message, max(width-utf8.RuneCountInString(age)-4, 8))

	meta := []string{
		TypeLabel(issue.Type),
		SeverityLabel(issue.Severity),
		StatusLabel(issue),
		issue.AssigneeDisplay(),
	}
	if issue.Effort != "" {
		meta = append(meta, issue.Effort+" effort")
	}
	if n := len(issue.Comments); n > 0 {
		meta = append(meta, fmt.Sprintf("%d %s", n, plural(n, "comment", "comments")))
	}
	if l := LineLabel(issue.Line); l != "" {
		meta = append(meta, l)
	}
	meta = append(meta, issue.Rule)
	if len(issue.Tags) > 0 {
		meta = append(meta, "#"+strings.Join(issue.Tags, " #"))
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	if !ColorsEnabled() {
		return cursor + message + "  " + age + "\n  " + truncate(strings.Join(meta, " · "), width-2)
	}

	messageStyle := lipgloss.NewStyle().Bold(selected)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	sep := dim.Render(" · ")

	styled := []string{
		lipgloss.NewStyle().Foreground(ColorFromName(issue.Type.Color())).Render(meta[0]),
		lipgloss.NewStyle().Foreground(ColorFromName(issue.Severity.Color())).Render(meta[1]),
		lipgloss.NewStyle().Foreground(ColorFromName(issue.Status.Color())).Render(meta[2]),
	}
	for _, m := range meta[3:] {
		styled = append(styled, dim.Render(m))
	}

	line1 := cursor + messageStyle.Render(message) + "  " + dim.Render(age)
	line2 := "  " + lipgloss.NewStyle().MaxWidth(width-2).Render(strings.Join(styled, sep))
	item := line1 + "\n" + line2
	if selected {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Render(item)
	}
	return item
}

// RenderComponentHeader renders the group header shown above the issues of
// one component.
func RenderComponentHeader(issue *model.Issue, width int) string {
	name := issue.ComponentDisplay()
	if issue.ProjectName != "" {
		name = issue.ProjectName + " › " + name
	}
	name = truncate(name, max(width, 10))
	return StyledText(name, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
