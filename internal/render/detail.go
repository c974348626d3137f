package render

import (
	"fmt"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

// RenderDetail renders a full issue view: header, attributes, comments and,
// when given, the changelog.
func RenderDetail(issue *model.Issue, changelog []model.ChangelogEntry) string {
	if !ColorsEnabled() {
		return renderPlainDetail(issue, changelog)
	}

	sections := []string{
		renderHeader(issue),
		renderMetadata(issue),
	}

	if len(issue.Comments) > 0 {
		sections = append(sections, renderComments(issue.Comments))
	}

	if len(changelog) > 0 {
		sections = append(sections, renderChangelog(changelog))
	}

	return strings.Join(sections, "\n\n")
}

// Breadcrumbs returns the project, sub-project and component path of the
// issue joined for display.
func Breadcrumbs(issue *model.Issue) string {
	var parts []string
	if issue.ProjectName != "" {
		parts = append(parts, issue.ProjectName)
	} else if issue.Project != "" {
		parts = append(parts, issue.Project)
	}
	if issue.SubProjectName != "" {
		parts = append(parts, issue.SubProjectName)
	}
	if issue.ComponentPath != "" {
		parts = append(parts, issue.ComponentPath)
	} else if c := issue.ComponentDisplay(); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, " › ")
}

func renderHeader(issue *model.Issue) string {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	messageStyle := lipgloss.NewStyle().Bold(true)
	typeStyle := lipgloss.NewStyle().
		Foreground(ColorFromName(issue.Type.Color())).
		Bold(true)
	statusStyle := lipgloss.NewStyle().
		Foreground(ColorFromName(issue.Status.Color())).
		Bold(true)
	severityStyle := lipgloss.NewStyle().
		Foreground(ColorFromName(issue.Severity.Color())).
		Bold(true)
	crumbStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	return fmt.Sprintf("%s\n%s %s  %s\n%s  %s",
		crumbStyle.Render(Breadcrumbs(issue)),
		typeStyle.Render(issue.Type.Icon()),
		keyStyle.Render(issue.Key),
		messageStyle.Render(issue.Message),
		statusStyle.Render(StatusLabel(issue)),
		severityStyle.Render(SeverityLabel(issue.Severity)),
	)
}

type field struct {
	label string
	value string
}

func metadataFields(issue *model.Issue) []field {
	rule := issue.Rule
	if issue.RuleName != "" {
		rule = fmt.Sprintf("%s (%s)", issue.RuleName, issue.Rule)
	}

	fields := []field{
		{"Type:", TypeLabel(issue.Type)},
		{"Rule:", rule},
		{"Assignee:", issue.AssigneeDisplay()},
	}
	if issue.Author != "" {
		fields = append(fields, field{"Author:", issue.Author})
	}
	if issue.Effort != "" {
		fields = append(fields, field{"Effort:", issue.Effort})
	}
	if l := LineLabel(issue.Line); l != "" {
		fields = append(fields, field{"Line:", l})
	}
	if len(issue.Tags) > 0 {
		fields = append(fields, field{"Tags:", strings.Join(issue.Tags, ", ")})
	}
	if len(issue.Transitions) > 0 {
		fields = append(fields, field{"Transitions:", strings.Join(issue.Transitions, ", ")})
	}
	fields = append(fields,
		field{"Created:", humanize.Time(issue.CreatedAt)},
		field{"Updated:", humanize.Time(issue.UpdatedAt)},
	)
	return fields
}

func renderMetadata(issue *model.Issue) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var lines []string
	for _, f := range metadataFields(issue) {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render(f.label), f.value))
	}
	return strings.Join(lines, "\n")
}

// RenderCommentList renders a styled comment list. Exported for reuse by the
// TUI detail pane.
func RenderCommentList(comments []model.Comment) string {
	if !ColorsEnabled() {
		var b strings.Builder
		writePlainComments(&b, comments)
		return b.String()
	}
	return renderComments(comments)
}

func renderComments(comments []model.Comment) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	authorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	header := sectionStyle.Render("Comments")

	var parts []string
	for _, c := range comments {
		body, err := RenderMarkdown(c.Markdown)
		if err != nil {
			body = c.Markdown
		}

		commentHeader := fmt.Sprintf("%s  %s  %s",
			authorStyle.Render(c.AuthorOrAnonymous()),
			timeStyle.Render(humanize.Time(c.CreatedAt)),
			timeStyle.Render(c.Key),
		)

		parts = append(parts, commentHeader+"\n"+body)
	}

	return header + "\n" + strings.Join(parts, "\n\n")
}

// diffIcon returns a semantic icon for a changelog diff.
func diffIcon(d model.Diff) string {
	switch d.Key {
	case "status":
		if d.NewValue != "" {
			return model.Status(d.NewValue).Icon()
		}
		return "\u25cb" // ○
	case "severity":
		return model.Severity(d.NewValue).Icon()
	case "type":
		return model.IssueType(d.NewValue).Icon()
	default:
		return "\u270e" // ✎
	}
}

// RenderChangelog renders the changelog as a tree: one node per entry with
// its diffs as children.
func RenderChangelog(entries []model.ChangelogEntry) string {
	if len(entries) == 0 {
		return EmptyState("No changes.", "", true)
	}
	if !ColorsEnabled() {
		var b strings.Builder
		writePlainChangelog(&b, entries)
		return b.String()
	}
	return renderChangelog(entries)
}

func renderChangelog(entries []model.ChangelogEntry) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	actorStyle := lipgloss.NewStyle().Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	t := tree.New().Root(sectionStyle.Render("Changelog"))
	for _, e := range entries {
		node := tree.Root(fmt.Sprintf("%s  %s",
			actorStyle.Render(e.Actor()),
			timeStyle.Render(humanize.Time(e.CreatedAt)),
		))
		for _, d := range e.Diffs {
			node.Child(diffIcon(d) + " " + d.String())
		}
		t.Child(node)
	}
	return t.String()
}

// renderPlainDetail renders a detail view without any color or styling.
func renderPlainDetail(issue *model.Issue, changelog []model.ChangelogEntry) string {
	var b strings.Builder

	if crumbs := Breadcrumbs(issue); crumbs != "" {
		fmt.Fprintf(&b, "%s\n", crumbs)
	}
	fmt.Fprintf(&b, "%s %s  %s\n", issue.Type.Icon(), issue.Key, issue.Message)
	fmt.Fprintf(&b, "%s  %s\n", StatusLabel(issue), SeverityLabel(issue.Severity))

	b.WriteString("\n")
	for _, f := range metadataFields(issue) {
		fmt.Fprintf(&b, "%s %s\n", f.label, f.value)
	}

	if len(issue.Comments) > 0 {
		b.WriteString("\n")
		writePlainComments(&b, issue.Comments)
	}

	if len(changelog) > 0 {
		b.WriteString("\n")
		writePlainChangelog(&b, changelog)
	}

	return b.String()
}

func writePlainComments(b *strings.Builder, comments []model.Comment) {
	b.WriteString("Comments\n")
	for _, c := range comments {
		fmt.Fprintf(b, "  %s  %s  %s\n  %s\n\n", c.AuthorOrAnonymous(), humanize.Time(c.CreatedAt), c.Key, c.Markdown)
	}
}

func writePlainChangelog(b *strings.Builder, entries []model.ChangelogEntry) {
	b.WriteString("Changelog\n")
	for _, e := range entries {
		fmt.Fprintf(b, "  %s  %s\n", e.Actor(), humanize.Time(e.CreatedAt))
		for _, d := range e.Diffs {
			fmt.Fprintf(b, "    %s\n", d.String())
		}
	}
}
