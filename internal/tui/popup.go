package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ALT-F4-LLC/lintdeck/internal/facets"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
	"github.com/ALT-F4-LLC/lintdeck/internal/render"
)

// popupKind identifies what the active popup edits.
type popupKind int

const (
	popupType popupKind = iota
	popupSeverity
	popupTransition
	popupAssign
	popupTags
	popupComment
	popupChangelog
	popupAssigneeFilter
	popupDateAfter
	popupDateBefore
)

func (k popupKind) title() string {
	switch k {
	case popupType:
		return "Type"
	case popupSeverity:
		return "Severity"
	case popupTransition:
		return "Transition"
	case popupAssign:
		return "Assign"
	case popupTags:
		return "Tags"
	case popupComment:
		return "Comment"
	case popupChangelog:
		return "Changelog"
	case popupAssigneeFilter:
		return "Filter by assignee"
	case popupDateAfter:
		return "Created after (YYYY-MM-DD)"
	case popupDateBefore:
		return "Created before (YYYY-MM-DD)"
	default:
		return ""
	}
}

// Pseudo values of the assign menu.
const (
	assignMeValue   = "\x00me"
	unassignedValue = ""
)

// tagSuggestionSize is how many tags the tag popup suggests.
const tagSuggestionSize = 10

// popup is the single active popup. Which fields are used depends on kind.
type popup struct {
	kind     popupKind
	issueKey string

	menu  Dropdown
	input textinput.Model
	area  textarea.Model

	// Assign and assignee filter.
	users         []model.User
	canAssignToMe bool
	// Tags.
	suggestions []string
	// Changelog.
	changelog []model.ChangelogEntry
	loading   bool
}

func newMenuPopup(kind popupKind, issueKey string, options []DropdownOption, current string) *popup {
	return &popup{kind: kind, issueKey: issueKey, menu: NewDropdown(options, current)}
}

func newInputPopup(kind popupKind, issueKey, value, placeholder string) *popup {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = "› "
	input.CharLimit = 200
	input.SetValue(value)
	input.CursorEnd()
	input.Focus()
	return &popup{kind: kind, issueKey: issueKey, input: input}
}

func newCommentPopup(issueKey string) *popup {
	area := textarea.New()
	area.Placeholder = "Markdown comment. Ctrl+D to submit, Esc to cancel."
	area.ShowLineNumbers = false
	area.SetWidth(56)
	area.SetHeight(6)
	area.Focus()
	return &popup{kind: popupComment, issueKey: issueKey, area: area}
}

// usesInput reports whether typed runes go to the text input.
func (p *popup) usesInput() bool {
	switch p.kind {
	case popupAssign, popupAssigneeFilter, popupTags, popupDateAfter, popupDateBefore:
		return true
	}
	return false
}

// setUsers replaces the user search results and rebuilds the menu from
// them, ranked against the current query. While a query is typed the cursor
// starts on the best match.
func (p *popup) setUsers(users []model.User) {
	p.users = users
	var options []DropdownOption
	if p.kind == popupAssign {
		if p.canAssignToMe {
			options = append(options, DropdownOption{Label: "Assign to me", Value: assignMeValue})
		}
		options = append(options, DropdownOption{Label: "Unassigned", Value: unassignedValue})
	}
	fixed := len(options)
	for _, c := range facets.RankUsers(p.input.Value(), users) {
		options = append(options, DropdownOption{Label: c.Label(), Value: c.User.Login})
	}
	p.menu = Dropdown{Options: options}
	if strings.TrimSpace(p.input.Value()) != "" && len(options) > fixed {
		p.menu.Cursor = fixed
	}
}

// userName returns the display name of a login among the search results.
func (p *popup) userName(login string) string {
	for _, u := range p.users {
		if u.Login == login {
			return u.Name
		}
	}
	return ""
}

// tagQuery returns the tag being typed: the text after the last separator.
func (p *popup) tagQuery() string {
	value := p.input.Value()
	if i := strings.LastIndexAny(value, ", "); i >= 0 {
		value = value[i+1:]
	}
	return strings.TrimSpace(value)
}

// completeTag replaces the tag being typed with the first suggestion.
func (p *popup) completeTag() {
	if len(p.suggestions) == 0 {
		return
	}
	value := p.input.Value()
	prefix := ""
	if i := strings.LastIndexAny(value, ", "); i >= 0 {
		prefix = value[:i+1]
		if !strings.HasSuffix(prefix, " ") {
			prefix += " "
		}
	}
	p.input.SetValue(prefix + p.suggestions[0] + ", ")
	p.input.CursorEnd()
}

// ParseTags splits a comma or space separated tag list, dropping empty and
// repeated tags.
func ParseTags(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	seen := make(map[string]bool, len(fields))
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		tags = append(tags, f)
	}
	return tags
}

// render draws the popup as a bordered box of at most width columns.
func (p *popup) render(width int) []string {
	inner := min(max(width-4, 20), 60)

	var body []string
	switch p.kind {
	case popupType, popupSeverity, popupTransition:
		body = p.menu.Render(inner-4)
	case popupAssign, popupAssigneeFilter:
		body = append(body, p.input.View())
		options := p.menu.Options
		if len(options) > 10 {
			visible := p.menu
			start := max(0, min(p.menu.Cursor-4, len(options)-10))
			visible.Options = options[start : start+10]
			visible.Cursor = p.menu.Cursor - start
			body = append(body, visible.Render(inner-4)...)
		} else {
			body = append(body, p.menu.Render(inner-4)...)
		}
	case popupTags:
		body = append(body, p.input.View())
		if len(p.suggestions) > 0 {
			body = append(body, render.StyledText("Tab: "+strings.Join(p.suggestions, "  "), lipgloss.NewStyle().Foreground(lipgloss.Color("8"))))
		}
	case popupDateAfter, popupDateBefore:
		body = append(body, p.input.View())
	case popupComment:
		p.area.SetWidth(inner)
		body = strings.Split(p.area.View(), "\n")
	case popupChangelog:
		if p.loading {
			body = []string{"Loading…"}
		} else {
			body = strings.Split(render.RenderChangelog(p.changelog), "\n")
		}
	}

	for i, line := range body {
		if ansi.StringWidth(line) > inner {
			body[i] = ansi.Truncate(line, inner, "…")
		}
	}

	title := p.kind.title()
	if p.issueKey != "" {
		title += " · " + p.issueKey
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(0, 1).
		Width(inner+2).
		Render(lipgloss.NewStyle().Bold(true).Render(title) + "\n" + strings.Join(body, "\n"))
	return strings.Split(box, "\n")
}
