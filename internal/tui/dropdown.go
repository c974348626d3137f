package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

// DropdownOption is a single selectable item of a menu.
type DropdownOption struct {
	Label string // Display text.
	Value string // Wire value sent to the server on selection.
}

// Dropdown is a vertical menu with a wrapping cursor.
type Dropdown struct {
	Options []DropdownOption
	Cursor  int
}

// NewDropdown returns a menu with the cursor on the option whose value is
// current, or on the first option.
func NewDropdown(options []DropdownOption, current string) Dropdown {
	d := Dropdown{Options: options}
	for i, o := range options {
		if o.Value == current {
			d.Cursor = i
			break
		}
	}
	return d
}

// TypeOptions lists the issue types.
func TypeOptions() []DropdownOption {
	options := make([]DropdownOption, len(model.Types))
	for i, t := range model.Types {
		options[i] = DropdownOption{Label: t.Icon() + " " + t.Label(), Value: string(t)}
	}
	return options
}

// SeverityOptions lists the severities, most severe first.
func SeverityOptions() []DropdownOption {
	options := make([]DropdownOption, len(model.Severities))
	for i, s := range model.Severities {
		options[i] = DropdownOption{Label: s.Icon() + " " + string(s), Value: string(s)}
	}
	return options
}

// TransitionOptions lists the transitions the server allows on issue.
func TransitionOptions(issue *model.Issue) []DropdownOption {
	options := make([]DropdownOption, len(issue.Transitions))
	for i, t := range issue.Transitions {
		options[i] = DropdownOption{Label: transitionLabel(t), Value: t}
	}
	return options
}

func transitionLabel(t string) string {
	switch t {
	case model.TransitionConfirm:
		return "Confirm"
	case model.TransitionUnconfirm:
		return "Unconfirm"
	case model.TransitionReopen:
		return "Reopen"
	case model.TransitionResolve:
		return "Resolve as fixed"
	case model.TransitionFalsePositive:
		return "Resolve as false positive"
	case model.TransitionWontFix:
		return "Resolve as won't fix"
	case model.TransitionClose:
		return "Close"
	default:
		return t
	}
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (dropdown *Dropdown) MoveUp() {
	if len(dropdown.Options) == 0 {
		return
	}
	dropdown.Cursor--
	if dropdown.Cursor < 0 {
		dropdown.Cursor = len(dropdown.Options) - 1
	}
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (dropdown *Dropdown) MoveDown() {
	if len(dropdown.Options) == 0 {
		return
	}
	dropdown.Cursor++
	if dropdown.Cursor >= len(dropdown.Options) {
		dropdown.Cursor = 0
	}
}

// Selected returns the highlighted option. It reports false for an empty
// menu.
func (dropdown *Dropdown) Selected() (DropdownOption, bool) {
	if dropdown.Cursor < 0 || dropdown.Cursor >= len(dropdown.Options) {
		return DropdownOption{}, false
	}
	return dropdown.Options[dropdown.Cursor], true
}

// Render produces the menu lines. Every line has the same visible width so
// the menu can be spliced over other content.
func (dropdown *Dropdown) Render(minWidth int) []string {
	maxLabelWidth := minWidth
	for _, option := range dropdown.Options {
		maxLabelWidth = max(maxLabelWidth, ansi.StringWidth(option.Label))
	}
	// " > LABEL ": marker, space, label, then padding.
	innerWidth := 2 + maxLabelWidth

	background := lipgloss.NewStyle().Background(lipgloss.Color("236"))
	selected := lipgloss.NewStyle().Background(lipgloss.Color("24")).Foreground(lipgloss.Color("15"))

	lines := make([]string, 0, len(dropdown.Options))
	for index, option := range dropdown.Options {
		marker := " "
		style := background
		if index == dropdown.Cursor {
			marker = ">"
			style = selected
		}
		content := marker + " " + option.Label
		pad := max(innerWidth-ansi.StringWidth(content), 0)
		lines = append(lines, style.Render(" "+content+strings.Repeat(" ", pad)+" "))
	}
	return lines
}

// spliceOverlay replaces a rectangular region of view with the overlay
// lines, placed at (anchorX, anchorY). Escape sequences of the view are kept
// on both sides of the overlay.
func spliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	for index, overlayLine := range overlayLines {
		row := anchorY + index
		if row < 0 || row >= len(viewLines) {
			continue
		}
		viewLine := viewLines[row]

		var b strings.Builder
		if anchorX > 0 {
			prefix := ansi.Truncate(viewLine, anchorX, "")
			b.WriteString(prefix)
			if w := ansi.StringWidth(prefix); w < anchorX {
				b.WriteString(strings.Repeat(" ", anchorX-w))
			}
		}
		b.WriteString("\x1b[0m")
		b.WriteString(overlayLine)
		b.WriteString("\x1b[0m")

		suffixStart := anchorX + ansi.StringWidth(overlayLine)
		if suffixStart < ansi.StringWidth(viewLine) {
			b.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}
		viewLines[row] = b.String()
	}
	return strings.Join(viewLines, "\n")
}
