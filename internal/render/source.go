package render

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ALT-F4-LLC/lintdeck/internal/api"
)

// SourceContext is how many lines are shown on each side of the issue line.
const SourceContext = 10

// SourceWindow returns the inclusive line range shown around line. Issues on
// the whole file (line 0) show the top of the file.
func SourceWindow(line int) (from, to int) {
	if line <= 0 {
		return 1, 2*SourceContext + 1
	}
	return max(line-SourceContext, 1), line + SourceContext
}

// SourceSnippet is the code around one issue.
type SourceSnippet struct {
	Path      string
	Lines     []api.SourceLine
	IssueLine int
	Message   string
	Severity  string
}

// RenderSource renders the snippet with a line-number gutter, syntax
// highlighting chosen from the file name, the issue line marked and the issue
// message shown below it. Lines are cut at width columns; width <= 0 leaves
// them whole.
func RenderSource(s SourceSnippet, width int) string {
	if len(s.Lines) == 0 {
		return EmptyState("No source available.", "", true)
	}

	code := highlight(s)
	gutterWidth := len(strconv.Itoa(s.Lines[len(s.Lines)-1].Line))

	markStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	gutterStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	issueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("52")).
		Padding(0, 1)

	var b strings.Builder
	for i, l := range s.Lines {
		marker := "  "
		if l.Line == s.IssueLine {
			marker = StyledText("▶ ", markStyle)
		}
		gutter := StyledText(fmt.Sprintf("%*d │", gutterWidth, l.Line), gutterStyle)
		line := marker + gutter + " " + code[i]
		if width > 0 {
			line = ansi.Truncate(line, width, "…")
		}
		b.WriteString(line)
		b.WriteString("\n")

		if l.Line == s.IssueLine && s.Message != "" {
			indent := strings.Repeat(" ", gutterWidth+5)
			note := "└ " + s.Message
			if s.Severity != "" {
				note += " [" + s.Severity + "]"
			}
			if width > 0 {
				note = ansi.Truncate(note, max(width-len(indent)-2, 1), "…")
			}
			b.WriteString(indent + StyledText(note, issueStyle) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// highlight returns one rendered string per snippet line. It falls back to
// the raw code when colors are off or highlighting fails.
func highlight(s SourceSnippet) []string {
	raw := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		raw[i] = strings.ReplaceAll(l.Code, "\t", "    ")
	}
	if !ColorsEnabled() {
		return raw
	}

	var buf strings.Builder
	if err := quick.Highlight(&buf, strings.Join(raw, "\n"), path.Base(s.Path), "terminal256", "monokai"); err != nil {
		return raw
	}
	out := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(out) != len(raw) {
		return raw
	}
	return out
}
