package tui

import (
	"fmt"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ALT-F4-LLC/lintdeck/internal/facets"
	"github.com/ALT-F4-LLC/lintdeck/internal/render"
)

// Layout.
const (
	sidebarWidth  = 32
	minSplitWidth = 80
	headerHeight  = 1
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	headerStyle   = lipgloss.NewStyle().Bold(true)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dividerString = "│"
)

// View renders the browser.
func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	footer := m.renderFooter()
	bodyHeight := m.bodyHeight(footer)

	var body string
	switch {
	case m.width < minSplitWidth && m.focus == FocusSidebar:
		body = m.renderSidebar(m.width, bodyHeight)
	case m.width < minSplitWidth:
		body = m.renderMain(m.width, bodyHeight)
	default:
		divider := dimStyle.Render(strings.TrimSuffix(strings.Repeat(dividerString+"\n", bodyHeight), "\n"))
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderSidebar(sidebarWidth, bodyHeight),
			divider,
			m.renderMain(m.mainWidth(), bodyHeight),
		)
	}

	view := strings.Join([]string{m.renderHeader(), body, footer}, "\n")
	if m.popup != nil {
		lines := m.popup.render(m.width)
		x := max((m.width-ansi.StringWidth(lines[0]))/2, 0)
		y := max((m.height-len(lines))/2, 0)
		view = spliceOverlay(view, lines, x, y)
	}
	return view
}

func (m Model) mainWidth() int {
	if m.width < minSplitWidth {
		return m.width
	}
	return m.width - sidebarWidth - 1
}

func (m Model) bodyHeight(footer string) int {
	return max(m.height-headerHeight-lipgloss.Height(footer), 1)
}

// renderHeader shows the position of the selection, the loading state and
// the breadcrumbs of the open issue.
func (m Model) renderHeader() string {
	parts := []string{titleStyle.Render("lintdeck")}
	if m.paging != nil && m.selected != "" {
		parts = append(parts, fmt.Sprintf("%d / %s", m.cursor+1, humanize.Comma(int64(m.paging.Total))))
	}
	if m.phase == phaseLoading || m.loadingMore {
		parts = append(parts, m.spinner.View()+"loading")
	}
	if open := m.openKey(); open != "" {
		if issue, ok := m.store.Get(open); ok {
			parts = append(parts, dimStyle.Render(render.Breadcrumbs(issue)))
		} else {
			parts = append(parts, dimStyle.Render(open))
		}
	}
	return ansi.Truncate(strings.Join(parts, "  "), m.width, "…")
}

func (m Model) renderFooter() string {
	if m.status != "" {
		style := dimStyle
		if m.statusErr {
			style = errorStyle
		}
		return ansi.Truncate(style.Render(m.status), m.width, "…")
	}
	return m.help.View(m.keys)
}

// renderMain draws the open issue, or the issue list.
func (m Model) renderMain(width, height int) string {
	var content string
	if m.openKey() != "" {
		content = m.detail.View()
	} else {
		content = m.renderList(width, height)
	}
	return lipgloss.NewStyle().Width(width).Height(height).MaxWidth(width).MaxHeight(height).Render(content)
}

// renderList draws the issues in server order with a header row each time
// the component changes, scrolled to keep the selection visible.
func (m Model) renderList(width, height int) string {
	issues := m.store.Issues(m.issues)
	if len(issues) == 0 {
		if m.phase == phaseLoading {
			return dimStyle.Render("Loading issues…")
		}
		if m.phase == phaseIdle {
			return ""
		}
		return render.EmptyState("No issues.", "Press Tab to widen the filter.", false)
	}

	var lines []string
	selectedLine := 0
	for i, issue := range issues {
		if render.NeedsComponentHeader(issues, i) {
			lines = append(lines, render.RenderComponentHeader(issue, width))
		}
		selected := i == m.cursor && m.selected != ""
		if selected {
			selectedLine = len(lines)
		}
		lines = append(lines, strings.Split(render.RenderIssueItem(issue, width, selected), "\n")...)
	}

	available := max(height-1, 1)
	start := 0
	if selectedLine+2 > available {
		start = selectedLine + 2 - available
	}
	end := min(start+available, len(lines))
	visible := append(lines[start:end:end], m.listFooter())
	return strings.Join(visible, "\n")
}

// listFooter counts the loaded issues against the total.
func (m Model) listFooter() string {
	if m.paging == nil {
		return ""
	}
	text := fmt.Sprintf("%s of %s shown", humanize.Comma(int64(len(m.issues))), humanize.Comma(int64(m.paging.Total)))
	switch {
	case m.loadingMore:
		text += " · loading more…"
	case m.paging.HasMore(len(m.issues)):
		text += " · " + m.keys.More.Help().Key + " for more"
	}
	return dimStyle.Render(text)
}

// renderSidebar draws the facet panels, scrolled to keep the cursor
// visible.
func (m Model) renderSidebar(width, height int) string {
	rows := m.sidebarRows()
	focused := m.focus == FocusSidebar || (m.focus == FocusPopup && m.popupReturn == FocusSidebar)

	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		line := sidebarLine(row, width)
		if focused && i == m.sidebar.Cursor {
			line = cursorStyle.Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("No facets."))
	}

	start := 0
	if m.sidebar.Cursor >= height {
		start = m.sidebar.Cursor - height + 1
	}
	end := min(start+height, len(lines))
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(strings.Join(lines[start:end], "\n"))
}

func sidebarLine(row facets.Row, width int) string {
	if row.Header {
		arrow := "▸ "
		if row.Open {
			arrow = "▾ "
		}
		title := headerStyle.Render(row.Widget.Title)
		if row.HasValue {
			title += activeStyle.Render(" •")
		}
		return arrow + title
	}

	mark := "  "
	if row.Item.Active {
		mark = activeStyle.Render("✔ ")
	}
	count := ""
	if row.Item.HasCount {
		count = humanize.Comma(int64(row.Item.Count))
	}
	nameWidth := max(width-4-len(count)-1, 4)
	name := ansi.Truncate(row.Item.Name, nameWidth, "…")
	pad := max(width-4-ansi.StringWidth(name)-len(count), 1)
	return "  " + mark + name + strings.Repeat(" ", pad) + dimStyle.Render(count)
}

// syncDetail sizes the detail pane and refreshes its content from the open
// issue. The pane scrolls back to the top when another issue opens.
func (m *Model) syncDetail() {
	key := m.openKey()
	if key == "" || !m.ready {
		m.detailKey = ""
		return
	}

	width := m.mainWidth()
	m.detail.Width = width
	m.detail.Height = m.bodyHeight(m.renderFooter())

	var content string
	if issue, ok := m.store.Get(key); ok {
		sections := []string{dimStyle.Render(render.Breadcrumbs(issue))}
		if m.source.key == key {
			switch {
			case m.source.loading:
				sections = append(sections, dimStyle.Render("Loading source…"))
			case m.source.err != nil:
				sections = append(sections, render.EmptyState("Source unavailable.", m.source.err.Error(), false))
			default:
				path := issue.ComponentPath
				if path == "" {
					path = issue.Component
				}
				sections = append(sections, render.RenderSource(render.SourceSnippet{
					Path:      path,
					Lines:     m.source.lines,
					IssueLine: issue.Line,
					Message:   issue.Message,
					Severity:  string(issue.Severity),
				}, width))
			}
		}
		sections = append(sections, render.RenderDetail(issue, nil))
		content = strings.Join(sections, "\n\n")
	} else {
		content = dimStyle.Render("Loading " + key + "…")
	}

	m.detail.SetContent(content)
	if key != m.detailKey {
		m.detailKey = key
		m.detail.GotoTop()
	}
}
