package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings of the issue browser.
type KeyMap struct {
	// Navigation. Up and down move the selection, or step through issues
	// while one is open.
	Up    key.Binding
	Down  key.Binding
	Open  key.Binding
	Close key.Binding
	Next  key.Binding // Open view: next issue.
	Prev  key.Binding // Open view: previous issue.

	PageUp   key.Binding // Open view: scroll the detail pane.
	PageDown key.Binding

	More   key.Binding // Load the next page.
	Reload key.Binding
	Back   key.Binding // Previous location in history.

	// Sidebar.
	FocusToggle  key.Binding
	Activate     key.Binding // Toggle a facet panel or click an item.
	ClearFacet   key.Binding
	SearchFacet  key.Binding // Assignee facet: search users.
	PickAfter    key.Binding // Creation date facet: lower bound.
	PickBefore   key.Binding // Creation date facet: upper bound.
	CloseSidebar key.Binding

	// Issue actions.
	Transition key.Binding
	Assign     key.Binding
	AssignToMe key.Binding
	Severity   key.Binding
	Comment    key.Binding
	Tags       key.Binding
	Type       key.Binding
	Changelog  key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style movement (j/k)
// alongside the arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("right", "enter", "o"),
		key.WithHelp("→", "open"),
	),
	Close: key.NewBinding(
		key.WithKeys("left", "esc"),
		key.WithHelp("←", "close"),
	),
	Next: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "previous"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "scroll up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "scroll down"),
	),
	More: key.NewBinding(
		key.WithKeys("M"),
		key.WithHelp("M", "more"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Back: key.NewBinding(
		key.WithKeys("b", "backspace"),
		key.WithHelp("b", "back"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "facets"),
	),
	Activate: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("␣", "toggle"),
	),
	ClearFacet: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear facet"),
	),
	SearchFacet: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	PickAfter: key.NewBinding(
		key.WithKeys(">"),
		key.WithHelp(">", "after"),
	),
	PickBefore: key.NewBinding(
		key.WithKeys("<"),
		key.WithHelp("<", "before"),
	),
	CloseSidebar: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "list"),
	),
	Transition: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "transition"),
	),
	Assign: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "assign"),
	),
	AssignToMe: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "assign to me"),
	),
	Severity: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "severity"),
	),
	Comment: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "comment"),
	),
	Tags: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "tags"),
	),
	Type: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "type"),
	),
	Changelog: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "changelog"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns the bindings shown in the one-line help footer.
func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Up, keys.Down, keys.Open, keys.FocusToggle, keys.Transition, keys.Assign, keys.Help, keys.Quit}
}

// FullHelp returns every binding, grouped by column.
func (keys KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Up, keys.Down, keys.Open, keys.Close, keys.Next, keys.Prev, keys.PageUp, keys.PageDown},
		{keys.More, keys.Reload, keys.Back, keys.FocusToggle, keys.Activate, keys.ClearFacet, keys.SearchFacet, keys.PickAfter, keys.PickBefore},
		{keys.Transition, keys.Assign, keys.AssignToMe, keys.Severity, keys.Type, keys.Tags, keys.Comment, keys.Changelog},
		{keys.Help, keys.Quit},
	}
}
