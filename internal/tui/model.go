// Package tui implements the interactive issue browser. Model is a bubbletea
// model acting as the page controller: it reads the current location from a
// nav.Navigator, fetches the matching issues, keeps them in the shared
// store and routes keyboard input to the issue list, the facet sidebar or
// the active popup.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ALT-F4-LLC/lintdeck/internal/api"
	"github.com/ALT-F4-LLC/lintdeck/internal/facets"
	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
	"github.com/ALT-F4-LLC/lintdeck/internal/nav"
	"github.com/ALT-F4-LLC/lintdeck/internal/render"
	"github.com/ALT-F4-LLC/lintdeck/internal/store"
)

// PageSize is the number of issues fetched per page.
const PageSize = 25

// statusFadeDelay is how long a status message stays visible before the
// footer falls back to the key help.
const statusFadeDelay = 5 * time.Second

// Client is the part of the server API the browser uses. *api.Client
// implements it.
type Client interface {
	SearchIssues(ctx context.Context, params url.Values) (*api.SearchResponse, error)
	GetIssue(ctx context.Context, key string) (*model.Issue, error)
	Changelog(ctx context.Context, key string) ([]model.ChangelogEntry, error)
	SetType(ctx context.Context, key string, t model.IssueType) (*model.Issue, error)
	SetSeverity(ctx context.Context, key string, s model.Severity) (*model.Issue, error)
	DoTransition(ctx context.Context, key, transition string) (*model.Issue, error)
	Assign(ctx context.Context, key, login string) (*model.Issue, error)
	AssignToMe(ctx context.Context, key string) (*model.Issue, error)
	SetTags(ctx context.Context, key string, tags []string) (*model.Issue, error)
	AddComment(ctx context.Context, key, text string) (*model.Issue, error)
	SearchUsers(ctx context.Context, query string, pageSize int) ([]model.User, error)
	SearchTags(ctx context.Context, query string, pageSize int) ([]string, error)
	SourceLines(ctx context.Context, componentKey string, from, to int) ([]api.SourceLine, error)
}

var _ Client = (*api.Client)(nil)

// phase is the loading state of the first page.
type phase int

const (
	phaseIdle phase = iota
	phaseLoading
	phaseLoaded
)

// FocusRegion identifies which part of the screen receives keyboard input.
type FocusRegion int

const (
	// FocusList routes keys to the issue list or the open issue.
	FocusList FocusRegion = iota
	// FocusSidebar routes keys to the facet sidebar.
	FocusSidebar
	// FocusPopup routes keys to the active popup.
	FocusPopup
)

// requestSeq holds the latest sequence number issued per request category.
// A response carrying an older number is stale and dropped.
type requestSeq struct {
	page   uint64
	more   uint64
	issue  uint64
	source uint64
	users  uint64
	tags   uint64
}

// sourceState is the source snippet of the open issue.
type sourceState struct {
	key     string
	lines   []api.SourceLine
	loading bool
	err     error
}

// Messages delivered by commands.
type (
	locationMsg struct {
		location url.Values
	}
	searchResultMsg struct {
		seq      uint64
		more     bool
		response *api.SearchResponse
		err      error
	}
	issueMsg struct {
		seq   uint64
		key   string
		issue *model.Issue
		err   error
	}
	sourceMsg struct {
		seq   uint64
		key   string
		lines []api.SourceLine
		err   error
	}
	usersMsg struct {
		seq   uint64
		users []model.User
		err   error
	}
	tagsMsg struct {
		seq  uint64
		tags []string
		err  error
	}
	changelogMsg struct {
		key     string
		entries []model.ChangelogEntry
		err     error
	}
	// mutationResultMsg carries the outcome of an optimistic change.
	// transition is set when the change was a workflow transition.
	mutationResultMsg struct {
		action     string
		snapshot   store.Snapshot
		issue      *model.Issue
		transition string
		err        error
	}
	// refreshMsg carries the server's copy of an issue fetched after a
	// rejected change. version is the store version when it was requested.
	refreshMsg struct {
		key     string
		version uint64
		issue   *model.Issue
		err     error
	}
	statusFadeMsg struct {
		id int
	}
)

// Model is the bubbletea model of the issue browser.
type Model struct {
	client Client
	nav    nav.Navigator
	store  *store.Store
	logger *slog.Logger
	login  string

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	detail  viewport.Model

	phase       phase
	loadingMore bool
	location    url.Values
	filter      filter.Filter
	issues      []string
	cursor      int
	selected    string
	facets      map[string]filter.Facet
	paging      *model.Paging
	refs        facets.Refs
	sidebar     facets.Sidebar
	openFacets  map[string]bool

	seq          requestSeq
	pendingIssue string
	source       sourceState
	detailKey    string

	focus       FocusRegion
	popup       *popup
	popupReturn FocusRegion

	status    string
	statusErr bool
	statusID  int

	width  int
	height int
	ready  bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithLogin sets the login of the authenticated user, shown as the assignee
// while an assign-to-me request is in flight.
func WithLogin(login string) Option {
	return func(m *Model) { m.login = login }
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(keys KeyMap) Option {
	return func(m *Model) { m.keys = keys }
}

// NewModel returns a browser reading its location from navigator. Issues
// fetched are received into issues, which may be shared with other views.
func NewModel(client Client, navigator nav.Navigator, issues *store.Store, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		client:     client,
		nav:        navigator,
		store:      issues,
		logger:     slog.New(slog.DiscardHandler),
		keys:       DefaultKeyMap,
		help:       help.New(),
		spinner:    s,
		detail:     viewport.New(0, 0),
		facets:     map[string]filter.Facet{},
		refs:       facets.NewRefs(nil, nil, nil, nil),
		sidebar:    facets.NewSidebar(),
		openFacets: facets.DefaultOpen(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init reads the initial location, which triggers the first fetch.
func (m Model) Init() tea.Cmd {
	navigator := m.nav
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return locationMsg{location: navigator.Location()}
	})
}

// Update handles a message and returns the next state.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if tick, ok := message.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	next, cmd := m.update(message)
	next.syncDetail()
	return next, cmd
}

func (m Model) update(message tea.Msg) (Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return m.handleKey(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.help.Width = message.Width
		m.ready = true

	case locationMsg:
		return m.handleLocation(message.location)

	case searchResultMsg:
		if message.more {
			return m.handleMoreResult(message)
		}
		return m.handleSearchResult(message)

	case issueMsg:
		return m.handleIssue(message)

	case refreshMsg:
		return m.handleRefresh(message)

	case sourceMsg:
		if message.seq != m.seq.source {
			return m, nil
		}
		m.source.loading = false
		if message.err != nil {
			m.source.err = message.err
			m.logger.Warn("loading source failed", "issue", message.key, "error", message.err)
			return m, nil
		}
		m.source.lines = message.lines

	case usersMsg:
		if message.seq != m.seq.users || m.popup == nil {
			return m, nil
		}
		if message.err != nil {
			return m.fail("searching users", message.err)
		}
		if m.popup.kind == popupAssign || m.popup.kind == popupAssigneeFilter {
			m.popup.setUsers(message.users)
		}

	case tagsMsg:
		if message.seq != m.seq.tags || m.popup == nil || m.popup.kind != popupTags {
			return m, nil
		}
		if message.err != nil {
			return m.fail("searching tags", message.err)
		}
		m.popup.suggestions = tagSuggestions(message.tags, ParseTags(m.popup.input.Value()))

	case changelogMsg:
		if m.popup == nil || m.popup.kind != popupChangelog || m.popup.issueKey != message.key {
			return m, nil
		}
		m.popup.loading = false
		if message.err != nil {
			return m.fail("loading changelog of "+message.key, message.err)
		}
		m.popup.changelog = message.entries

	case mutationResultMsg:
		return m.handleMutationResult(message)

	case statusFadeMsg:
		if message.id == m.statusID {
			m.status = ""
			m.statusErr = false
		}
	}
	return m, nil
}

// openKey returns the key of the issue open in detail, or "".
func (m Model) openKey() string {
	return filter.Open(m.location)
}

// Location returns the location the browser last handled.
func (m Model) Location() url.Values {
	return filter.WithOpen(m.location, m.openKey())
}

// Selected returns the key of the selected issue, or "".
func (m Model) Selected() string {
	return m.selected
}

// handleLocation reacts to a new location. A different filter replaces the
// whole result; otherwise only the selection follows the open issue.
func (m Model) handleLocation(location url.Values) (Model, tea.Cmd) {
	previous := m.location
	m.location = location
	if m.phase == phaseIdle || !filter.Equal(previous, location) {
		m.filter = filter.Parse(location)
		return m.fetchFirstPage()
	}
	if open := filter.Open(location); open != "" && open != m.selected {
		m.selectKey(open)
	}
	cmd := m.loadOpen()
	return m, cmd
}

// navigate pushes location and handles it. A failure to record the location
// is logged; the location still changes.
func (m Model) navigate(location url.Values) (Model, tea.Cmd) {
	if err := m.nav.Push(location); err != nil {
		m.logger.Warn("recording location failed", "error", err)
	}
	return m.handleLocation(m.nav.Location())
}

// applyPatch changes the filter. The new filter reaches the browser only
// through the navigator, which closes any open issue.
func (m Model) applyPatch(p filter.Patch) (Model, tea.Cmd) {
	return m.navigate(filter.Location(filter.Merge(m.filter, p), ""))
}

func (m Model) back() (Model, tea.Cmd) {
	location, ok := m.nav.Back()
	if !ok {
		return m.setStatus("No earlier location", false)
	}
	return m.handleLocation(location)
}

// fetchFirstPage requests page one of the current filter with facets. It
// supersedes any request for further pages still in flight.
func (m Model) fetchFirstPage() (Model, tea.Cmd) {
	m.seq.page++
	m.seq.more++
	m.phase = phaseLoading
	m.loadingMore = false

	seq := m.seq.page
	params := api.SearchParams(m.filter, 1, PageSize, true)
	client := m.client
	m.logger.Debug("searching issues", "query", params.Encode())
	return m, func() tea.Msg {
		response, err := client.SearchIssues(context.Background(), params)
		return searchResultMsg{seq: seq, response: response, err: err}
	}
}

func (m Model) handleSearchResult(message searchResultMsg) (Model, tea.Cmd) {
	if message.seq != m.seq.page {
		return m, nil
	}
	if message.err != nil {
		m.phase = phaseIdle
		return m.fail("searching issues", message.err)
	}

	response := message.response
	m.store.Receive(response.Issues...)
	keys := make([]string, len(response.Issues))
	for i, issue := range response.Issues {
		keys[i] = issue.Key
	}
	m.issues = keys
	m.facets = filter.ParseFacets(response.Facets)
	paging := response.Paging
	m.paging = &paging
	m.refs = facets.NewRefs(response.Components, response.Users, response.Rules, response.Languages)
	m.phase = phaseLoaded

	m.cursor = 0
	m.selected = ""
	if open := m.openKey(); open != "" && slices.Contains(keys, open) {
		m.selectKey(open)
	} else if len(keys) > 0 {
		m.selected = keys[0]
	}
	m.sidebar.Clamp(len(m.sidebarRows()))

	m.logger.Debug("issues loaded", "count", len(keys), "total", paging.Total)
	cmd := m.loadOpen()
	return m, cmd
}

// loadMore requests the page after the last one loaded. It does nothing
// before a first page arrived, while another page is loading, or once every
// issue is loaded.
func (m Model) loadMore() (Model, tea.Cmd) {
	if m.phase != phaseLoaded || m.loadingMore || m.paging == nil || !m.paging.HasMore(len(m.issues)) {
		return m, nil
	}
	m.seq.more++
	m.loadingMore = true

	seq := m.seq.more
	params := api.SearchParams(m.filter, m.paging.PageIndex+1, PageSize, false)
	client := m.client
	return m, func() tea.Msg {
		response, err := client.SearchIssues(context.Background(), params)
		return searchResultMsg{seq: seq, more: true, response: response, err: err}
	}
}

// handleMoreResult appends a further page. Keys are appended as returned;
// facets are left alone.
func (m Model) handleMoreResult(message searchResultMsg) (Model, tea.Cmd) {
	if message.seq != m.seq.more {
		return m, nil
	}
	m.loadingMore = false
	if message.err != nil {
		return m.fail("loading more issues", message.err)
	}

	response := message.response
	m.store.Receive(response.Issues...)
	for _, issue := range response.Issues {
		m.issues = append(m.issues, issue.Key)
	}
	paging := response.Paging
	m.paging = &paging
	m.refs = m.refs.Merge(facets.NewRefs(response.Components, response.Users, response.Rules, response.Languages))
	if m.selected == "" && len(m.issues) > 0 {
		m.selectKey(m.issues[0])
	}
	return m, nil
}

// selectKey selects key, keeping the cursor where it is if it already
// points at that key.
func (m *Model) selectKey(key string) {
	m.selected = key
	if m.cursor < len(m.issues) && m.issues[m.cursor] == key {
		return
	}
	if i := slices.Index(m.issues, key); i >= 0 {
		m.cursor = i
	}
}

// step moves the selection by delta. With an issue open the move goes
// through the navigator so the open issue follows. An open issue that is
// not in the list has no neighbours to move to.
func (m Model) step(delta int) (Model, tea.Cmd) {
	if len(m.issues) == 0 {
		return m, nil
	}
	if open := m.openKey(); open != "" && !slices.Contains(m.issues, open) {
		return m, nil
	}
	next := m.cursor + delta
	if m.selected == "" {
		next = 0
	}
	next = min(max(next, 0), len(m.issues)-1)
	if open := m.openKey(); open != "" {
		if next == m.cursor && m.issues[next] == open {
			return m, nil
		}
		m.cursor = next
		return m.navigate(filter.WithOpen(m.location, m.issues[next]))
	}
	m.cursor = next
	m.selected = m.issues[next]
	return m, nil
}

// loadOpen fetches whatever the open issue still lacks: the issue itself
// when it is not in the store, then its source.
func (m *Model) loadOpen() tea.Cmd {
	key := m.openKey()
	if key == "" {
		return nil
	}
	issue, ok := m.store.Get(key)
	if !ok {
		if m.pendingIssue == key {
			return nil
		}
		m.seq.issue++
		m.pendingIssue = key
		seq := m.seq.issue
		client := m.client
		return func() tea.Msg {
			issue, err := client.GetIssue(context.Background(), key)
			return issueMsg{seq: seq, key: key, issue: issue, err: err}
		}
	}
	if m.source.key == key {
		return nil
	}
	return m.loadSource(issue)
}

func (m Model) handleIssue(message issueMsg) (Model, tea.Cmd) {
	if message.seq != m.seq.issue {
		return m, nil
	}
	m.pendingIssue = ""
	if message.err != nil {
		return m.fail("loading issue "+message.key, message.err)
	}
	m.store.Receive(message.issue)
	cmd := m.loadOpen()
	return m, cmd
}

// loadSource fetches the lines around the issue.
func (m *Model) loadSource(issue *model.Issue) tea.Cmd {
	m.seq.source++
	m.source = sourceState{key: issue.Key, loading: true}

	seq := m.seq.source
	from, to := render.SourceWindow(issue.Line)
	client := m.client
	key, component := issue.Key, issue.Component
	return func() tea.Msg {
		lines, err := client.SourceLines(context.Background(), component, from, to)
		return sourceMsg{seq: seq, key: key, lines: lines, err: err}
	}
}

// setStatus shows text in the footer until it fades.
func (m Model) setStatus(text string, isErr bool) (Model, tea.Cmd) {
	m.statusID++
	m.status = text
	m.statusErr = isErr
	id := m.statusID
	return m, tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
		return statusFadeMsg{id: id}
	})
}

// fail is the shared failure handler: the error is logged and shown in the
// status line. Nothing is retried.
func (m Model) fail(action string, err error) (Model, tea.Cmd) {
	m.logger.Error("request failed", "action", action, "error", err)
	return m.setStatus(fmt.Sprintf("%s: %v", action, err), true)
}

func (m Model) handleKey(message tea.KeyMsg) (Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.focus {
	case FocusPopup:
		return m.handlePopupKeys(message)
	case FocusSidebar:
		return m.handleSidebarKeys(message)
	}
	return m.handleListKeys(message)
}

func (m Model) handleListKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	keys := m.keys
	open := m.openKey()

	switch {
	case key.Matches(message, keys.Quit):
		return m, tea.Quit

	case key.Matches(message, keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(message, keys.Up), open != "" && key.Matches(message, keys.Prev):
		return m.step(-1)

	case key.Matches(message, keys.Down), open != "" && key.Matches(message, keys.Next):
		return m.step(1)

	case key.Matches(message, keys.Open):
		if m.selected != "" && m.selected != open {
			return m.navigate(filter.WithOpen(m.location, m.selected))
		}

	case key.Matches(message, keys.Close):
		if open != "" {
			return m.navigate(filter.WithOpen(m.location, ""))
		}

	case key.Matches(message, keys.PageUp):
		m.detail.HalfViewUp()

	case key.Matches(message, keys.PageDown):
		m.detail.HalfViewDown()

	case key.Matches(message, keys.More):
		return m.loadMore()

	case key.Matches(message, keys.Reload):
		return m.fetchFirstPage()

	case key.Matches(message, keys.Back):
		return m.back()

	case key.Matches(message, keys.FocusToggle):
		m.focus = FocusSidebar
		m.sidebar.Clamp(len(m.sidebarRows()))

	default:
		return m.handleActionKeys(message)
	}
	return m, nil
}

func (m Model) handleSidebarKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	keys := m.keys
	rows := m.sidebarRows()

	switch {
	case key.Matches(message, keys.Quit):
		return m, tea.Quit

	case key.Matches(message, keys.FocusToggle), key.Matches(message, keys.CloseSidebar):
		m.focus = FocusList

	case key.Matches(message, keys.Up):
		m.sidebar.Move(-1, len(rows))

	case key.Matches(message, keys.Down):
		m.sidebar.Move(1, len(rows))

	case key.Matches(message, keys.Activate):
		patch, toggle := m.sidebar.Activate(m.filter, rows)
		if toggle != "" {
			m.openFacets = facets.Toggle(m.openFacets, toggle)
			m.sidebar.Clamp(len(m.sidebarRows()))
			return m, nil
		}
		if !patch.IsEmpty() {
			return m.applyPatch(patch)
		}

	case key.Matches(message, keys.ClearFacet):
		if row, ok := m.sidebar.Current(rows); ok && row.Widget.HasValue(m.filter) {
			return m.applyPatch(row.Widget.Clear())
		}

	case key.Matches(message, keys.SearchFacet):
		if row, ok := m.sidebar.Current(rows); ok && row.Widget.Property == filter.PropAssignees {
			p := newInputPopup(popupAssigneeFilter, "", "", "Search users")
			p.setUsers(nil)
			m.openPopup(p)
			cmd := m.searchUsers("")
			return m, cmd
		}

	case key.Matches(message, keys.PickAfter), key.Matches(message, keys.PickBefore):
		row, ok := m.sidebar.Current(rows)
		if !ok || row.Widget.Kind != facets.KindDate {
			return m, nil
		}
		kind, value := popupDateAfter, m.filter.CreatedAfter
		if key.Matches(message, keys.PickBefore) {
			kind, value = popupDateBefore, m.filter.CreatedBefore
		}
		if len(value) > len("2006-01-02") {
			value = value[:len("2006-01-02")]
		}
		m.openPopup(newInputPopup(kind, "", value, "YYYY-MM-DD, empty to clear"))
	}
	return m, nil
}

// sidebarRows lists the rows of the facet sidebar for the current state.
func (m Model) sidebarRows() []facets.Row {
	return m.sidebar.Rows(m.filter, m.facets, m.refs, m.openFacets)
}

// targetIssue returns the issue actions apply to: the open issue, else the
// selected one.
func (m Model) targetIssue() (*model.Issue, bool) {
	key := m.openKey()
	if key == "" {
		key = m.selected
	}
	if key == "" {
		return nil, false
	}
	return m.store.Get(key)
}

func (m *Model) openPopup(p *popup) {
	if m.focus != FocusPopup {
		m.popupReturn = m.focus
	}
	m.popup = p
	m.focus = FocusPopup
}

func (m *Model) closePopup() {
	m.popup = nil
	m.focus = m.popupReturn
}
