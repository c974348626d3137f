package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ALT-F4-LLC/lintdeck/internal/api"
	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
	"github.com/ALT-F4-LLC/lintdeck/internal/nav"
	"github.com/ALT-F4-LLC/lintdeck/internal/store"
)

// fakeClient serves canned responses and records every call.
type fakeClient struct {
	mu sync.Mutex

	search    func(params url.Values) (*api.SearchResponse, error)
	searches  []url.Values
	calls     []string
	mutateErr error
	failing   map[string]error
	canonical map[string]*model.Issue
	users     []model.User
	tags      []string
	lines     []api.SourceLine
	changelog []model.ChangelogEntry
}

func (f *fakeClient) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeClient) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.calls, call)
}

func (f *fakeClient) result(call, key string) (*model.Issue, error) {
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	if err := f.failing[call]; err != nil {
		return nil, err
	}
	if issue, ok := f.canonical[key]; ok {
		return issue.Clone(), nil
	}
	return testIssue(key, "main.go"), nil
}

func (f *fakeClient) SearchIssues(_ context.Context, params url.Values) (*api.SearchResponse, error) {
	f.mu.Lock()
	f.searches = append(f.searches, params)
	search := f.search
	f.mu.Unlock()
	return search(params)
}

func (f *fakeClient) GetIssue(_ context.Context, key string) (*model.Issue, error) {
	f.record("get %s", key)
	if issue, ok := f.canonical[key]; ok {
		return issue.Clone(), nil
	}
	return nil, &api.APIError{Status: 404, Messages: []string{"not found"}}
}

func (f *fakeClient) Changelog(_ context.Context, key string) ([]model.ChangelogEntry, error) {
	f.record("changelog %s", key)
	return f.changelog, nil
}

func (f *fakeClient) SetType(_ context.Context, key string, t model.IssueType) (*model.Issue, error) {
	f.record("set_type %s %s", key, t)
	return f.result("set_type", key)
}

func (f *fakeClient) SetSeverity(_ context.Context, key string, s model.Severity) (*model.Issue, error) {
	f.record("set_severity %s %s", key, s)
	return f.result("set_severity", key)
}

func (f *fakeClient) DoTransition(_ context.Context, key, transition string) (*model.Issue, error) {
	f.record("do_transition %s %s", key, transition)
	return f.result("do_transition", key)
}

func (f *fakeClient) Assign(_ context.Context, key, login string) (*model.Issue, error) {
	f.record("assign %s %s", key, login)
	return f.result("assign", key)
}

func (f *fakeClient) AssignToMe(_ context.Context, key string) (*model.Issue, error) {
	f.record("assign_to_me %s", key)
	return f.result("assign_to_me", key)
}

func (f *fakeClient) SetTags(_ context.Context, key string, tags []string) (*model.Issue, error) {
	f.record("set_tags %s %s", key, strings.Join(tags, ","))
	return f.result("set_tags", key)
}

func (f *fakeClient) AddComment(_ context.Context, key, text string) (*model.Issue, error) {
	f.record("add_comment %s %s", key, text)
	return f.result("add_comment", key)
}

func (f *fakeClient) SearchUsers(_ context.Context, query string, pageSize int) ([]model.User, error) {
	f.record("users %q %d", query, pageSize)
	return f.users, nil
}

func (f *fakeClient) SearchTags(_ context.Context, query string, _ int) ([]string, error) {
	f.record("tags %q", query)
	return f.tags, nil
}

func (f *fakeClient) SourceLines(_ context.Context, componentKey string, from, to int) ([]api.SourceLine, error) {
	f.record("source %s %d-%d", componentKey, from, to)
	return f.lines, nil
}

func testIssue(key, component string) *model.Issue {
	return &model.Issue{
		Key:           key,
		Component:     "proj:" + component,
		ComponentPath: component,
		Project:       "proj",
		Message:       "message of " + key,
		Rule:          "go:S100",
		Type:          model.TypeBug,
		Severity:      model.SeverityMajor,
		Status:        model.StatusOpen,
		Line:          12,
		Tags:          []string{"naming"},
		Transitions:   []string{model.TransitionConfirm, model.TransitionResolve, model.TransitionFalsePositive},
		Actions: []string{
			model.ActionSetType, model.ActionSetSeverity, model.ActionAssign,
			model.ActionAssignToMe, model.ActionSetTags, model.ActionComment,
		},
	}
}

func page(index, total int, issues ...*model.Issue) *api.SearchResponse {
	return &api.SearchResponse{
		Paging: model.Paging{PageIndex: index, PageSize: PageSize, Total: total},
		Issues: issues,
		Facets: []filter.RawFacet{
			{Property: "types", Values: []filter.FacetValue{{Val: "BUG", Count: total}}},
			{Property: "severities", Values: []filter.FacetValue{{Val: "MAJOR", Count: total}}},
			{Property: "assignees", Values: []filter.FacetValue{{Val: "alice", Count: 1}}},
		},
	}
}

// staticSearch answers every search with resp.
func staticSearch(resp *api.SearchResponse) func(url.Values) (*api.SearchResponse, error) {
	return func(url.Values) (*api.SearchResponse, error) { return resp, nil }
}

type testEnv struct {
	client  *fakeClient
	history *nav.History
	issues  *store.Store
}

func newTestModel(t *testing.T, client *fakeClient, query string) (Model, testEnv) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	location, err := url.ParseQuery(query)
	if err != nil {
		t.Fatalf("ParseQuery(%q): %v", query, err)
	}
	env := testEnv{client: client, history: nav.NewHistory(location), issues: store.New()}
	m := NewModel(client, env.history, env.issues)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, env
}

func send(t *testing.T, m Model, message tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(message)
	return next.(Model), cmd
}

// run executes a request command and feeds its result back.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return send(t, m, cmd())
}

// load handles the navigator's current location and its first page.
func load(t *testing.T, m Model, env testEnv) (Model, tea.Cmd) {
	t.Helper()
	m, cmd := send(t, m, locationMsg{location: env.history.Location()})
	if m.phase != phaseLoading {
		t.Fatalf("phase after location = %v, want loading", m.phase)
	}
	return run(t, m, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFirstLoadSelectsFirstIssue(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 3,
		testIssue("A", "a.go"), testIssue("B", "a.go"), testIssue("C", "b.go")))}
	m, env := newTestModel(t, client, "resolved=false")

	m, cmd := load(t, m, env)
	if cmd != nil {
		t.Error("no open issue, yet a follow-up command was returned")
	}
	if m.phase != phaseLoaded {
		t.Errorf("phase = %v, want loaded", m.phase)
	}
	if !slices.Equal(m.issues, []string{"A", "B", "C"}) {
		t.Errorf("issues = %v", m.issues)
	}
	if m.Selected() != "A" {
		t.Errorf("Selected() = %q, want A", m.Selected())
	}
	if m.facets["types"]["BUG"] != 3 {
		t.Errorf("facets = %v", m.facets)
	}
	if env.issues.Len() != 3 {
		t.Errorf("store holds %d issues, want 3", env.issues.Len())
	}

	params := client.searches[0]
	for name, want := range map[string]string{
		"p":                "1",
		"ps":               "25",
		"resolved":         "false",
		"additionalFields": "_all",
		"facets":           strings.Join(api.FacetNames, ","),
	} {
		if got := params.Get(name); got != want {
			t.Errorf("search param %s = %q, want %q", name, got, want)
		}
	}
}

func TestOpenIssueFromLocation(t *testing.T) {
	client := &fakeClient{
		search: staticSearch(page(1, 2, testIssue("A", "a.go"), testIssue("B", "b.go"))),
		lines:  []api.SourceLine{{Line: 12, Code: "func flagged() {}"}},
	}
	m, env := newTestModel(t, client, "open=B")

	m, cmd := load(t, m, env)
	if m.Selected() != "B" || m.cursor != 1 {
		t.Errorf("selection = %q at %d, want B at 1", m.Selected(), m.cursor)
	}

	m, _ = run(t, m, cmd)
	if !client.called("source proj:b.go 2-22") {
		t.Errorf("source not requested around line 12: %v", client.calls)
	}
	view := m.View()
	for _, want := range []string{"func flagged() {}", "proj › b.go", "message of B"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestOpenIssueMissingFromResultIsFetched(t *testing.T) {
	client := &fakeClient{
		search:    staticSearch(page(1, 1, testIssue("A", "a.go"))),
		canonical: map[string]*model.Issue{"Z": testIssue("Z", "z.go")},
	}
	m, env := newTestModel(t, client, "open=Z")

	m, cmd := load(t, m, env)
	if m.Selected() != "A" {
		t.Errorf("Selected() = %q, want first issue A", m.Selected())
	}
	m, cmd = run(t, m, cmd)
	if !client.called("get Z") {
		t.Fatalf("open issue not fetched: %v", client.calls)
	}
	if _, ok := env.issues.Get("Z"); !ok {
		t.Error("fetched issue not stored")
	}
	run(t, m, cmd)
	if !client.called("source proj:z.go 2-22") {
		t.Errorf("source of fetched issue not requested: %v", client.calls)
	}
}

func TestEmptyResultLeavesSelectionUnset(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 0))}
	m, env := newTestModel(t, client, "open=X")

	m, cmd := load(t, m, env)
	if m.Selected() != "" {
		t.Errorf("Selected() = %q, want none", m.Selected())
	}
	m, _ = run(t, m, cmd)
	if !client.called("get X") {
		t.Errorf("open issue not fetched: %v", client.calls)
	}
	if !strings.HasPrefix(m.status, "loading issue X") {
		t.Errorf("status = %q, want the failed fetch reported", m.status)
	}
	if view := m.View(); strings.Contains(view, " / 0") {
		t.Errorf("counter shown without a selection:\n%s", view)
	}

	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Selected() != "" {
		t.Errorf("Selected() = %q after moving in an empty list", m.Selected())
	}
	if view := m.View(); !strings.Contains(view, "No issues.") {
		t.Errorf("view missing the empty state:\n%s", view)
	}
}

func TestStepIgnoredWhileOpenIssueOutsideList(t *testing.T) {
	client := &fakeClient{
		search:    staticSearch(page(1, 2, testIssue("A", "a.go"), testIssue("B", "b.go"))),
		canonical: map[string]*model.Issue{"Z": testIssue("Z", "z.go")},
	}
	m, env := newTestModel(t, client, "open=Z")
	m, cmd := load(t, m, env)
	m, _ = run(t, m, cmd)
	depth := env.history.Depth()

	for _, k := range []string{"j", "k", "n", "p"} {
		m, _ = send(t, m, runes(k))
		if got := env.history.Location().Get("open"); got != "Z" {
			t.Fatalf("after %s: open = %q, want Z", k, got)
		}
	}
	if env.history.Depth() != depth {
		t.Errorf("locations pushed: depth %d, want %d", env.history.Depth(), depth)
	}
}

func TestStaleFirstPageDropped(t *testing.T) {
	calls := 0
	client := &fakeClient{search: func(url.Values) (*api.SearchResponse, error) {
		calls++
		if calls == 1 {
			return page(1, 1, testIssue("OLD", "a.go")), nil
		}
		return page(1, 1, testIssue("NEW", "a.go")), nil
	}}
	m, env := newTestModel(t, client, "")

	m, first := send(t, m, locationMsg{location: env.history.Location()})
	m, second := send(t, m, runes("r"))
	stale := first()
	fresh := second()

	m, _ = send(t, m, fresh)
	m, _ = send(t, m, stale)
	if !slices.Equal(m.issues, []string{"NEW"}) {
		t.Errorf("issues = %v, want the latest response only", m.issues)
	}
}

func TestFirstPageSupersedesLoadMore(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 30, testIssue("A", "a.go"), testIssue("B", "a.go")))}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, more := send(t, m, runes("M"))
	if more == nil || !m.loadingMore {
		t.Fatal("load more did not start")
	}
	m, reload := send(t, m, runes("r"))
	if reload == nil {
		t.Fatal("reload returned no command")
	}
	if m.loadingMore {
		t.Error("loadingMore still set after a first-page request")
	}

	m, _ = run(t, m, more)
	if len(m.issues) != 2 {
		t.Errorf("superseded page was appended: %v", m.issues)
	}
	params := client.searches[1]
	if params.Get("p") != "2" || params.Has("facets") {
		t.Errorf("load more params = %v", params)
	}
}

func TestLoadMoreAppendsWithoutDeduplication(t *testing.T) {
	client := &fakeClient{search: func(params url.Values) (*api.SearchResponse, error) {
		if params.Get("p") == "2" {
			resp := page(2, 3, testIssue("B", "a.go"), testIssue("C", "b.go"))
			resp.Facets = []filter.RawFacet{{Property: "tags", Values: []filter.FacetValue{{Val: "x", Count: 1}}}}
			return resp, nil
		}
		return page(1, 3, testIssue("A", "a.go"), testIssue("B", "a.go")), nil
	}}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, cmd := send(t, m, runes("M"))
	m, _ = run(t, m, cmd)

	if !slices.Equal(m.issues, []string{"A", "B", "B", "C"}) {
		t.Errorf("issues = %v", m.issues)
	}
	if m.paging.PageIndex != 2 {
		t.Errorf("paging = %+v, want page 2", m.paging)
	}
	if _, ok := m.facets["tags"]; ok {
		t.Error("load more replaced the facets")
	}
	if m.Selected() != "A" {
		t.Errorf("selection moved to %q", m.Selected())
	}

	// Four loaded against a total of three: nothing more to load.
	if _, cmd := send(t, m, runes("M")); cmd != nil {
		t.Error("load more issued a request with every issue loaded")
	}
}

func TestSameFilterLocationOnlyMovesSelection(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 3,
		testIssue("A", "a.go"), testIssue("B", "a.go"), testIssue("C", "b.go")))}
	m, env := newTestModel(t, client, "types=BUG")
	m, _ = load(t, m, env)

	if err := env.history.Push(url.Values{"types": {"BUG"}, "open": {"C"}}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	m, cmd := send(t, m, locationMsg{location: env.history.Location()})
	if len(client.searches) != 1 {
		t.Errorf("same filter re-fetched: %d searches", len(client.searches))
	}
	if m.Selected() != "C" {
		t.Errorf("Selected() = %q, want C", m.Selected())
	}
	if cmd == nil {
		t.Error("opening an issue did not request its source")
	}
}

func TestKeyboardNavigation(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 3,
		testIssue("A", "a.go"), testIssue("B", "a.go"), testIssue("C", "b.go")))}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, _ = send(t, m, runes("j"))
	if m.Selected() != "B" {
		t.Errorf("after j: %q, want B", m.Selected())
	}
	m, _ = send(t, m, runes("k"))
	m, _ = send(t, m, runes("k"))
	if m.Selected() != "A" {
		t.Errorf("after k k: %q, want A", m.Selected())
	}
	if env.history.Depth() != 1 {
		t.Errorf("list movement pushed locations: depth %d", env.history.Depth())
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := env.history.Location().Get("open"); got != "A" {
		t.Fatalf("open after right = %q, want A", got)
	}

	m, _ = send(t, m, runes("j"))
	if got := env.history.Location().Get("open"); got != "B" || m.Selected() != "B" {
		t.Errorf("down while open: open=%q selected=%q, want B", got, m.Selected())
	}
	m, _ = send(t, m, runes("n"))
	if got := env.history.Location().Get("open"); got != "C" {
		t.Errorf("next: open=%q, want C", got)
	}
	m, _ = send(t, m, runes("p"))
	if got := env.history.Location().Get("open"); got != "B" {
		t.Errorf("previous: open=%q, want B", got)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if env.history.Location().Has("open") {
		t.Error("left did not close the issue")
	}
	if m.Selected() != "B" {
		t.Errorf("closing moved the selection to %q", m.Selected())
	}
	if len(client.searches) != 1 {
		t.Errorf("navigation within the result fetched again: %d searches", len(client.searches))
	}

	m, _ = send(t, m, runes("b"))
	if got := m.Location().Get("open"); got != "B" {
		t.Errorf("back: open=%q, want B", got)
	}
}

func TestFacetToggleDoesNotFetch(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 1, testIssue("A", "a.go")))}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FocusSidebar {
		t.Fatalf("focus = %v, want sidebar", m.focus)
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd != nil {
		t.Error("toggling a panel returned a command")
	}
	if m.openFacets[filter.PropTypes] {
		t.Error("types panel still open")
	}
	if len(client.searches) != 1 {
		t.Errorf("toggle fetched: %d searches", len(client.searches))
	}
}

func TestFacetClickPushesFilter(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 1, testIssue("A", "a.go")))}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(t, m, runes("j")) // BUG item under the types header
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := env.history.Location().Get("types"); got != "BUG" {
		t.Errorf("location types = %q, want BUG", got)
	}
	if m.phase != phaseLoading {
		t.Errorf("phase = %v, want loading", m.phase)
	}
	m, _ = run(t, m, cmd)
	if got := client.searches[1].Get("types"); got != "BUG" {
		t.Errorf("search types = %q, want BUG", got)
	}
	if !m.filter.Equal(filter.Merge(filter.Default(), filter.Set(filter.PropTypes, []string{"BUG"}))) {
		t.Errorf("filter = %+v", m.filter)
	}
}

func TestAssigneeFacetSearch(t *testing.T) {
	client := &fakeClient{
		search: staticSearch(page(1, 1, testIssue("A", "a.go"))),
		users:  []model.User{{Login: "alice", Name: "Alice Liddell"}, {Login: "bob", Name: "Bob Builder"}},
	}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	// Rows: types header, three types, severities header, assignees header.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	for range 5 {
		m, _ = send(t, m, runes("j"))
	}
	m, cmd := send(t, m, runes("/"))
	if m.popup == nil || m.popup.kind != popupAssigneeFilter {
		t.Fatal("assignee search did not open")
	}
	m, _ = run(t, m, cmd)
	m, _ = send(t, m, runes("ali"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := env.history.Location().Get("assignees"); got != "alice" {
		t.Errorf("location assignees = %q, want alice", got)
	}
	if m.focus != FocusSidebar {
		t.Errorf("focus = %v, want sidebar after the popup", m.focus)
	}
}

func TestOptimisticTypeChange(t *testing.T) {
	canonical := testIssue("A", "a.go")
	canonical.Type = model.TypeVulnerability
	canonical.Message = "canonical"
	client := &fakeClient{
		search:    staticSearch(page(1, 1, testIssue("A", "a.go"))),
		canonical: map[string]*model.Issue{"A": canonical},
	}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, _ = send(t, m, runes("y"))
	if m.popup == nil || m.popup.kind != popupType {
		t.Fatal("type popup did not open")
	}
	m, _ = send(t, m, runes("j"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.popup != nil || m.focus != FocusList {
		t.Error("popup still active after selection")
	}

	issue, _ := env.issues.Get("A")
	if issue.Type != model.TypeVulnerability {
		t.Errorf("type before response = %s, want the new value applied", issue.Type)
	}

	m, _ = run(t, m, cmd)
	if !client.called("set_type A VULNERABILITY") {
		t.Errorf("calls = %v", client.calls)
	}
	issue, _ = env.issues.Get("A")
	if issue.Message != "canonical" {
		t.Error("server issue not kept after success")
	}
}

func TestOptimisticChangeRestoredOnFailure(t *testing.T) {
	client := &fakeClient{
		search:    staticSearch(page(1, 1, testIssue("A", "a.go"))),
		mutateErr: &api.APIError{Status: 403, Messages: []string{"forbidden"}},
	}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, _ = send(t, m, runes("i"))
	m, _ = send(t, m, runes("k")) // MAJOR -> CRITICAL
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	issue, _ := env.issues.Get("A")
	if issue.Severity != model.SeverityCritical {
		t.Fatalf("severity before response = %s, want CRITICAL", issue.Severity)
	}

	m, _ = run(t, m, cmd)
	issue, _ = env.issues.Get("A")
	if issue.Severity != model.SeverityMajor {
		t.Errorf("severity after failure = %s, want MAJOR restored", issue.Severity)
	}
	if !m.statusErr || !strings.Contains(m.status, "forbidden") {
		t.Errorf("status = %q (error %v), want the failure reported", m.status, m.statusErr)
	}
}

// refreshCmd returns the re-fetch batched after a rejected change.
func refreshCmd(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) == 0 {
		t.Fatal("expected a batch holding the issue re-fetch")
	}
	return batch[len(batch)-1]
}

func TestRejectedChangeKeepsConfirmedChange(t *testing.T) {
	canonical := testIssue("A", "a.go")
	canonical.Type = model.TypeVulnerability
	client := &fakeClient{
		search:    staticSearch(page(1, 1, testIssue("A", "a.go"))),
		canonical: map[string]*model.Issue{"A": canonical},
		failing:   map[string]error{"set_severity": &api.APIError{Status: 403, Messages: []string{"forbidden"}}},
	}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, _ = send(t, m, runes("i"))
	m, _ = send(t, m, runes("k")) // MAJOR -> CRITICAL
	m, severityCmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = send(t, m, runes("y"))
	m, _ = send(t, m, runes("j")) // BUG -> VULNERABILITY
	m, typeCmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = run(t, m, typeCmd)
	issue, _ := env.issues.Get("A")
	if issue.Type != model.TypeVulnerability {
		t.Fatalf("type after success = %s, want VULNERABILITY", issue.Type)
	}

	m, cmd := run(t, m, severityCmd)
	issue, _ = env.issues.Get("A")
	if issue.Type != model.TypeVulnerability {
		t.Errorf("type after the severity failure = %s, want the confirmed VULNERABILITY", issue.Type)
	}
	if !m.statusErr || !strings.Contains(m.status, "forbidden") {
		t.Errorf("status = %q (error %v), want the failure reported", m.status, m.statusErr)
	}

	m, _ = run(t, m, refreshCmd(t, cmd))
	if !client.called("get A") {
		t.Fatalf("issue not fetched again: %v", client.calls)
	}
	issue, _ = env.issues.Get("A")
	if issue.Type != model.TypeVulnerability || issue.Severity != model.SeverityMajor {
		t.Errorf("after refresh: type=%s severity=%s, want VULNERABILITY MAJOR", issue.Type, issue.Severity)
	}
}

func TestRejectedChangeAfterReloadKeepsFreshIssue(t *testing.T) {
	calls := 0
	fresh := testIssue("A", "a.go")
	fresh.Message = "reloaded"
	client := &fakeClient{
		search: func(url.Values) (*api.SearchResponse, error) {
			calls++
			if calls == 1 {
				return page(1, 1, testIssue("A", "a.go")), nil
			}
			return page(1, 1, fresh.Clone()), nil
		},
		canonical: map[string]*model.Issue{"A": fresh},
		failing:   map[string]error{"set_severity": errors.New("connection reset")},
	}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, _ = send(t, m, runes("i"))
	m, _ = send(t, m, runes("k"))
	m, severityCmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, reloadCmd := send(t, m, runes("r"))
	m, _ = run(t, m, reloadCmd)

	m, _ = run(t, m, severityCmd)
	issue, _ := env.issues.Get("A")
	if issue.Message != "reloaded" {
		t.Errorf("message = %q, want the reloaded issue kept", issue.Message)
	}
	if issue.Severity != model.SeverityMajor {
		t.Errorf("severity = %s, want MAJOR from the reload", issue.Severity)
	}
}

func TestFalsePositiveTransitionPromptsComment(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 1, testIssue("A", "a.go")))}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, _ = send(t, m, runes("f"))
	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, runes("j"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	issue, _ := env.issues.Get("A")
	if issue.Status != model.StatusResolved || issue.Resolution != model.ResolutionFalsePositive {
		t.Errorf("optimistic outcome = %s/%s", issue.Status, issue.Resolution)
	}

	m, _ = run(t, m, cmd)
	if !client.called("do_transition A falsepositive") {
		t.Fatalf("calls = %v", client.calls)
	}
	if m.popup == nil || m.popup.kind != popupComment {
		t.Fatal("no comment prompt after a false-positive transition")
	}

	m, _ = send(t, m, runes("generated code"))
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	m, _ = run(t, m, cmd)
	if !client.called("add_comment A generated code") {
		t.Errorf("calls = %v", client.calls)
	}
}

func TestActionNotPermitted(t *testing.T) {
	readOnly := testIssue("A", "a.go")
	readOnly.Actions = nil
	client := &fakeClient{search: staticSearch(page(1, 1, readOnly))}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, _ = send(t, m, runes("y"))
	if m.popup != nil {
		t.Error("popup opened for a forbidden action")
	}
	if !strings.Contains(m.status, "not permitted") {
		t.Errorf("status = %q", m.status)
	}
}

func TestAssignPopupRanksUsers(t *testing.T) {
	client := &fakeClient{
		search: staticSearch(page(1, 1, testIssue("A", "a.go"))),
		users:  []model.User{{Login: "alice", Name: "Alice Liddell"}, {Login: "bob", Name: "Bob Builder"}},
	}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, cmd := send(t, m, runes("a"))
	m, _ = run(t, m, cmd)
	if !client.called(`users "" 50`) {
		t.Errorf("calls = %v", client.calls)
	}
	if n := len(m.popup.menu.Options); n != 4 {
		t.Errorf("menu has %d options, want me, unassigned and two users", n)
	}

	m, _ = send(t, m, runes("bob"))
	selected, ok := m.popup.menu.Selected()
	if !ok || selected.Value != "bob" {
		t.Fatalf("selected = %+v, want bob", selected)
	}
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	issue, _ := env.issues.Get("A")
	if issue.Assignee != "bob" || issue.AssigneeName != "Bob Builder" {
		t.Errorf("optimistic assignee = %q (%q)", issue.Assignee, issue.AssigneeName)
	}
	m, _ = run(t, m, cmd)
	if !client.called("assign A bob") {
		t.Errorf("calls = %v", client.calls)
	}
}

func TestAssignToMe(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 1, testIssue("A", "a.go")))}
	m, env := newTestModel(t, client, "")
	m = NewModel(client, env.history, env.issues, WithLogin("me"))
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = load(t, m, env)

	m, cmd := send(t, m, runes("m"))
	issue, _ := env.issues.Get("A")
	if issue.Assignee != "me" {
		t.Errorf("optimistic assignee = %q, want me", issue.Assignee)
	}
	m, _ = run(t, m, cmd)
	if !client.called("assign_to_me A") {
		t.Errorf("calls = %v", client.calls)
	}
}

func TestTagsPopupSuggestsAndCompletes(t *testing.T) {
	client := &fakeClient{
		search: staticSearch(page(1, 1, testIssue("A", "a.go"))),
		tags:   []string{"naming", "security", "cwe"},
	}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, cmd := send(t, m, runes("t"))
	m, _ = run(t, m, cmd)
	if !slices.Equal(m.popup.suggestions, []string{"security", "cwe"}) {
		t.Errorf("suggestions = %v", m.popup.suggestions)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.popup.input.Value(); got != "naming, security, " {
		t.Errorf("input after completion = %q", got)
	}
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	issue, _ := env.issues.Get("A")
	if !slices.Equal(issue.Tags, []string{"naming", "security"}) {
		t.Errorf("optimistic tags = %v", issue.Tags)
	}
	m, _ = run(t, m, cmd)
	if !client.called("set_tags A naming,security") {
		t.Errorf("calls = %v", client.calls)
	}
}

func TestChangelogPopup(t *testing.T) {
	client := &fakeClient{
		search: staticSearch(page(1, 1, testIssue("A", "a.go"))),
		changelog: []model.ChangelogEntry{{
			User:  "alice",
			Diffs: []model.Diff{{Key: "severity", OldValue: "MAJOR", NewValue: "BLOCKER"}},
		}},
	}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m, cmd := send(t, m, runes("l"))
	if m.popup == nil || !m.popup.loading {
		t.Fatal("changelog popup not loading")
	}
	m, _ = run(t, m, cmd)
	if m.popup.loading || len(m.popup.changelog) != 1 {
		t.Errorf("changelog popup = loading %v, %d entries", m.popup.loading, len(m.popup.changelog))
	}
	if !strings.Contains(m.View(), "BLOCKER") {
		t.Error("changelog not rendered")
	}
	m, _ = send(t, m, runes("q"))
	if m.popup != nil {
		t.Error("q did not dismiss the changelog")
	}
}

func TestFirstPageFailure(t *testing.T) {
	client := &fakeClient{search: func(url.Values) (*api.SearchResponse, error) {
		return nil, errors.New("connection refused")
	}}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	if m.phase != phaseIdle {
		t.Errorf("phase = %v, want idle after failure", m.phase)
	}
	if !strings.Contains(m.status, "connection refused") {
		t.Errorf("status = %q", m.status)
	}
	if _, cmd := send(t, m, locationMsg{location: env.history.Location()}); cmd == nil {
		t.Error("next location did not fetch again")
	}
}

func TestInvalidDateRejected(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 1, testIssue("A", "a.go")))}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)

	m.openPopup(newInputPopup(popupDateAfter, "", "", ""))
	m, _ = send(t, m, runes("yesterday"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.status, "invalid date") {
		t.Errorf("status = %q", m.status)
	}
	if env.history.Depth() != 1 {
		t.Error("invalid date changed the location")
	}

	m.openPopup(newInputPopup(popupDateAfter, "", "", ""))
	m, _ = send(t, m, runes("2024-03-01"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := env.history.Location().Get("createdAfter"); got != "2024-03-01" {
		t.Errorf("createdAfter = %q", got)
	}
}

func TestViewShowsCounterAndFooter(t *testing.T) {
	client := &fakeClient{search: staticSearch(page(1, 30, testIssue("A", "a.go"), testIssue("B", "b.go")))}
	m, env := newTestModel(t, client, "")
	m, _ = load(t, m, env)
	m, _ = send(t, m, runes("j"))

	view := m.View()
	for _, want := range []string{"2 / 30", "2 of 30 shown", "message of A", "a.go", "Type"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" Security, cwe  cwe,,naming ")
	if !slices.Equal(got, []string{"security", "cwe", "naming"}) {
		t.Errorf("ParseTags = %v", got)
	}
	if got := ParseTags(""); len(got) != 0 {
		t.Errorf("ParseTags(\"\") = %v", got)
	}
}
