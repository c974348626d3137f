package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ALT-F4-LLC/lintdeck/internal/facets"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

// mutation performs one server-side change and returns the canonical issue.
type mutation func(ctx context.Context, client Client) (*model.Issue, error)

// handleActionKeys opens the popup of an issue action, or runs the action
// directly when it needs no input.
func (m Model) handleActionKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	keys := m.keys
	issue, ok := m.targetIssue()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(message, keys.Type):
		if !issue.Can(model.ActionSetType) {
			return m.notPermitted("changing the type", issue.Key)
		}
		m.openPopup(newMenuPopup(popupType, issue.Key, TypeOptions(), string(issue.Type)))

	case key.Matches(message, keys.Severity):
		if !issue.Can(model.ActionSetSeverity) {
			return m.notPermitted("changing the severity", issue.Key)
		}
		m.openPopup(newMenuPopup(popupSeverity, issue.Key, SeverityOptions(), string(issue.Severity)))

	case key.Matches(message, keys.Transition):
		if len(issue.Transitions) == 0 {
			return m.notPermitted("a transition", issue.Key)
		}
		m.openPopup(newMenuPopup(popupTransition, issue.Key, TransitionOptions(issue), ""))

	case key.Matches(message, keys.Assign):
		if !issue.Can(model.ActionAssign) {
			return m.notPermitted("assigning", issue.Key)
		}
		p := newInputPopup(popupAssign, issue.Key, "", "Search users")
		p.canAssignToMe = issue.Can(model.ActionAssignToMe)
		p.setUsers(nil)
		m.openPopup(p)
		cmd := m.searchUsers("")
		return m, cmd

	case key.Matches(message, keys.AssignToMe):
		if !issue.Can(model.ActionAssignToMe) {
			return m.notPermitted("assigning to yourself", issue.Key)
		}
		return m.assignToMe(issue.Key)

	case key.Matches(message, keys.Tags):
		if !issue.Can(model.ActionSetTags) {
			return m.notPermitted("tagging", issue.Key)
		}
		value := strings.Join(issue.Tags, ", ")
		if value != "" {
			value += ", "
		}
		m.openPopup(newInputPopup(popupTags, issue.Key, value, "tag, tag"))
		cmd := m.searchTags("")
		return m, cmd

	case key.Matches(message, keys.Comment):
		if !issue.Can(model.ActionComment) {
			return m.notPermitted("commenting", issue.Key)
		}
		m.openPopup(newCommentPopup(issue.Key))

	case key.Matches(message, keys.Changelog):
		m.openPopup(&popup{kind: popupChangelog, issueKey: issue.Key, loading: true})
		client, issueKey := m.client, issue.Key
		return m, func() tea.Msg {
			entries, err := client.Changelog(context.Background(), issueKey)
			return changelogMsg{key: issueKey, entries: entries, err: err}
		}
	}
	return m, nil
}

func (m Model) notPermitted(what, issueKey string) (Model, tea.Cmd) {
	return m.setStatus(fmt.Sprintf("%s is not permitted on %s", what, issueKey), false)
}

func (m Model) handlePopupKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	p := m.popup
	if p == nil {
		m.focus = m.popupReturn
		return m, nil
	}
	if message.Type == tea.KeyEsc {
		m.closePopup()
		return m, nil
	}

	switch {
	case p.kind == popupComment:
		if message.Type == tea.KeyCtrlD {
			return m.submitPopup()
		}
		var cmd tea.Cmd
		p.area, cmd = p.area.Update(message)
		return m, cmd

	case p.kind == popupChangelog:
		if key.Matches(message, m.keys.Quit) || message.Type == tea.KeyEnter {
			m.closePopup()
		}
		return m, nil

	case p.usesInput():
		switch message.Type {
		case tea.KeyEnter:
			return m.submitPopup()
		case tea.KeyUp:
			p.menu.MoveUp()
			return m, nil
		case tea.KeyDown:
			p.menu.MoveDown()
			return m, nil
		case tea.KeyTab:
			if p.kind == popupTags {
				p.completeTag()
				cmd := m.searchTags(p.tagQuery())
				return m, cmd
			}
			return m, nil
		}
		before := p.input.Value()
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(message)
		if p.input.Value() == before {
			return m, cmd
		}
		switch p.kind {
		case popupAssign, popupAssigneeFilter:
			p.setUsers(p.users)
			search := m.searchUsers(strings.TrimSpace(p.input.Value()))
			return m, tea.Batch(cmd, search)
		case popupTags:
			search := m.searchTags(p.tagQuery())
			return m, tea.Batch(cmd, search)
		}
		return m, cmd

	default:
		switch {
		case key.Matches(message, m.keys.Quit):
			// 'q' dismisses the menu rather than quitting.
			m.closePopup()
		case key.Matches(message, m.keys.Up):
			p.menu.MoveUp()
		case key.Matches(message, m.keys.Down):
			p.menu.MoveDown()
		case message.Type == tea.KeyEnter:
			return m.submitPopup()
		}
		return m, nil
	}
}

// submitPopup closes the popup and applies its value.
func (m Model) submitPopup() (Model, tea.Cmd) {
	p := m.popup
	m.closePopup()
	issueKey := p.issueKey

	switch p.kind {
	case popupType:
		option, ok := p.menu.Selected()
		if !ok {
			return m, nil
		}
		t := model.IssueType(option.Value)
		return m.mutate(issueKey, "setting type", func(i *model.Issue) { i.Type = t },
			func(ctx context.Context, c Client) (*model.Issue, error) { return c.SetType(ctx, issueKey, t) }, "")

	case popupSeverity:
		option, ok := p.menu.Selected()
		if !ok {
			return m, nil
		}
		s := model.Severity(option.Value)
		return m.mutate(issueKey, "setting severity", func(i *model.Issue) { i.Severity = s },
			func(ctx context.Context, c Client) (*model.Issue, error) { return c.SetSeverity(ctx, issueKey, s) }, "")

	case popupTransition:
		option, ok := p.menu.Selected()
		if !ok {
			return m, nil
		}
		transition := option.Value
		return m.mutate(issueKey, "applying "+transition, transitionOutcome(transition),
			func(ctx context.Context, c Client) (*model.Issue, error) {
				return c.DoTransition(ctx, issueKey, transition)
			}, transition)

	case popupAssign:
		option, ok := p.menu.Selected()
		if !ok {
			return m, nil
		}
		if option.Value == assignMeValue {
			return m.assignToMe(issueKey)
		}
		login, name := option.Value, p.userName(option.Value)
		return m.mutate(issueKey, "assigning", func(i *model.Issue) {
			i.Assignee = login
			i.AssigneeName = name
		}, func(ctx context.Context, c Client) (*model.Issue, error) { return c.Assign(ctx, issueKey, login) }, "")

	case popupTags:
		tags := ParseTags(p.input.Value())
		return m.mutate(issueKey, "setting tags", func(i *model.Issue) { i.Tags = tags },
			func(ctx context.Context, c Client) (*model.Issue, error) { return c.SetTags(ctx, issueKey, tags) }, "")

	case popupComment:
		text := strings.TrimSpace(p.area.Value())
		if text == "" {
			return m, nil
		}
		return m.mutate(issueKey, "commenting", func(i *model.Issue) {
			i.Comments = append(i.Comments, model.Comment{Login: m.login, Markdown: text, CreatedAt: time.Now()})
		}, func(ctx context.Context, c Client) (*model.Issue, error) { return c.AddComment(ctx, issueKey, text) }, "")

	case popupAssigneeFilter:
		option, ok := p.menu.Selected()
		if !ok {
			return m, nil
		}
		return m.applyPatch(facets.SelectAssignee(m.filter, option.Value))

	case popupDateAfter, popupDateBefore:
		value := strings.TrimSpace(p.input.Value())
		if value != "" && !facets.ValidDay(value) {
			return m.fail("creation date", fmt.Errorf("invalid date %q, want YYYY-MM-DD", value))
		}
		if p.kind == popupDateAfter {
			return m.applyPatch(facets.PickAfter(value))
		}
		return m.applyPatch(facets.PickBefore(value))
	}
	return m, nil
}

func (m Model) assignToMe(issueKey string) (Model, tea.Cmd) {
	login := m.login
	return m.mutate(issueKey, "assigning to me", func(i *model.Issue) {
		if login != "" {
			i.Assignee = login
			i.AssigneeName = ""
		}
	}, func(ctx context.Context, c Client) (*model.Issue, error) { return c.AssignToMe(ctx, issueKey) }, "")
}

// mutate applies change to the stored issue at once and sends the request.
// The result message either confirms the server's issue or restores the
// snapshot taken here.
func (m Model) mutate(issueKey, action string, change func(*model.Issue), call mutation, transition string) (Model, tea.Cmd) {
	snapshot, err := m.store.Apply(issueKey, change)
	if err != nil {
		return m.fail(action+" "+issueKey, err)
	}
	client := m.client
	return m, func() tea.Msg {
		issue, err := call(context.Background(), client)
		return mutationResultMsg{action: action, snapshot: snapshot, issue: issue, transition: transition, err: err}
	}
}

func (m Model) handleMutationResult(message mutationResultMsg) (Model, tea.Cmd) {
	issueKey := message.snapshot.Key()
	if message.err != nil {
		restored := m.store.Restore(message.snapshot)
		var cmd tea.Cmd
		m, cmd = m.fail(message.action+" "+issueKey, message.err)
		if restored {
			return m, cmd
		}
		// The issue moved on since the change was applied; only the
		// server knows its state now.
		return m, tea.Batch(cmd, m.refresh(issueKey))
	}

	m.store.Receive(message.issue)
	m.logger.Info("issue updated", "issue", issueKey, "action", message.action)

	if model.TransitionNeedsComment(message.transition) && m.popup == nil {
		m.openPopup(newCommentPopup(issueKey))
	}
	return m, nil
}

// refresh fetches the server's copy of an issue whose rejected change could
// not be rolled back.
func (m Model) refresh(issueKey string) tea.Cmd {
	version := m.store.Version(issueKey)
	client := m.client
	return func() tea.Msg {
		issue, err := client.GetIssue(context.Background(), issueKey)
		return refreshMsg{key: issueKey, version: version, issue: issue, err: err}
	}
}

func (m Model) handleRefresh(message refreshMsg) (Model, tea.Cmd) {
	if message.err != nil {
		m.logger.Warn("refreshing issue failed", "issue", message.key, "error", message.err)
		return m, nil
	}
	// Anything received or applied since is newer than this copy.
	if m.store.Version(message.key) != message.version {
		return m, nil
	}
	m.store.Receive(message.issue)
	return m, nil
}

// transitionOutcome predicts the status and resolution a transition leads
// to. The server's answer replaces the prediction.
func transitionOutcome(transition string) func(*model.Issue) {
	return func(i *model.Issue) {
		switch transition {
		case model.TransitionConfirm:
			i.Status = model.StatusConfirmed
		case model.TransitionUnconfirm, model.TransitionReopen:
			i.Status = model.StatusReopened
			i.Resolution = model.ResolutionNone
		case model.TransitionResolve:
			i.Status = model.StatusResolved
			i.Resolution = model.ResolutionFixed
		case model.TransitionFalsePositive:
			i.Status = model.StatusResolved
			i.Resolution = model.ResolutionFalsePositive
		case model.TransitionWontFix:
			i.Status = model.StatusResolved
			i.Resolution = model.ResolutionWontFix
		case model.TransitionClose:
			i.Status = model.StatusClosed
		}
		// Unknown until the server answers.
		i.Transitions = nil
	}
}

func (m *Model) searchUsers(query string) tea.Cmd {
	m.seq.users++
	seq := m.seq.users
	client := m.client
	return func() tea.Msg {
		users, err := client.SearchUsers(context.Background(), query, facets.AssigneeSearchSize)
		return usersMsg{seq: seq, users: users, err: err}
	}
}

func (m *Model) searchTags(query string) tea.Cmd {
	m.seq.tags++
	seq := m.seq.tags
	client := m.client
	return func() tea.Msg {
		tags, err := client.SearchTags(context.Background(), query, tagSuggestionSize+5)
		return tagsMsg{seq: seq, tags: tags, err: err}
	}
}

// tagSuggestions drops the tags already entered and keeps the first few.
func tagSuggestions(tags, entered []string) []string {
	out := make([]string, 0, tagSuggestionSize)
	for _, t := range tags {
		if slices.Contains(entered, t) {
			continue
		}
		out = append(out, t)
		if len(out) == tagSuggestionSize {
			break
		}
	}
	return out
}
