package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

// FacetNames lists every facet requested with a first-page search.
var FacetNames = []string{
	"assignees",
	"authors",
	"createdAt",
	"directories",
	"fileUuids",
	"languages",
	"moduleUuids",
	"projectUuids",
	"resolutions",
	"rules",
	"severities",
	"statuses",
	"tags",
	"types",
}

// SearchResponse is one page of issue search results together with the
// entities the issues reference.
type SearchResponse struct {
	Paging     model.Paging      `json:"paging"`
	Issues     []*model.Issue    `json:"issues"`
	Components []model.Component `json:"components"`
	Users      []model.User      `json:"users"`
	Rules      []model.Rule      `json:"rules"`
	Languages  []model.Language  `json:"languages"`
	Facets     []filter.RawFacet `json:"facets"`
}

// SearchParams builds the query for one search page. facets is false for
// load-more pages, which never replace the facet map.
func SearchParams(f filter.Filter, page, pageSize int, facets bool) url.Values {
	params := filter.Serialize(f)
	params.Set("p", strconv.Itoa(page))
	params.Set("ps", strconv.Itoa(pageSize))
	params.Set("additionalFields", "_all")
	if facets {
		params.Set("facets", strings.Join(FacetNames, ","))
	}
	return params
}

// SearchIssues runs an issue search. params are sent verbatim; build them
// with SearchParams.
func (c *Client) SearchIssues(ctx context.Context, params url.Values) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.get(ctx, "api/issues/search", params, &resp); err != nil {
		return nil, err
	}
	model.Denormalize(resp.Issues, resp.Components, resp.Users, resp.Rules)
	return &resp, nil
}

// GetIssue fetches a single issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*model.Issue, error) {
	resp, err := c.SearchIssues(ctx, url.Values{
		"issues":           {key},
		"additionalFields": {"_all"},
	})
	if err != nil {
		return nil, err
	}
	for _, issue := range resp.Issues {
		if issue.Key == key {
			return issue, nil
		}
	}
	return nil, &APIError{Status: 404, Messages: []string{fmt.Sprintf("issue %s not found", key)}}
}

// Changelog returns the change history of an issue, oldest first.
func (c *Client) Changelog(ctx context.Context, key string) ([]model.ChangelogEntry, error) {
	var resp struct {
		Changelog []model.ChangelogEntry `json:"changelog"`
	}
	if err := c.get(ctx, "api/issues/changelog", url.Values{"issue": {key}}, &resp); err != nil {
		return nil, err
	}
	return resp.Changelog, nil
}

// issueResponse is the body returned by every issue mutation.
type issueResponse struct {
	Issue      *model.Issue      `json:"issue"`
	Components []model.Component `json:"components"`
	Users      []model.User      `json:"users"`
	Rules      []model.Rule      `json:"rules"`
}

// mutate posts form to an issue mutation endpoint and returns the canonical
// issue from the response.
func (c *Client) mutate(ctx context.Context, path string, form url.Values) (*model.Issue, error) {
	var resp issueResponse
	if err := c.post(ctx, path, form, &resp); err != nil {
		return nil, err
	}
	if resp.Issue == nil {
		return nil, fmt.Errorf("%s: response has no issue", path)
	}
	model.Denormalize([]*model.Issue{resp.Issue}, resp.Components, resp.Users, resp.Rules)
	return resp.Issue, nil
}

// SetType changes the type of an issue.
func (c *Client) SetType(ctx context.Context, key string, t model.IssueType) (*model.Issue, error) {
	return c.mutate(ctx, "api/issues/set_type", url.Values{"issue": {key}, "type": {string(t)}})
}

// SetSeverity changes the severity of an issue.
func (c *Client) SetSeverity(ctx context.Context, key string, s model.Severity) (*model.Issue, error) {
	return c.mutate(ctx, "api/issues/set_severity", url.Values{"issue": {key}, "severity": {string(s)}})
}

// DoTransition applies a workflow transition such as "confirm" or "resolve".
func (c *Client) DoTransition(ctx context.Context, key, transition string) (*model.Issue, error) {
	return c.mutate(ctx, "api/issues/do_transition", url.Values{"issue": {key}, "transition": {transition}})
}

// Assign assigns an issue to login. The empty login unassigns it.
func (c *Client) Assign(ctx context.Context, key, login string) (*model.Issue, error) {
	form := url.Values{"issue": {key}}
	if login != "" {
		form.Set("assignee", login)
	}
	return c.mutate(ctx, "api/issues/assign", form)
}

// AssignToMe assigns an issue to the authenticated user.
func (c *Client) AssignToMe(ctx context.Context, key string) (*model.Issue, error) {
	return c.mutate(ctx, "api/issues/assign", url.Values{"issue": {key}, "me": {"true"}})
}

// SetTags replaces the tags of an issue. An empty list removes every tag.
func (c *Client) SetTags(ctx context.Context, key string, tags []string) (*model.Issue, error) {
	return c.mutate(ctx, "api/issues/set_tags", url.Values{"issue": {key}, "tags": {strings.Join(tags, ",")}})
}

// AddComment adds a markdown comment to an issue.
func (c *Client) AddComment(ctx context.Context, key, text string) (*model.Issue, error) {
	return c.mutate(ctx, "api/issues/add_comment", url.Values{"issue": {key}, "text": {text}})
}

// EditComment replaces the text of an existing comment.
func (c *Client) EditComment(ctx context.Context, commentKey, text string) (*model.Issue, error) {
	return c.mutate(ctx, "api/issues/edit_comment", url.Values{"comment": {commentKey}, "text": {text}})
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, commentKey string) (*model.Issue, error) {
	return c.mutate(ctx, "api/issues/delete_comment", url.Values{"comment": {commentKey}})
}
