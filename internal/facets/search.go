package facets

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

// AssigneeSearchSize is how many users the assignee search asks for.
const AssigneeSearchSize = 50

var initMatcher sync.Once

// Candidate is a ranked search result.
type Candidate struct {
	User  model.User
	Score int
	// Positions are the matched rune offsets in Label.
	Positions []int
}

// Label is the text shown for the candidate and matched against.
func (c Candidate) Label() string {
	return userLabel(c.User)
}

func userLabel(u model.User) string {
	if u.Name == "" || u.Name == u.Login {
		return u.Login
	}
	return u.Name + " (" + u.Login + ")"
}

// RankUsers orders users by fuzzy match quality against query, dropping
// those that do not match. The empty query keeps every user in its original
// order.
func RankUsers(query string, users []model.User) []Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Candidate, len(users))
		for i, u := range users {
			out[i] = Candidate{User: u}
		}
		return out
	}

	initMatcher.Do(func() { algo.Init("default") })

	pattern := []rune(strings.ToLower(query))
	slab := util.MakeSlab(100*1024, 2048)

	type ranked struct {
		Candidate
		index int
	}
	var matches []ranked
	for i, u := range users {
		chars := util.ToChars([]byte(userLabel(u)))
		result, positions := algo.FuzzyMatchV2(false, true, true, &chars, pattern, true, slab)
		if result.Start < 0 {
			continue
		}
		c := ranked{Candidate: Candidate{User: u, Score: result.Score}, index: i}
		if positions != nil {
			c.Positions = slices.Clone(*positions)
			slices.Sort(c.Positions)
		}
		matches = append(matches, c)
	}

	slices.SortStableFunc(matches, func(a, b ranked) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	out := make([]Candidate, len(matches))
	for i, m := range matches {
		out[i] = m.Candidate
	}
	return out
}

// SelectAssignee adds login to the assignee selection of f, the way picking a
// user from the assignee search does.
func SelectAssignee(f filter.Filter, login string) filter.Patch {
	p := filter.Set(filter.PropAssignees, filter.Union(f.Assignees, login))
	p.Assigned = filter.Bool(true)
	return p
}
