package model

// Component is a project, module, directory or file referenced by issues.
type Component struct {
	UUID         string `json:"uuid"`
	Key          string `json:"key"`
	Name         string `json:"name"`
	LongName     string `json:"longName,omitempty"`
	Path         string `json:"path,omitempty"`
	Qualifier    string `json:"qualifier,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Component qualifiers.
const (
	QualifierProject   = "TRK"
	QualifierModule    = "BRC"
	QualifierDirectory = "DIR"
	QualifierFile      = "FIL"
	QualifierUnitTest  = "UTS"
)

// DisplayName returns the path for files and directories and the name
// otherwise.
func (c Component) DisplayName() string {
	if c.Path != "" && (c.Qualifier == QualifierFile || c.Qualifier == QualifierDirectory || c.Qualifier == QualifierUnitTest) {
		return c.Path
	}
	if c.LongName != "" {
		return c.LongName
	}
	if c.Name != "" {
		return c.Name
	}
	return c.Key
}

// User is a user referenced as assignee, comment author or changelog actor.
type User struct {
	Login  string `json:"login"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Active bool   `json:"active"`
}

// Rule is a coding rule referenced by issues.
type Rule struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Lang     string `json:"lang,omitempty"`
	LangName string `json:"langName,omitempty"`
}

// Language is a programming language referenced by rules and facets.
type Language struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Denormalize fills the display fields of each issue from the referenced
// entities returned alongside it. Issues are modified in place.
func Denormalize(issues []*Issue, components []Component, users []User, rules []Rule) {
	byKey := make(map[string]Component, len(components))
	for _, c := range components {
		byKey[c.Key] = c
	}
	usersByLogin := make(map[string]User, len(users))
	for _, u := range users {
		usersByLogin[u.Login] = u
	}
	rulesByKey := make(map[string]Rule, len(rules))
	for _, r := range rules {
		rulesByKey[r.Key] = r
	}

	for _, issue := range issues {
		if c, ok := byKey[issue.Component]; ok {
			issue.ComponentLongName = c.LongName
			issue.ComponentPath = c.Path
		}
		if c, ok := byKey[issue.Project]; ok {
			issue.ProjectName = c.LongName
			if issue.ProjectName == "" {
				issue.ProjectName = c.Name
			}
		}
		if c, ok := byKey[issue.SubProject]; ok {
			issue.SubProjectName = c.LongName
			if issue.SubProjectName == "" {
				issue.SubProjectName = c.Name
			}
		}
		if r, ok := rulesByKey[issue.Rule]; ok {
			issue.RuleName = r.Name
		}
		if u, ok := usersByLogin[issue.Assignee]; ok && issue.Assignee != "" {
			issue.AssigneeName = u.Name
			issue.AssigneeAvatar = u.Avatar
		}
		for i := range issue.Comments {
			if u, ok := usersByLogin[issue.Comments[i].Login]; ok {
				issue.Comments[i].AuthorName = u.Name
			}
		}
	}
}
