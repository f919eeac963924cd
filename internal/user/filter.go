package user

import (
	"strings"

	"github.com/gobwas/glob"
)

// Filter matches users by display name, case-insensitively.
type Filter struct {
	pattern string
	g       glob.Glob
}

// CompileFilter builds a filter from user input. Input without glob
// metacharacters matches as a substring. Blank input yields a nil filter,
// which matches everyone.
func CompileFilter(input string) (*Filter, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	pattern := strings.ToLower(input)
	if !strings.ContainsAny(pattern, "*?[{") {
		pattern = "*" + pattern + "*"
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Filter{pattern: input, g: g}, nil
}

// Pattern returns the input the filter was compiled from.
func (f *Filter) Pattern() string {
	if f == nil {
		return ""
	}
	return f.pattern
}

// Match reports whether u passes the filter.
func (f *Filter) Match(u User) bool {
	if f == nil {
		return true
	}
	return f.g.Match(strings.ToLower(u.DisplayName()))
}

// Apply returns the users that match, in list order.
func (f *Filter) Apply(list List) List {
	if f == nil {
		return list
	}
	out := make(List, 0, len(list))
	for _, u := range list {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out
}
