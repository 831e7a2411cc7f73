package scim

import (
	"fmt"
	"strings"
)

// ErrFilterSyntax is wrapped by all filter parse failures so callers can
// classify them with errors.Is.
var ErrFilterSyntax = fmt.Errorf("invalid filter expression")

// Filter is a parsed SCIM filter expression. Only the equality grammar is
// supported: `attrPath eq "value"`. For a bracketed value path such as
// `members[value eq "42"]`, AttrPath holds the outer attribute and
// ValFilter the inner expression; Op and CompValue are empty.
type Filter struct {
	AttrPath  string
	Op        string
	CompValue string
	ValFilter *Filter
}

// ParseFilter parses a filter query parameter of the form
// `attrPath eq "value"`. The operator is matched case-insensitively and
// normalized to lower case.
func ParseFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, fmt.Errorf("%w: empty expression", ErrFilterSyntax)
	}

	parts := strings.SplitN(expr, " ", 3)
	if len(parts) < 3 {
		return Filter{}, fmt.Errorf("%w: want `attribute op \"value\"`, got %q", ErrFilterSyntax, expr)
	}

	attr := parts[0]
	op := strings.ToLower(parts[1])
	value := strings.TrimSpace(parts[2])

	if op != "eq" {
		return Filter{}, fmt.Errorf("%w: unsupported operator %q", ErrFilterSyntax, parts[1])
	}

	return Filter{AttrPath: attr, Op: op, CompValue: unquote(value)}, nil
}

// ParsePath parses a PATCH operation path. Three shapes are accepted: a
// bare attribute (`members`), an equality expression, and a bracketed value
// path (`members[value eq "42"]`) whose inner expression is parsed with
// ParseFilter and attached as ValFilter.
func ParsePath(path string) (Filter, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Filter{}, fmt.Errorf("%w: empty path", ErrFilterSyntax)
	}

	if open := strings.IndexByte(path, '['); open >= 0 {
		if !strings.HasSuffix(path, "]") || open == 0 {
			return Filter{}, fmt.Errorf("%w: malformed value path %q", ErrFilterSyntax, path)
		}
		inner, err := ParseFilter(path[open+1 : len(path)-1])
		if err != nil {
			return Filter{}, err
		}
		return Filter{AttrPath: path[:open], ValFilter: &inner}, nil
	}

	if strings.Contains(path, " ") {
		return ParseFilter(path)
	}

	return Filter{AttrPath: path}, nil
}

// unquote strips one pair of surrounding double quotes, if present. SCIM
// clients quote string comparison values but the parser tolerates bare ones.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
