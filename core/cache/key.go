package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Scope carries the contextual identifiers that must be part of a cache key.
// Upstream responses are permission-filtered, so two requests differing only
// in scope must never share an entry.
type Scope struct {
	UserID      string
	Role        string
	InstituteID string
	ClassID     string
	SubjectID   string
}

// BuildKey serializes endpoint, query params and scope into a stable string key.
// Param names are sorted so map iteration order never changes the key.
// Absent params and empty scope fields are omitted entirely; a param present
// with an empty value still contributes a "name=" token, so "param omitted"
// and "param empty" never collide.
// Every token is percent-escaped, so values containing the separators cannot
// forge another key.
func BuildKey(endpoint string, params url.Values, scope Scope) string {
	var b strings.Builder
	b.WriteString(url.QueryEscape(endpoint))

	if len(params) > 0 {
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteByte('?')
		for i, name := range names {
			for j, val := range params[name] {
				if i > 0 || j > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(name))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(val))
			}
		}
	}

	for _, tok := range []struct{ tag, val string }{
		{"u", scope.UserID},
		{"r", scope.Role},
		{"i", scope.InstituteID},
		{"c", scope.ClassID},
		{"s", scope.SubjectID},
	} {
		if tok.val != "" {
			b.WriteString(scopeToken(tok.tag, tok.val))
		}
	}
	b.WriteByte('|')
	return b.String()
}

// scopeToken is the searchable "|tag:value" fragment a scope field contributes
// to a key. Invalidation predicates match on token + terminating "|" so that
// e.g. user "u1" never matches entries of user "u12".
func scopeToken(tag, val string) string {
	return "|" + tag + ":" + url.QueryEscape(val)
}

// UserKeyMatcher returns a predicate matching every key scoped to the given user.
func UserKeyMatcher(userID string) func(key string) bool {
	tok := scopeToken("u", userID) + "|"
	return func(key string) bool { return strings.Contains(key, tok) }
}

// InstituteKeyMatcher returns a predicate matching every key scoped to the given institute.
func InstituteKeyMatcher(instituteID string) func(key string) bool {
	tok := scopeToken("i", instituteID) + "|"
	return func(key string) bool { return strings.Contains(key, tok) }
}
