package cmd

import (
	"strings"
	"unicode"
)

// Parse splits a prefixed message such as "!play never gonna" into an
// invocation. ok is false when content does not start with prefix or names
// no command. Names are lower-cased.
func Parse(prefix, content string) (inv *Invocation, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return nil, false
	}
	body := strings.TrimLeftFunc(content[len(prefix):], unicode.IsSpace)
	if body == "" {
		return nil, false
	}

	name, rest := body, ""
	if i := strings.IndexFunc(body, unicode.IsSpace); i >= 0 {
		name, rest = body[:i], body[i:]
	}
	rest = strings.TrimSpace(rest)

	return &Invocation{
		Name: strings.ToLower(name),
		Args: strings.Fields(rest),
		Text: rest,
	}, true
}
