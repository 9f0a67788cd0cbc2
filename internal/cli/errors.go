package cli

import (
	"fmt"
	"strings"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type ambiguousError struct {
	kind    string
	prefix  string
	matches []string
}

func (e ambiguousError) Error() string {
	return fmt.Sprintf("%s id %q is ambiguous: %s", e.kind, e.prefix, strings.Join(e.matches, ", "))
}

// resolveID finds the one id equal to or starting with prefix.
func resolveID(kind, prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", errNotFound(kind, prefix)
	}
	var matches []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", errNotFound(kind, prefix)
	case 1:
		return matches[0], nil
	}
	return "", ambiguousError{kind: kind, prefix: prefix, matches: matches}
}

// shortID is the id prefix shown in tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
