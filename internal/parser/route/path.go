package route

import (
	"path"
	"strings"
)

const namedGroupPrefix = "(?P<"

// TemplatePath rewrites every named capture group (?P<name>pattern) in a
// route regex into a {name} placeholder. The names are returned in the order
// they appear. Nested groups, character classes and escaped parentheses
// inside the pattern are skipped over when finding the end of a group.
func TemplatePath(pattern string) (string, []string) {
	var (
		b      strings.Builder
		params []string
	)

	for i := 0; i < len(pattern); {
		if !strings.HasPrefix(pattern[i:], namedGroupPrefix) {
			b.WriteByte(pattern[i])
			i++
			continue
		}

		nameStart := i + len(namedGroupPrefix)
		nameLen := strings.IndexByte(pattern[nameStart:], '>')
		if nameLen <= 0 || !isGroupName(pattern[nameStart:nameStart+nameLen]) {
			b.WriteByte(pattern[i])
			i++
			continue
		}

		end := groupEnd(pattern, i)
		if end < 0 {
			// unbalanced group, leave the remainder as is
			b.WriteString(pattern[i:])
			break
		}

		name := pattern[nameStart : nameStart+nameLen]
		params = append(params, name)
		b.WriteString("{" + name + "}")
		i = end + 1
	}

	return b.String(), params
}

// groupEnd returns the index of the ')' closing the group opened at start,
// or -1 when the group is never closed.
func groupEnd(pattern string, start int) int {
	depth := 0
	inClass := false

	for i := start; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

func isGroupName(name string) bool {
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return name != ""
}

// RelativePath joins the route template onto the API mount path and strips
// the base path so the result is relative to the document's basePath.
func RelativePath(apiPath, basePath, template string) string {
	full := strings.TrimSuffix(apiPath, "/") + template
	if basePath != "" && strings.HasPrefix(full, basePath) {
		full = strings.TrimPrefix(full, basePath)
	}
	if full == "" {
		return "/"
	}
	return full
}

// GroupName derives the documentation group from a path template: the last
// segment, or its parent when the last segment is the {id} placeholder.
func GroupName(template string) string {
	base := path.Base(template)
	if base == "{id}" {
		base = path.Base(path.Dir(template))
	}
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// isCollection reports whether a template addresses a collection rather
// than a single resource, i.e. it does not end in a placeholder.
func isCollection(template string) bool {
	return !strings.HasSuffix(template, "}")
}
