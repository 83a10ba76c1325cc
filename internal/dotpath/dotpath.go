// Package dotpath reads and writes nested string-keyed maps addressed by
// dot-separated paths such as "auth.user.name".
package dotpath

import "strings"

// Split splits a dotted path into its segments.
func Split(path string) []string { return strings.Split(path, ".") }

// Assign returns a copy of m with value stored at the dotted path.
//
// Every map along the path is copied, so neither m nor any map reachable
// from it is modified. A segment that is absent, or present but not a
// map[string]any, is replaced with a fresh map.
func Assign(m map[string]any, path string, value any) map[string]any {
	return assign(m, Split(path), value)
}

func assign(m map[string]any, segments []string, value any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}

	head := segments[0]
	if len(segments) == 1 {
		out[head] = value
		return out
	}

	child, _ := asMap(out[head])
	out[head] = assign(child, segments[1:], value)

	return out
}

// Retrieve returns the value stored at the dotted path.
// It reports false if any segment is missing or not a map.
func Retrieve(m map[string]any, path string) (any, bool) {
	var cur any = m

	for _, seg := range Split(path) {
		node, ok := asMap(cur)
		if !ok {
			return nil, false
		}

		cur, ok = node[seg]
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

// asMap reports whether v is a string-keyed map. Named map types with a
// map[string]any underlying type are accepted as well.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case interface{ AsMap() map[string]any }:
		return m.AsMap(), true
	default:
		return nil, false
	}
}
