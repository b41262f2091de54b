// internal/parser/parser.go
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parse understands a minimal YAML-ish block format:
//
//	key: value
//	key:
//	  child: value
//	key: |
//	  multiline...
//
// Indentation is 2 spaces per level. Full YAML compatibility is explicitly
// not a goal; this covers exactly what the paste form accepts.

var (
	lineRE  = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*:\s*(.*)$`)
	intRE   = regexp.MustCompile(`^-?[0-9]+$`)
	floatRE = regexp.MustCompile(`^-?[0-9]+\.[0-9]+$`)
)

// ParseError reports malformed paste input. Its message is shown verbatim on
// the form page, so it stays user-facing rather than Go-error-styled.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// coerceScalar converts a raw token into a typed value. Total function:
// anything that is not null/bool/int/float stays a trimmed string.
func coerceScalar(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	switch strings.ToLower(s) {
	case "null", "none":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if intRE.MatchString(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		return s
	}
	if floatRE.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	}
	return s
}

type frame struct {
	indent int
	target map[string]any
}

// Parse turns an indented block into a nested mapping. Leaf values go
// through coerceScalar; "key: |" collects an indented block literal.
func Parse(text string) (map[string]any, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	// Drop leading/trailing blank lines.
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, parseErrorf("Paste is empty.")
	}

	root := map[string]any{}
	// Root sentinel sits below level 0 so top-level lines never pop it.
	stack := []frame{{indent: -1, target: root}}

	container := func(indent int) (map[string]any, error) {
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return nil, parseErrorf("Indentation error (bad nesting). Use 2 spaces per level.")
		}
		return stack[len(stack)-1].target, nil
	}

	i := 0
	for i < len(lines) {
		raw := lines[i]
		if strings.TrimSpace(raw) == "" {
			i++
			continue
		}

		indent := len(raw) - len(strings.TrimLeft(raw, " "))
		if indent%2 != 0 {
			return nil, parseErrorf("Indentation must be multiples of 2 spaces. Line %d: %q", i+1, raw)
		}

		m := lineRE.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			return nil, parseErrorf("Bad line format. Expected 'key: value'. Line %d: %q", i+1, raw)
		}
		key, rest := m[1], m[2]

		parent, err := container(indent)
		if err != nil {
			return nil, err
		}

		// Block literal: gather following lines indented deeper than the key.
		if rest == "|" {
			var block []string
			i++
			for i < len(lines) {
				nxt := lines[i]
				if strings.TrimSpace(nxt) == "" {
					block = append(block, "")
					i++
					continue
				}
				nxtIndent := len(nxt) - len(strings.TrimLeft(nxt, " "))
				if nxtIndent <= indent {
					break
				}
				// Strip exactly indent+2 spaces if present, otherwise all.
				cut := indent + 2
				if len(nxt) >= cut {
					block = append(block, nxt[cut:])
				} else {
					block = append(block, strings.TrimLeft(nxt, " "))
				}
				i++
			}
			parent[key] = strings.TrimRight(strings.Join(block, "\n"), "\n")
			continue
		}

		// Nested mapping: lines indented deeper become its children.
		if rest == "" {
			obj := map[string]any{}
			parent[key] = obj
			stack = append(stack, frame{indent: indent, target: obj})
			i++
			continue
		}

		parent[key] = coerceScalar(rest)
		i++
	}

	return root, nil
}
