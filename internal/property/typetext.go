package property

import "strings"

// SplitTemplate splits "name<args>" into its parts, requiring the angle
// brackets to balance exactly at the end of the text. Nested template
// arguments stay intact inside inner.
func SplitTemplate(t string) (name, inner string, ok bool) {
	open := strings.IndexByte(t, '<')
	if open < 0 || !strings.HasSuffix(t, ">") {
		return "", "", false
	}

	depth := 0
	for i := open; i < len(t); i++ {
		switch t[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 && i != len(t)-1 {
				return "", "", false
			}
		}
	}
	if depth != 0 {
		return "", "", false
	}
	return strings.TrimSpace(t[:open]), strings.TrimSpace(t[open+1 : len(t)-1]), true
}

// FirstTemplateArg returns the first top-level comma-separated argument
// of a template argument list.
func FirstTemplateArg(args string) string {
	depth := 0
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(args[:i])
			}
		}
	}
	return strings.TrimSpace(args)
}
