package transform

import (
	"regexp"
	"strconv"
	"strings"
)

// braceList extracts the top-level elements of a braced list from raw
// argument text. Handles both the bare form ({"a", "b"}) and typed
// vector-constructor form (std::vector<T>{"a", "b"}). ok is false when
// the text has no braced list at all; an empty list reports ok with no
// elements.
func braceList(text string) ([]string, bool) {
	open := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if open < 0 || end <= open {
		return nil, false
	}

	var (
		elems   []string
		start   = open + 1
		depth   int
		quoted  bool
		escaped bool
	)
	flush := func(to int) {
		if elem := strings.TrimSpace(text[start:to]); elem != "" {
			elems = append(elems, elem)
		}
		start = to + 1
	}
	for i := open + 1; i < end; i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '{' || c == '<' || c == '(':
			depth++
		case c == '}' || c == '>' || c == ')':
			depth--
		case c == ',' && depth == 0:
			flush(i)
		}
	}
	flush(end)
	return elems, true
}

// literalString unquotes a quoted list element; non-quoted text passes
// through unchanged.
func literalString(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return unescapeLiteral(text[1 : len(text)-1])
	}
	return text
}

func unescapeLiteral(text string) string {
	if !strings.ContainsRune(text, '\\') {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) {
			i++
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

var (
	sizeLiteralPattern  = regexp.MustCompile(`^([0-9]+)_([KMGT])iB$`)
	floatLiteralPattern = regexp.MustCompile(`^-?[0-9]+\.[0-9]*(?:[eE][+-]?[0-9]+)?[fF]?$|^-?[0-9]+[eE][+-]?[0-9]+[fF]?$`)
	intLiteralPattern   = regexp.MustCompile(`^-?(?:0[xX][0-9a-fA-F]+|[0-9]+)[uUlL]*$`)

	sizeMultipliers = map[string]uint64{
		"K": 1 << 10,
		"M": 1 << 20,
		"G": 1 << 30,
		"T": 1 << 40,
	}
)

// parseNumericLiteral converts a numeric literal's source text into a
// typed value. Digit-separator apostrophes and integer suffix markers
// (U, L, UL, ULL) are stripped; binary size suffixes (_KiB, _MiB, _GiB,
// _TiB) multiply out to byte counts. Values beyond the int64 range stay
// unsigned so they serialize exactly. ok is false for non-numeric text,
// including chrono literals, which belong to the symbolic transformer.
func parseNumericLiteral(text string) (any, bool) {
	t := strings.ReplaceAll(strings.TrimSpace(text), "'", "")

	if m := sizeLiteralPattern.FindStringSubmatch(t); m != nil {
		n, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return nil, false
		}
		return asNumber(n * sizeMultipliers[m[2]]), true
	}

	if floatLiteralPattern.MatchString(t) {
		f, err := strconv.ParseFloat(strings.TrimRight(t, "fF"), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}

	if intLiteralPattern.MatchString(t) {
		digits := strings.TrimRight(t, "uUlL")
		if i, err := strconv.ParseInt(digits, 0, 64); err == nil {
			return i, true
		}
		if u, err := strconv.ParseUint(digits, 0, 64); err == nil {
			return u, true
		}
	}
	return nil, false
}

func asNumber(u uint64) any {
	if u <= 1<<63-1 {
		return int64(u)
	}
	return u
}

// splitCall splits "callee(arg, arg)" into the callee text and its
// top-level arguments. ok is false when the text is not a call shape.
func splitCall(text string) (callee string, args []string, ok bool) {
	t := strings.TrimSpace(text)
	open := strings.IndexByte(t, '(')
	if open < 0 || !strings.HasSuffix(t, ")") {
		return "", nil, false
	}
	return strings.TrimSpace(t[:open]), splitTopLevel(t[open+1 : len(t)-1]), true
}

// splitTopLevel splits on commas outside quotes and brackets, dropping
// empty elements.
func splitTopLevel(body string) []string {
	var (
		elems   []string
		start   int
		depth   int
		quoted  bool
		escaped bool
	)
	flush := func(to int) {
		if elem := strings.TrimSpace(body[start:to]); elem != "" {
			elems = append(elems, elem)
		}
		start = to + 1
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '{' || c == '<' || c == '(' || c == '[':
			depth++
		case c == '}' || c == '>' || c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			flush(i)
		}
	}
	flush(len(body))
	return elems
}

var chronoSuffixPattern = regexp.MustCompile(`^([0-9]+)(ns|us|ms|s|min|h)$`)

var chronoSuffixUnits = map[string]string{
	"ns":  "nanoseconds",
	"us":  "microseconds",
	"ms":  "milliseconds",
	"s":   "seconds",
	"min": "minutes",
	"h":   "hours",
}

// chronoLiteral splits a chrono user-defined literal (10s, 150ms,
// 10080min) into its count and full unit name.
func chronoLiteral(text string) (count, unit string, ok bool) {
	t := strings.ReplaceAll(strings.TrimSpace(text), "'", "")
	m := chronoSuffixPattern.FindStringSubmatch(t)
	if m == nil {
		return "", "", false
	}
	return m[1], chronoSuffixUnits[m[2]], true
}
