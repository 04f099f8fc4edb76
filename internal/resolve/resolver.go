// Package resolve looks up symbolic C++ constants by scanning source
// files for their definitions. Resolution is textual best-effort: it
// never evaluates C++ semantics and reports absence instead of failing.
package resolve

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/maypok86/otter"
)

// DefaultEnterpriseMarker tags files whose constants belong to the
// enterprise feature set.
const DefaultEnterpriseMarker = "Enterprise License"

const defaultCacheSize = 2048

// Options configures a Resolver. Zero values fall back to scanning every
// candidate file under the root.
type Options struct {
	// Patterns maps a namespace prefix to path globs (relative to the
	// root, slash-separated) that likely define its constants.
	Patterns map[string][]string

	// Fallback globs are used when an identifier's namespace has no
	// pattern entry. Empty means all candidate files.
	Fallback []string

	// EnterpriseMarker is the header text that marks a file as part of
	// the enterprise feature set.
	EnterpriseMarker string

	CacheSize int
}

type candidate struct {
	rel string
	abs string
}

type entry struct {
	value      string
	values     []string
	enterprise bool
	ok         bool
}

// Resolver resolves identifiers against constant definitions found in a
// source tree. Safe for concurrent use; results are cached for the
// lifetime of the resolver.
type Resolver struct {
	root     string
	patterns map[string][]glob.Glob
	fallback []glob.Glob
	marker   string

	walkOnce sync.Once
	walkErr  error
	files    []candidate

	cache otter.Cache[string, entry]
}

// New builds a Resolver over the source tree rooted at root.
func New(root string, opts Options) (*Resolver, error) {
	r := &Resolver{
		root:     root,
		patterns: make(map[string][]glob.Glob),
		marker:   opts.EnterpriseMarker,
	}
	if r.marker == "" {
		r.marker = DefaultEnterpriseMarker
	}

	for prefix, pats := range opts.Patterns {
		compiled, err := compileGlobs(pats)
		if err != nil {
			return nil, fmt.Errorf("resolver patterns for %q: %w", prefix, err)
		}
		r.patterns[prefix] = compiled
	}
	var err error
	if r.fallback, err = compileGlobs(opts.Fallback); err != nil {
		return nil, fmt.Errorf("resolver fallback patterns: %w", err)
	}

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := otter.MustBuilder[string, entry](size).Build()
	if err != nil {
		return nil, fmt.Errorf("building resolver cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling glob %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Close releases the resolver's cache.
func (r *Resolver) Close() {
	r.cache.Close()
}

// Resolve returns the literal value of a bare or namespaced identifier.
// Falls back to class-constant lookup for multi-segment identifiers. The
// boolean is false when no definition was found.
func (r *Resolver) Resolve(ctx context.Context, ident string) (string, bool) {
	key := "s:" + ident
	if e, hit := r.cache.Get(key); hit {
		return e.value, e.ok
	}

	e := r.lookupScalar(ctx, ident)
	r.cache.Set(key, e)
	return e.value, e.ok
}

// ResolveArray returns the elements of a fixed-size array or to_array
// constant. Elements that are themselves identifiers are resolved
// recursively, keeping their source text when resolution misses.
func (r *Resolver) ResolveArray(ctx context.Context, ident string) ([]string, bool) {
	key := "a:" + ident
	if e, hit := r.cache.Get(key); hit {
		return e.values, e.ok
	}

	e := r.lookupArray(ctx, ident)
	r.cache.Set(key, e)
	return e.values, e.ok
}

// ResolveClassConstant resolves a static string constant of a class or
// struct (`ns::class::member`). enterprise reports whether the defining
// file carries the enterprise marker.
func (r *Resolver) ResolveClassConstant(ctx context.Context, ident string) (value string, enterprise, ok bool) {
	key := "c:" + ident
	if e, hit := r.cache.Get(key); hit {
		return e.value, e.enterprise, e.ok
	}

	e := r.lookupClassConstant(ctx, ident)
	r.cache.Set(key, e)
	return e.value, e.enterprise, e.ok
}

func (r *Resolver) lookupScalar(ctx context.Context, ident string) entry {
	prefix, name := splitIdent(ident)

	for _, c := range r.candidates(prefix) {
		if ctx.Err() != nil {
			return entry{}
		}
		text, err := os.ReadFile(c.abs)
		if err != nil {
			continue
		}
		if v, found := scanScalar(string(text), name); found {
			return entry{value: v, ok: true}
		}
	}

	// ns::class::member form: the constant may live in a class body.
	if strings.Count(ident, "::") >= 1 {
		if e := r.lookupClassConstant(ctx, ident); e.ok {
			return e
		}
	}
	return entry{}
}

func (r *Resolver) lookupArray(ctx context.Context, ident string) entry {
	prefix, name := splitIdent(ident)

	for _, c := range r.candidates(prefix) {
		if ctx.Err() != nil {
			return entry{}
		}
		text, err := os.ReadFile(c.abs)
		if err != nil {
			continue
		}
		elems, found := scanArray(string(text), name)
		if !found {
			continue
		}
		values := make([]string, 0, len(elems))
		for _, elem := range elems {
			if strings.HasPrefix(elem, `"`) {
				values = append(values, unquote(elem))
				continue
			}
			if v, ok := r.Resolve(ctx, elem); ok {
				values = append(values, v)
			} else {
				values = append(values, lastSegment(elem))
			}
		}
		return entry{values: values, ok: true}
	}
	return entry{}
}

func (r *Resolver) lookupClassConstant(ctx context.Context, ident string) entry {
	segments := strings.Split(ident, "::")
	if len(segments) < 2 {
		return entry{}
	}
	member := segments[len(segments)-1]
	class := segments[len(segments)-2]
	prefix := ""
	if len(segments) > 2 {
		prefix = segments[0]
	}

	for _, c := range r.candidates(prefix) {
		if ctx.Err() != nil {
			return entry{}
		}
		raw, err := os.ReadFile(c.abs)
		if err != nil {
			continue
		}
		text := string(raw)
		if v, found := scanClassConstant(text, class, member); found {
			return entry{
				value:      v,
				enterprise: strings.Contains(text, r.marker),
				ok:         true,
			}
		}
	}
	return entry{}
}

// candidates returns the files matching the namespace's glob patterns,
// falling back to the default set, then to every candidate file.
func (r *Resolver) candidates(prefix string) []candidate {
	r.walkOnce.Do(r.walk)
	if r.walkErr != nil {
		return nil
	}

	globs := r.patterns[prefix]
	if len(globs) == 0 {
		globs = r.fallback
	}
	if len(globs) == 0 {
		return r.files
	}

	var matched []candidate
	for _, c := range r.files {
		for _, g := range globs {
			if g.Match(c.rel) {
				matched = append(matched, c)
				break
			}
		}
	}
	if len(matched) == 0 {
		return r.files
	}
	return matched
}

var sourceExtensions = map[string]bool{
	".h":   true,
	".hh":  true,
	".hpp": true,
	".cc":  true,
	".cpp": true,
	".cxx": true,
}

func (r *Resolver) walk() {
	r.walkErr = filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !sourceExtensions[filepath.Ext(path)] {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		r.files = append(r.files, candidate{rel: filepath.ToSlash(rel), abs: path})
		return nil
	})
}

// splitIdent splits a namespaced identifier into its first segment and
// its final segment ("defaults::cache_dir" -> "defaults", "cache_dir").
func splitIdent(ident string) (prefix, name string) {
	segments := strings.Split(ident, "::")
	if len(segments) == 1 {
		return "", ident
	}
	return segments[0], segments[len(segments)-1]
}

func lastSegment(ident string) string {
	segments := strings.Split(ident, "::")
	return segments[len(segments)-1]
}

// scanScalar matches brace-initialized and equals-initialized string
// constants, folding adjacent-literal concatenations.
func scanScalar(text, name string) (string, bool) {
	quoted := regexp.QuoteMeta(name)

	braceInit := regexp.MustCompile(`\b` + quoted + `\s*\{\s*"((?:[^"\\]|\\.)*)"\s*\}`)
	if m := braceInit.FindStringSubmatch(text); m != nil {
		return unescape(m[1]), true
	}

	equalsInit := regexp.MustCompile(`(?s)\b` + quoted + `\s*=\s*((?:"(?:[^"\\]|\\.)*"\s*)+);`)
	if m := equalsInit.FindStringSubmatch(text); m != nil {
		return foldLiterals(m[1]), true
	}
	return "", false
}

// scanArray matches `name = {…}` and `name = std::to_array…({…})`
// initializations, returning the raw top-level elements.
func scanArray(text, name string) ([]string, bool) {
	quoted := regexp.QuoteMeta(name)
	pattern := regexp.MustCompile(`(?s)\b` + quoted +
		`\s*=\s*(?:[\w:]+\s*(?:<[^>]*>)?\s*\(\s*)?\{(.*?)\}`)
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	var elems []string
	for _, elem := range splitElements(m[1]) {
		elem = strings.TrimSpace(elem)
		if elem != "" {
			elems = append(elems, elem)
		}
	}
	if len(elems) == 0 {
		return nil, false
	}
	return elems, true
}

// scanClassConstant locates a class or struct body and extracts a static
// string constant member from it.
func scanClassConstant(text, class, member string) (string, bool) {
	classPattern := regexp.MustCompile(`\b(?:class|struct)\s+` + regexp.QuoteMeta(class) + `\b`)
	loc := classPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	memberPattern := regexp.MustCompile(`\bstatic\s+(?:constexpr\s+|const\s+)?[\w:<>\s]*?\b` +
		regexp.QuoteMeta(member) +
		`\s*(?:=\s*"((?:[^"\\]|\\.)*)"|\{\s*"((?:[^"\\]|\\.)*)"\s*\})\s*;`)
	m := memberPattern.FindStringSubmatch(text[loc[0]:])
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return unescape(m[1]), true
	}
	return unescape(m[2]), true
}

// splitElements splits a brace-list body on commas outside string
// literals.
func splitElements(body string) []string {
	var (
		elems   []string
		start   int
		inned   bool
		escaped bool
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inned = !inned
		case c == ',' && !inned:
			elems = append(elems, body[start:i])
			start = i + 1
		}
	}
	elems = append(elems, body[start:])
	return elems
}

var literalPattern = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

// foldLiterals concatenates every quoted literal in an
// adjacent-string-literal sequence.
func foldLiterals(text string) string {
	var b strings.Builder
	for _, m := range literalPattern.FindAllStringSubmatch(text, -1) {
		b.WriteString(unescape(m[1]))
	}
	return b.String()
}

func unquote(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return unescape(text[1 : len(text)-1])
	}
	return text
}

func unescape(text string) string {
	if !strings.ContainsRune(text, '\\') {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) {
			i++
			switch text[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(text[i])
			}
			continue
		}
		b.WriteByte(text[i])
	}
	return b.String()
}
