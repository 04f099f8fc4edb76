package extractor

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ErrNoPairs is returned when a scan finds no declaration/definition
// pairs at all.
var ErrNoPairs = errors.New("no declaration/definition file pairs found")

// DefaultDeclarationExtensions and DefaultDefinitionExtensions are the
// extension families used for pairing when the configuration does not
// override them.
var (
	DefaultDeclarationExtensions = []string{".h", ".hpp", ".hh"}
	DefaultDefinitionExtensions  = []string{".cc", ".cpp", ".cxx"}
)

// FilePair is one declaration file joined with its definition file by
// base name within the same directory.
type FilePair struct {
	// Declaration and Definition are absolute (or root-relative)
	// filesystem paths.
	Declaration string
	Definition  string

	// RelDeclaration is the declaration path relative to the scan root,
	// slash-separated. It is recorded on every extracted property.
	RelDeclaration string

	// Base is the shared file base name, used for progress reporting.
	Base string
}

// compiledPattern holds both the pattern string and its compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery walks a source tree and pairs declaration files with their
// definition partners.
type Discovery struct {
	rootDir        string
	recursive      bool
	declExtensions map[string]bool
	defExtensions  map[string]bool
	ignorePatterns []compiledPattern
}

// DiscoveryOptions configures a Discovery. Empty extension lists fall
// back to the defaults.
type DiscoveryOptions struct {
	Recursive             bool
	DeclarationExtensions []string
	DefinitionExtensions  []string
	IgnorePatterns        []string
}

// NewDiscovery builds a Discovery rooted at rootDir. The root must
// exist; a missing input path is a startup error, not a recoverable
// one.
func NewDiscovery(rootDir string, opts DiscoveryOptions) (*Discovery, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("source path %q: %w", rootDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %q is not a directory", rootDir)
	}

	d := &Discovery{
		rootDir:        rootDir,
		recursive:      opts.Recursive,
		declExtensions: extensionSet(opts.DeclarationExtensions, DefaultDeclarationExtensions),
		defExtensions:  extensionSet(opts.DefinitionExtensions, DefaultDefinitionExtensions),
	}

	for _, pattern := range opts.IgnorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling ignore pattern %q: %w", pattern, err)
		}
		d.ignorePatterns = append(d.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return d, nil
}

func extensionSet(exts, fallback []string) map[string]bool {
	if len(exts) == 0 {
		exts = fallback
	}
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// DiscoverPairs walks the tree and returns pairs sorted by declaration
// path. Declaration files without a definition partner are skipped with
// a warning.
func (d *Discovery) DiscoverPairs() ([]FilePair, error) {
	type group struct {
		declaration string
		definition  string
	}
	groups := make(map[string]*group)

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(d.rootDir, path)
		if relErr != nil {
			return relErr
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if path == d.rootDir {
				return nil
			}
			if !d.recursive || d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.shouldIgnore(relPath) {
			return nil
		}

		ext := filepath.Ext(path)
		key := strings.TrimSuffix(relPath, ext)
		switch {
		case d.declExtensions[ext]:
			g := groups[key]
			if g == nil {
				g = &group{}
				groups[key] = g
			}
			g.declaration = path
		case d.defExtensions[ext]:
			g := groups[key]
			if g == nil {
				g = &group{}
				groups[key] = g
			}
			g.definition = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", d.rootDir, err)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var pairs []FilePair
	for _, key := range keys {
		g := groups[key]
		if g.declaration == "" {
			continue
		}
		if g.definition == "" {
			log.Printf("Warning: no definition file for %s, skipping", key)
			continue
		}
		rel, err := filepath.Rel(d.rootDir, g.declaration)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, FilePair{
			Declaration:    g.declaration,
			Definition:     g.definition,
			RelDeclaration: filepath.ToSlash(rel),
			Base:           filepath.Base(key),
		})
	}
	return pairs, nil
}

// shouldIgnore checks a relative path against the ignore patterns,
// including the directory form (an ignored directory prunes its whole
// subtree).
func (d *Discovery) shouldIgnore(relPath string) bool {
	if d.matchesAnyPattern(relPath) {
		return true
	}
	return d.matchesAnyPattern(relPath + "/**")
}

func (d *Discovery) matchesAnyPattern(path string) bool {
	for _, cp := range d.ignorePatterns {
		if cp.glob.Match(path) {
			return true
		}
	}
	return false
}
