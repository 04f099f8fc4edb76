package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for pair discovery:
// - NewDiscovery returns error for a missing root
// - NewDiscovery returns error when the root is a regular file
// - NewDiscovery returns error for an invalid ignore pattern
// - Pairs join declaration and definition by base name in the same directory
// - Pairs come back sorted by declaration path
// - Declaration files without a definition partner are skipped
// - Definition files without a declaration are not paired
// - Non-recursive discovery stays in the top-level directory
// - Ignore patterns prune whole directories and single files
// - Extension families are configurable

func writeSourceFile(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("// placeholder\n"), 0644))
	return path
}

// Test: NewDiscovery returns error for a missing root
func TestNewDiscovery_MissingRoot(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nonexistent")
	d, err := NewDiscovery(missing, DiscoveryOptions{})
	assert.Error(t, err)
	assert.Nil(t, d)
}

// Test: NewDiscovery returns error when the root is a regular file
func TestNewDiscovery_RootIsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeSourceFile(t, root, "config.h")

	d, err := NewDiscovery(path, DiscoveryOptions{})
	assert.Error(t, err)
	assert.Nil(t, d)
}

// Test: NewDiscovery returns error for an invalid ignore pattern
func TestNewDiscovery_BadIgnorePattern(t *testing.T) {
	t.Parallel()

	d, err := NewDiscovery(t.TempDir(), DiscoveryOptions{IgnorePatterns: []string{"["}})
	assert.Error(t, err)
	assert.Nil(t, d)
}

// Test: Pairs join by base name, sorted by declaration path
func TestDiscoverPairs_PairsAndSorting(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSourceFile(t, root, "zebra/config.h")
	writeSourceFile(t, root, "zebra/config.cc")
	writeSourceFile(t, root, "alpha/settings.h")
	writeSourceFile(t, root, "alpha/settings.cc")
	writeSourceFile(t, root, "alpha/stray.h")   // no definition partner
	writeSourceFile(t, root, "alpha/orphan.cc") // no declaration
	writeSourceFile(t, root, "alpha/notes.md")  // not a source file

	d, err := NewDiscovery(root, DiscoveryOptions{Recursive: true})
	require.NoError(t, err)

	pairs, err := d.DiscoverPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, "alpha/settings.h", pairs[0].RelDeclaration)
	assert.Equal(t, "settings", pairs[0].Base)
	assert.Equal(t, filepath.Join(root, "alpha", "settings.cc"), pairs[0].Definition)

	assert.Equal(t, "zebra/config.h", pairs[1].RelDeclaration)
	assert.Equal(t, "config", pairs[1].Base)
}

// Test: A declaration pairs with any definition extension in the family
func TestDiscoverPairs_MixedExtensionFamilies(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSourceFile(t, root, "a.hpp")
	writeSourceFile(t, root, "a.cpp")
	writeSourceFile(t, root, "b.hh")
	writeSourceFile(t, root, "b.cxx")

	d, err := NewDiscovery(root, DiscoveryOptions{Recursive: true})
	require.NoError(t, err)

	pairs, err := d.DiscoverPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a.hpp", pairs[0].RelDeclaration)
	assert.Equal(t, "b.hh", pairs[1].RelDeclaration)
}

// Test: Same base name in different directories does not pair
func TestDiscoverPairs_DifferentDirectoriesDoNotPair(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSourceFile(t, root, "include/config.h")
	writeSourceFile(t, root, "src/config.cc")

	d, err := NewDiscovery(root, DiscoveryOptions{Recursive: true})
	require.NoError(t, err)

	pairs, err := d.DiscoverPairs()
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

// Test: Non-recursive discovery stays in the top-level directory
func TestDiscoverPairs_NonRecursive(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSourceFile(t, root, "top.h")
	writeSourceFile(t, root, "top.cc")
	writeSourceFile(t, root, "nested/deep.h")
	writeSourceFile(t, root, "nested/deep.cc")

	d, err := NewDiscovery(root, DiscoveryOptions{})
	require.NoError(t, err)

	pairs, err := d.DiscoverPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "top.h", pairs[0].RelDeclaration)
}

// Test: Ignore patterns prune whole directories and single files
func TestDiscoverPairs_IgnorePatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSourceFile(t, root, "keep/a.h")
	writeSourceFile(t, root, "keep/a.cc")
	writeSourceFile(t, root, "generated/gen.h")
	writeSourceFile(t, root, "generated/gen.cc")
	writeSourceFile(t, root, "keep/skip.h")
	writeSourceFile(t, root, "keep/skip.cc")

	d, err := NewDiscovery(root, DiscoveryOptions{
		Recursive:      true,
		IgnorePatterns: []string{"generated/**", "keep/skip.h"},
	})
	require.NoError(t, err)

	pairs, err := d.DiscoverPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "keep/a.h", pairs[0].RelDeclaration)
}

// Test: Extension families are configurable
func TestDiscoverPairs_CustomExtensions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSourceFile(t, root, "x.hdr")
	writeSourceFile(t, root, "x.impl")
	writeSourceFile(t, root, "y.h")
	writeSourceFile(t, root, "y.cc")

	d, err := NewDiscovery(root, DiscoveryOptions{
		Recursive:             true,
		DeclarationExtensions: []string{".hdr"},
		DefinitionExtensions:  []string{"impl"},
	})
	require.NoError(t, err)

	pairs, err := d.DiscoverPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "x.hdr", pairs[0].RelDeclaration)
}
