package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Watcher:
// - New creates a watcher over a valid source tree
// - New returns an error for a missing root
// - Single file change fires the callback after the debounce period
// - Multiple file changes within the window are batched into one callback
// - Repeated writes to one file are deduplicated within a batch
// - Unmonitored extensions never fire the callback
// - Pause accumulates changes, Resume fires them immediately
// - A directory created under the root is watched recursively
// - Stop is idempotent and safe without Start
// - Context cancellation stops the watch loop

// Test: New creates a watcher over a valid source tree
func TestNew_Success(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	w, err := New(tempDir, []string{".h", ".cc"}, 0)
	require.NoError(t, err)
	require.NotNil(t, w)

	require.NoError(t, w.Stop())
}

// Test: New returns an error for a missing root
func TestNew_InvalidDirectory(t *testing.T) {
	t.Parallel()

	nonexistent := filepath.Join(t.TempDir(), "nonexistent")

	w, err := New(nonexistent, []string{".h"}, 0)
	assert.Error(t, err)
	assert.Nil(t, w)
}

// Test: Single file change fires the callback after the debounce period
func TestWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	w, err := New(tempDir, []string{".h", ".cc"}, 150*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var callbackMu sync.Mutex
	var callbackFiles []string
	callbackCalled := make(chan struct{}, 1)

	callback := func(files []string) {
		callbackMu.Lock()
		callbackFiles = files
		callbackMu.Unlock()
		callbackCalled <- struct{}{}
	}

	require.NoError(t, w.Start(context.Background(), callback))
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tempDir, "configuration.cc")
	require.NoError(t, os.WriteFile(testFile, []byte("// impl"), 0644))

	select {
	case <-callbackCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}

	callbackMu.Lock()
	defer callbackMu.Unlock()
	assert.Equal(t, 1, len(callbackFiles))
	assert.Contains(t, callbackFiles, testFile)
}

// Test: Multiple file changes within the window are batched into one callback
func TestWatcher_BatchesMultipleChanges(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	w, err := New(tempDir, []string{".h", ".cc"}, 300*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var callbackMu sync.Mutex
	var callbackFiles []string
	callbackCalled := make(chan struct{}, 1)

	callback := func(files []string) {
		callbackMu.Lock()
		callbackFiles = files
		callbackMu.Unlock()
		callbackCalled <- struct{}{}
	}

	require.NoError(t, w.Start(context.Background(), callback))
	time.Sleep(100 * time.Millisecond)

	header := filepath.Join(tempDir, "configuration.h")
	impl := filepath.Join(tempDir, "configuration.cc")
	other := filepath.Join(tempDir, "node_config.h")

	require.NoError(t, os.WriteFile(header, []byte("// decl"), 0644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(impl, []byte("// impl"), 0644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("// decl"), 0644))

	select {
	case <-callbackCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}

	callbackMu.Lock()
	defer callbackMu.Unlock()
	assert.Equal(t, 3, len(callbackFiles))
	assert.Contains(t, callbackFiles, header)
	assert.Contains(t, callbackFiles, impl)
	assert.Contains(t, callbackFiles, other)
}

// Test: Repeated writes to one file are deduplicated within a batch
func TestWatcher_DeduplicatesRapidWrites(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	w, err := New(tempDir, []string{".cc"}, 300*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var callbackMu sync.Mutex
	var callbackFiles []string
	callbackCalled := make(chan struct{}, 1)

	callback := func(files []string) {
		callbackMu.Lock()
		callbackFiles = files
		callbackMu.Unlock()
		callbackCalled <- struct{}{}
	}

	require.NoError(t, w.Start(context.Background(), callback))
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tempDir, "configuration.cc")
	require.NoError(t, os.WriteFile(testFile, []byte("// v1"), 0644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(testFile, []byte("// v2"), 0644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(testFile, []byte("// v3"), 0644))

	select {
	case <-callbackCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}

	callbackMu.Lock()
	defer callbackMu.Unlock()
	assert.Equal(t, []string{testFile}, callbackFiles)
}

// Test: Unmonitored extensions never fire the callback
func TestWatcher_ExtensionFiltering(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	w, err := New(tempDir, []string{".h"}, 150*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var callbackMu sync.Mutex
	var callbackFiles []string
	callbackCalled := make(chan struct{}, 1)

	callback := func(files []string) {
		callbackMu.Lock()
		callbackFiles = files
		callbackMu.Unlock()
		callbackCalled <- struct{}{}
	}

	require.NoError(t, w.Start(context.Background(), callback))
	time.Sleep(100 * time.Millisecond)

	// These must not trigger anything
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.md"), []byte("notes"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "Makefile"), []byte("all:"), 0644))

	select {
	case <-callbackCalled:
		t.Fatal("Callback fired for unmonitored extensions")
	case <-time.After(400 * time.Millisecond):
	}

	// A monitored extension still works
	header := filepath.Join(tempDir, "configuration.h")
	require.NoError(t, os.WriteFile(header, []byte("// decl"), 0644))

	select {
	case <-callbackCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}

	callbackMu.Lock()
	defer callbackMu.Unlock()
	assert.Equal(t, []string{header}, callbackFiles)
}

// Test: Pause accumulates changes, Resume fires them immediately
func TestWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	w, err := New(tempDir, []string{".cc"}, 150*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var callbackMu sync.Mutex
	var callbackFiles []string
	callbackCalled := make(chan struct{}, 1)

	callback := func(files []string) {
		callbackMu.Lock()
		callbackFiles = files
		callbackMu.Unlock()
		callbackCalled <- struct{}{}
	}

	require.NoError(t, w.Start(context.Background(), callback))
	time.Sleep(100 * time.Millisecond)

	w.Pause()

	testFile := filepath.Join(tempDir, "configuration.cc")
	require.NoError(t, os.WriteFile(testFile, []byte("// impl"), 0644))

	// Past the debounce window, still nothing while paused
	select {
	case <-callbackCalled:
		t.Fatal("Callback fired while paused")
	case <-time.After(400 * time.Millisecond):
	}

	// Resume flushes the accumulated batch synchronously
	w.Resume()

	select {
	case <-callbackCalled:
	case <-time.After(time.Second):
		t.Fatal("Callback not called after Resume")
	}

	callbackMu.Lock()
	defer callbackMu.Unlock()
	assert.Equal(t, []string{testFile}, callbackFiles)
}

// Test: A directory created under the root is watched recursively
func TestWatcher_NewDirectoryWatched(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	w, err := New(tempDir, []string{".cc"}, 150*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var callbackMu sync.Mutex
	var callbackFiles []string
	callbackCalled := make(chan struct{}, 1)

	callback := func(files []string) {
		callbackMu.Lock()
		callbackFiles = files
		callbackMu.Unlock()
		callbackCalled <- struct{}{}
	}

	require.NoError(t, w.Start(context.Background(), callback))
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(tempDir, "cluster")
	require.NoError(t, os.Mkdir(subDir, 0755))

	// Give the event loop time to add the new directory
	time.Sleep(300 * time.Millisecond)

	testFile := filepath.Join(subDir, "configuration.cc")
	require.NoError(t, os.WriteFile(testFile, []byte("// impl"), 0644))

	select {
	case <-callbackCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}

	callbackMu.Lock()
	defer callbackMu.Unlock()
	assert.Contains(t, callbackFiles, testFile)
}

// Test: Stop is idempotent and safe without Start
func TestWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	w, err := New(tempDir, []string{".h"}, 0)
	require.NoError(t, err)

	// Never started
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	started, err := New(tempDir, []string{".h"}, 0)
	require.NoError(t, err)
	require.NoError(t, started.Start(context.Background(), func([]string) {}))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Stop()
		}()
	}
	wg.Wait()
}

// Test: Context cancellation stops the watch loop
func TestWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	w, err := New(tempDir, []string{".h"}, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, func([]string) {}))

	cancel()

	// Stop must not hang once the context is cancelled
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}
