// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/assetconv/internal/convert"
	"github.com/pdiddy/assetconv/pkg/types"
)

// fakeConverter handles .less files and records every conversion.
type fakeConverter struct {
	mu     sync.Mutex
	assets []string
}

func (f *fakeConverter) Handles(asset string) bool {
	return strings.HasSuffix(asset, ".less")
}

func (f *fakeConverter) ConvertAsset(ctx context.Context, asset, basePath string) (convert.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets = append(f.assets, asset)
	return convert.Outcome{Result: strings.TrimSuffix(asset, "less") + "css", Status: types.ConversionDone}, nil
}

func (f *fakeConverter) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.assets...)
}

func (f *fakeConverter) saw(asset string) bool {
	for _, a := range f.seen() {
		if a == asset {
			return true
		}
	}
	return false
}

func startWatcher(t *testing.T, base string, conv AssetConverter) {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	w := New(conv, base, log)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, ready) }()

	select {
	case <-ready:
	case err := <-done:
		cancel()
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watcher did not become ready")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
}

func TestWatcherConvertsWrittenAssets(t *testing.T) {
	base := t.TempDir()
	conv := &fakeConverter{}
	startWatcher(t, base, conv)

	require.NoError(t, os.WriteFile(filepath.Join(base, "site.less"), []byte("a{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "notes.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return conv.saw("site.less") }, 5*time.Second, 20*time.Millisecond)
	for _, a := range conv.seen() {
		assert.NotEqual(t, "notes.txt", a)
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	base := t.TempDir()
	conv := &fakeConverter{}
	startWatcher(t, base, conv)

	sub := filepath.Join(base, "theme")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// The new directory is added asynchronously; keep touching the file
	// until the watcher picks it up.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(sub, "dark.less"), []byte("b{}"), 0o644)
		return conv.saw("theme/dark.less")
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcherSkipsHiddenDirectories(t *testing.T) {
	base := t.TempDir()
	hidden := filepath.Join(base, ".cache")
	require.NoError(t, os.Mkdir(hidden, 0o755))

	conv := &fakeConverter{}
	startWatcher(t, base, conv)

	require.NoError(t, os.WriteFile(filepath.Join(hidden, "x.less"), []byte("c{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "y.less"), []byte("d{}"), 0o644))

	require.Eventually(t, func() bool { return conv.saw("y.less") }, 5*time.Second, 20*time.Millisecond)
	assert.False(t, conv.saw(".cache/x.less"))
}

func TestRunMissingBasePath(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	w := New(&fakeConverter{}, filepath.Join(t.TempDir(), "missing"), log)
	err := w.Run(context.Background(), nil)
	require.Error(t, err)
}
