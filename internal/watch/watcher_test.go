package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mycelica/patchscan/internal/patch"
)

type scanEvent struct {
	res *patch.Result
	err error
}

func startWatcher(t *testing.T, path string) (*Watcher, <-chan scanEvent, <-chan error) {
	t.Helper()
	events := make(chan scanEvent, 16)
	w, err := New(Config{
		Path:       path,
		DebounceMs: 20,
		Handler: func(res *patch.Result, err error) {
			events <- scanEvent{res, err}
		},
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	t.Cleanup(w.Stop)
	return w, events, done
}

func next(t *testing.T, events <-chan scanEvent) scanEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rescan")
		return scanEvent{}
	}
}

func TestWatcher_RescansOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.pd")
	require.NoError(t, os.WriteFile(path, []byte("#X obj 0 0 osc~;\n"), 0o644))

	w, events, done := startWatcher(t, path)

	initial := next(t, events)
	require.NoError(t, initial.err)
	assert.Len(t, initial.res.Nodes, 1)

	require.NoError(t, os.WriteFile(path, []byte("#X obj 0 0 osc~;\n#X obj 0 30 dac~;\n#X connect 0 0 1 0;\n"), 0o644))

	// a truncate and a write may surface as separate rescans
	var updated scanEvent
	for i := 0; i < 3; i++ {
		updated = next(t, events)
		if updated.err == nil && len(updated.res.Nodes) == 2 {
			break
		}
	}
	require.NoError(t, updated.err)
	assert.Len(t, updated.res.Nodes, 2)
	assert.Len(t, updated.res.Connections, 1)

	w.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.pd")
	require.NoError(t, os.WriteFile(path, []byte("#X obj 0 0 f;\n"), 0o644))

	_, events, _ := startWatcher(t, path)
	next(t, events)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.pd"), []byte("#X obj 0 0 g;\n"), 0o644))

	select {
	case ev := <-events:
		t.Fatalf("unexpected rescan for sibling file: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.pd")
	require.NoError(t, os.WriteFile(path, []byte("#X obj 0 0 f;\n"), 0o644))

	_, events, _ := startWatcher(t, path)
	next(t, events)

	require.NoError(t, os.Remove(path))

	ev := next(t, events)
	assert.ErrorIs(t, ev.err, os.ErrNotExist)
	assert.Nil(t, ev.res)
}

func TestWatcher_ContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.pd")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	w, err := New(Config{Path: path, Handler: func(*patch.Result, error) {}})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
}

func TestNew_RequiresHandler(t *testing.T) {
	_, err := New(Config{Path: "x.pd"})
	assert.Error(t, err)
}
