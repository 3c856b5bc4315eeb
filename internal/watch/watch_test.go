package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "dirstate")
	other := filepath.Join(dir, "other")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0644))

	w, err := New(target, 10*time.Millisecond, nil)
	require.NoError(t, err)

	calls := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error {
			calls <- struct{}{}
			return errors.New("logged, not fatal")
		})
	}()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	select {
	case <-calls:
		t.Fatal("callback fired for another file")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(target, []byte("b"), 0644))
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not called after write")
	}

	// Replacing the file by rename also counts.
	tmp := filepath.Join(dir, "dirstate.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("c"), 0644))
	require.NoError(t, os.Rename(tmp, target))
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not called after rename")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "dirstate"), 0, nil)
	assert.Error(t, err)
}
