package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		op       fsnotify.Op
		want     ChangeType
		relevant bool
	}{
		{fsnotify.Write, ChangeTypeWrite, true},
		{fsnotify.Create, ChangeTypeWrite, true},
		{fsnotify.Remove, ChangeTypeRemove, true},
		{fsnotify.Rename, ChangeTypeRemove, true},
		{fsnotify.Chmod, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, relevant := Classify(tt.op)
			assert.Equal(t, tt.relevant, relevant)
			if relevant {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDebouncerMergesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 20*time.Millisecond, time.Second)
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		in <- ChangeEvent{Type: ChangeTypeWrite, Paths: []string{"data.json"}}
	}

	select {
	case ev := <-d.Output():
		assert.Equal(t, ChangeTypeWrite, ev.Type)
		assert.Len(t, ev.Paths, 5)
	case <-time.After(2 * time.Second):
		t.Fatal("no debounced event")
	}

	select {
	case ev := <-d.Output():
		t.Fatalf("unexpected second event %+v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	in := make(chan ChangeEvent, 2)
	d := NewDebouncer(in, time.Hour, time.Hour)
	d.Start(context.Background())

	in <- ChangeEvent{Type: ChangeTypeRemove, Paths: []string{"a"}}
	in <- ChangeEvent{Type: ChangeTypeWrite, Paths: []string{"a"}}
	close(in)

	var got []ChangeType
	for ev := range d.Output() {
		got = append(got, ev.Type)
	}
	assert.Equal(t, []ChangeType{ChangeTypeRemove, ChangeTypeWrite}, got)
}

func TestWatchReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	reload := func(context.Context) (bool, error) {
		calls.Add(1)
		return true, nil
	}
	cfg := Config{QuietPeriod: 20 * time.Millisecond, MaxWait: 200 * time.Millisecond}
	require.NoError(t, Watch(ctx, path, cfg, reload))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"case-1"}]`), 0o644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "data.json"), DefaultConfig(),
		func(context.Context) (bool, error) { return false, nil })
	assert.Error(t, err)
}
