package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	saves map[string][]string
	err   error
}

func (r *recorder) save(_ context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saves == nil {
		r.saves = map[string][]string{}
	}
	r.saves[key] = append(r.saves[key], value)
	return r.err
}

func (r *recorder) get(key string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saves[key]...)
}

func concat(pending, next string) string { return pending + next }

func TestDebouncer_CoalescesWithinWindow(t *testing.T) {
	rec := &recorder{}
	d := New[string](30*time.Millisecond, concat, rec.save)

	d.Submit("d1", "a")
	d.Submit("d1", "b")
	d.Submit("d1", "c")
	assert.True(t, d.Pending("d1"))

	require.Eventually(t, func() bool { return len(rec.get("d1")) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"abc"}, rec.get("d1"))
	assert.False(t, d.Pending("d1"))

	time.Sleep(60 * time.Millisecond)
	assert.Len(t, rec.get("d1"), 1)
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	rec := &recorder{}
	d := New[string](20*time.Millisecond, concat, rec.save)

	d.Submit("d1", "x")
	d.Submit("d2", "y")

	require.Eventually(t, func() bool {
		return len(rec.get("d1")) == 1 && len(rec.get("d2")) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"y"}, rec.get("d2"))
}

func TestDebouncer_FlushSavesImmediately(t *testing.T) {
	rec := &recorder{}
	d := New[string](time.Hour, concat, rec.save)

	d.Submit("d1", "a")
	d.Submit("d1", "b")

	flushed, err := d.Flush(context.Background(), "d1")
	require.NoError(t, err)
	assert.True(t, flushed)
	assert.Equal(t, []string{"ab"}, rec.get("d1"))

	flushed, err = d.Flush(context.Background(), "d1")
	require.NoError(t, err)
	assert.False(t, flushed)
}

func TestDebouncer_CancelDropsUpdate(t *testing.T) {
	rec := &recorder{}
	d := New[string](20*time.Millisecond, concat, rec.save)

	d.Submit("d1", "a")
	assert.True(t, d.Cancel("d1"))
	assert.False(t, d.Cancel("d1"))

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.get("d1"))
}

func TestDebouncer_CancelWaitsForRunningSave(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished bool
	var mu sync.Mutex
	d := New[string](time.Millisecond, concat, func(context.Context, string, string) error {
		close(started)
		<-release
		mu.Lock()
		finished = true
		mu.Unlock()
		return nil
	})

	d.Submit("d1", "a")
	<-started

	cancelled := make(chan bool)
	go func() { cancelled <- d.Cancel("d1") }()

	select {
	case <-cancelled:
		t.Fatal("Cancel returned while the save was still running")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	select {
	case ok := <-cancelled:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Cancel did not return after the save finished")
	}
	mu.Lock()
	assert.True(t, finished)
	mu.Unlock()
}

func TestDebouncer_FlushAllCountsFailures(t *testing.T) {
	rec := &recorder{err: errors.New("db down")}
	d := New[string](time.Hour, concat, rec.save)

	d.Submit("d1", "a")
	d.Submit("d2", "b")

	failed := d.FlushAll(context.Background())
	assert.Equal(t, 2, failed)
	assert.False(t, d.Pending("d1"))
	assert.False(t, d.Pending("d2"))
}

func TestDebouncer_PeekAndTake(t *testing.T) {
	rec := &recorder{}
	d := New[string](time.Hour, concat, rec.save)

	_, ok := d.Peek("d1")
	assert.False(t, ok)

	d.Submit("d1", "a")
	d.Submit("d1", "b")

	v, ok := d.Peek("d1")
	require.True(t, ok)
	assert.Equal(t, "ab", v)
	assert.True(t, d.Pending("d1"))

	v, ok = d.Take("d1")
	require.True(t, ok)
	assert.Equal(t, "ab", v)
	assert.False(t, d.Pending("d1"))
	assert.Empty(t, rec.get("d1"))
}
