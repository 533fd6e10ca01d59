// Package autosave coalesces bursts of partial updates into one write per
// key after a quiet window.
package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/utils"
)

// SaveFunc persists the merged value for key.
type SaveFunc[T any] func(ctx context.Context, key string, value T) error

// MergeFunc folds a newer update into the pending one.
type MergeFunc[T any] func(pending, next T) T

type entry[T any] struct {
	value T
	timer *time.Timer
	gen   uint64
}

// inflight counts timer saves running for one key.
type inflight struct {
	wg sync.WaitGroup
	n  int
}

type Debouncer[T any] struct {
	mu      sync.Mutex
	wait    time.Duration
	save    SaveFunc[T]
	merge   MergeFunc[T]
	pending map[string]*entry[T]
	saving  map[string]*inflight
	gen     uint64
	wg      sync.WaitGroup
}

func New[T any](wait time.Duration, merge MergeFunc[T], save SaveFunc[T]) *Debouncer[T] {
	return &Debouncer[T]{
		wait:    wait,
		save:    save,
		merge:   merge,
		pending: make(map[string]*entry[T]),
		saving:  make(map[string]*inflight),
	}
}

// Submit merges value into the pending update for key and restarts its timer.
func (d *Debouncer[T]) Submit(key string, value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
		e.value = d.merge(e.value, value)
		e.gen = d.gen
		e.timer = d.schedule(key, e.gen)
		return
	}
	e := &entry[T]{value: value, gen: d.gen}
	e.timer = d.schedule(key, e.gen)
	d.pending[key] = e
}

// schedule must be called with mu held.
func (d *Debouncer[T]) schedule(key string, gen uint64) *time.Timer {
	return time.AfterFunc(d.wait, func() {
		d.fire(key, gen)
	})
}

func (d *Debouncer[T]) fire(key string, gen uint64) {
	d.mu.Lock()
	e, ok := d.pending[key]
	// A newer Submit, Flush or Cancel superseded this timer.
	if !ok || e.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	f, ok := d.saving[key]
	if !ok {
		f = &inflight{}
		d.saving[key] = f
	}
	f.n++
	f.wg.Add(1)
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		if f.n--; f.n == 0 {
			delete(d.saving, key)
		}
		d.mu.Unlock()
		f.wg.Done()
	}()
	if err := d.save(context.Background(), key, e.value); err != nil {
		utils.Zlog.Error("Autosave failed", zap.String("key", key), zap.Error(err))
	}
}

// Pending reports whether key has an unsaved update.
func (d *Debouncer[T]) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Flush saves the pending update for key now. It returns false when there
// was nothing pending.
func (d *Debouncer[T]) Flush(ctx context.Context, key string) (bool, error) {
	e, ok := d.take(key)
	if !ok {
		return false, nil
	}
	return true, d.save(ctx, key, e.value)
}

// Cancel drops the pending update for key and waits for a timer save of
// key that already started, so the caller can delete what it was saving.
func (d *Debouncer[T]) Cancel(key string) bool {
	_, ok := d.take(key)

	d.mu.Lock()
	f := d.saving[key]
	d.mu.Unlock()
	if f != nil {
		f.wg.Wait()
	}
	return ok
}

// Peek returns the pending update for key without touching its timer.
func (d *Debouncer[T]) Peek(key string) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.pending[key]; ok {
		return e.value, true
	}
	var zero T
	return zero, false
}

// Take removes and returns the pending update for key so the caller can
// fold it into its own write.
func (d *Debouncer[T]) Take(key string) (T, bool) {
	e, ok := d.take(key)
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (d *Debouncer[T]) take(key string) (*entry[T], bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.pending[key]
	if !ok {
		return nil, false
	}
	e.timer.Stop()
	delete(d.pending, key)
	return e, true
}

// FlushAll saves every pending update and waits for in-flight timer saves.
// It returns the number of failed saves.
func (d *Debouncer[T]) FlushAll(ctx context.Context) int {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	d.mu.Unlock()

	failed := 0
	for _, k := range keys {
		if _, err := d.Flush(ctx, k); err != nil {
			utils.Zlog.Error("Autosave flush failed", zap.String("key", k), zap.Error(err))
			failed++
		}
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return failed
}
