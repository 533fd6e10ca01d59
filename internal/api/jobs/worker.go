package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

// Job is one queued sync. Retries reuse the same run id.
type Job struct {
	ID         string
	Kind       types.SyncKind
	CreatedAt  time.Time
	RetryCount int // Track retry attempts to prevent infinite loops
}

const (
	maxJobRetries = 3
	jobTimeout    = 10 * time.Minute
)

// Handler runs a job and returns the number of records it wrote.
type Handler func(ctx context.Context, job Job) (int, error)

// RunStore records job progress.
type RunStore interface {
	CreateSyncRun(ctx context.Context, run types.SyncRun) error
	UpdateSyncRun(ctx context.Context, run types.SyncRun) error
	LatestSyncRun(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error)
}

type WorkerPool struct {
	jobs       chan Job
	quit       chan struct{}
	started    bool
	wg         sync.WaitGroup
	numWorkers int
	runs       RunStore
	handlers   map[types.SyncKind]Handler
}

func NewWorkerPool(numWorkers int, queueCapacity int, runs RunStore) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = 100
	}
	return &WorkerPool{
		jobs:       make(chan Job, queueCapacity),
		quit:       make(chan struct{}),
		numWorkers: numWorkers,
		runs:       runs,
		handlers:   make(map[types.SyncKind]Handler),
	}
}

// SetHandler registers the function that runs jobs of kind. Call before Start.
func (wp *WorkerPool) SetHandler(kind types.SyncKind, fn Handler) {
	wp.handlers[kind] = fn
}

func (wp *WorkerPool) Start() {
	if wp.started {
		return
	}
	wp.started = true
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go func(workerID int) {
			defer wp.wg.Done()
			utils.Zlog.Info("Worker started", zap.Int("workerId", workerID))
			for {
				select {
				case <-wp.quit:
					utils.Zlog.Info("Worker stopping", zap.Int("workerId", workerID))
					return
				case job := <-wp.jobs:
					wp.processJob(workerID, job)
				}
			}
		}(i + 1)
	}
}

func (wp *WorkerPool) Stop(ctx context.Context) {
	if !wp.started {
		return
	}
	close(wp.quit)
	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		utils.Zlog.Warn("Timeout waiting for workers to stop")
	case <-done:
		utils.Zlog.Info("All workers stopped")
	}
}

// Enqueue never blocks; it returns false when the pool is stopping or full.
func (wp *WorkerPool) Enqueue(job Job) bool {
	select {
	case <-wp.quit:
		return false
	default:
	}
	select {
	case wp.jobs <- job:
		return true
	default:
		return false
	}
}

func (wp *WorkerPool) processJob(workerID int, job Job) {
	start := time.Now()
	utils.Zlog.Info("Processing sync job",
		zap.Int("workerId", workerID),
		zap.String("jobId", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.Int("retryCount", job.RetryCount))

	handler, ok := wp.handlers[job.Kind]
	if !ok {
		wp.finish(job, 0, fmt.Errorf("no handler for %s jobs", job.Kind))
		return
	}

	wp.updateRun(types.SyncRun{ID: job.ID, Kind: job.Kind, Status: types.StatusProcessing})

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	count, err := handler(ctx, job)
	if err != nil {
		utils.Zlog.Error("Sync job failed",
			zap.Int("workerId", workerID),
			zap.String("jobId", job.ID),
			zap.String("kind", string(job.Kind)),
			zap.Error(err))
		wp.retry(workerID, job, err)
		return
	}

	utils.Zlog.Info("Completed sync job",
		zap.Int("workerId", workerID),
		zap.String("jobId", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.Int("records", count),
		zap.Duration("duration", time.Since(start)))

	wp.finish(job, count, nil)
}

// retry requeues a failed job, marking its run failed once retries run out
// or the queue is full.
func (wp *WorkerPool) retry(workerID int, job Job, cause error) {
	if job.RetryCount >= maxJobRetries {
		utils.Zlog.Error("Max retries exceeded for sync job, marking run as failed",
			zap.Int("workerId", workerID),
			zap.String("jobId", job.ID),
			zap.Int("retryCount", job.RetryCount))
		wp.finish(job, 0, cause)
		return
	}

	retryJob := job
	retryJob.RetryCount++
	retryJob.CreatedAt = time.Now().UTC()

	if ok := wp.Enqueue(retryJob); !ok {
		utils.Zlog.Error("Failed to requeue sync job (queue full), marking run as failed",
			zap.Int("workerId", workerID),
			zap.String("jobId", job.ID))
		wp.finish(job, 0, cause)
		return
	}

	utils.Zlog.Info("Requeued sync job for retry",
		zap.Int("workerId", workerID),
		zap.String("jobId", job.ID),
		zap.Int("retryCount", retryJob.RetryCount))
}

func (wp *WorkerPool) finish(job Job, count int, err error) {
	now := time.Now().UTC()
	run := types.SyncRun{
		ID:          job.ID,
		Kind:        job.Kind,
		Status:      types.StatusCompleted,
		RecordCount: count,
		FinishedAt:  &now,
	}
	if err != nil {
		run.Status = types.StatusFailed
		run.Error = err.Error()
	}
	wp.updateRun(run)
}

func (wp *WorkerPool) updateRun(run types.SyncRun) {
	if wp.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := wp.runs.UpdateSyncRun(ctx, run); err != nil {
		utils.Zlog.Error("Failed to update sync run",
			zap.String("jobId", run.ID),
			zap.String("status", string(run.Status)),
			zap.Error(err))
	}
}
