package threadkit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/ygrebnov/threadkit/metrics"
	"github.com/ygrebnov/threadkit/pool"
)

const (
	metricTasksSpawned  = "threadkit_tasks_spawned_total"
	metricTasksFailed   = "threadkit_tasks_failed_total"
	metricTasksInflight = "threadkit_tasks_inflight"
	metricTaskDuration  = "threadkit_task_duration_seconds"
)

// worker is the pooled execution slot a task runs on. Its id is exposed to tasks via WorkerID.
type worker struct {
	id int
}

type taskInfoKey struct{}

// taskInfo is attached to the context a task runs with.
type taskInfo struct {
	id     uuid.UUID
	worker int
}

// WorkerID returns the id of the pool worker executing the task that owns ctx.
func WorkerID(ctx context.Context) (int, bool) {
	ti, ok := ctx.Value(taskInfoKey{}).(taskInfo)
	return ti.worker, ok
}

// TaskID returns the handle id of the task that owns ctx.
func TaskID(ctx context.Context) (uuid.UUID, bool) {
	ti, ok := ctx.Value(taskInfoKey{}).(taskInfo)
	return ti.id, ok
}

// Progress is the observational notification a digit-sum task emits before returning.
type Progress struct {
	Index    int
	Sum      uint64
	WorkerID int
}

// executor owns the worker pool and instruments shared by a group of spawned tasks.
type executor struct {
	pool     pool.Pool[*worker]
	logger   *zap.Logger
	progress func(Progress)

	spawned  metrics.Counter
	failed   metrics.Counter
	inflight metrics.UpDownCounter
	duration metrics.Histogram
}

func newExecutor(cfg *config) *executor {
	var seq atomic.Int64
	newWorkerFn := func() *worker {
		return &worker{id: int(seq.Add(1))}
	}

	var p pool.Pool[*worker]
	if cfg.MaxWorkers > 0 {
		p = pool.NewFixed(cfg.MaxWorkers, newWorkerFn)
	} else {
		p = pool.NewDynamic(newWorkerFn)
	}

	return &executor{
		pool:     p,
		logger:   cfg.Logger,
		progress: cfg.Progress,
		spawned: cfg.Metrics.Counter(metricTasksSpawned,
			metrics.WithDescription("tasks spawned"), metrics.WithUnit("1")),
		failed: cfg.Metrics.Counter(metricTasksFailed,
			metrics.WithDescription("tasks that returned an error or panicked"), metrics.WithUnit("1")),
		inflight: cfg.Metrics.UpDownCounter(metricTasksInflight,
			metrics.WithDescription("tasks spawned and not yet terminated"), metrics.WithUnit("1")),
		duration: cfg.Metrics.Histogram(metricTaskDuration,
			metrics.WithDescription("task execution time"), metrics.WithUnit("seconds")),
	}
}

func (e *executor) started() {
	e.spawned.Add(1)
	e.inflight.Add(1)
}

// execute runs t on a pool worker, converting a panic into an error wrapping ErrTaskPanicked.
func execute[R any](ctx context.Context, e *executor, h *Handle[R], t Task[R]) (result R, err error) {
	w := e.pool.Get()
	defer e.pool.Put(w)

	start := time.Now()
	defer func() {
		e.duration.Record(time.Since(start).Seconds())
		e.inflight.Add(-1)
		if err != nil {
			e.failed.Add(1)
		}
	}()

	var pc panics.Catcher
	pc.Try(func() {
		result, err = t(context.WithValue(ctx, taskInfoKey{}, taskInfo{id: h.id, worker: w.id}))
	})
	if r := pc.Recovered(); r != nil {
		var zero R
		e.logger.Error("task panicked",
			zap.Int("chunk", h.index),
			zap.Stringer("task_id", h.id),
			zap.Int("worker", w.id),
			zap.Any("panic", r.Value),
			zap.ByteString("stack", r.Stack),
		)
		return zero, fmt.Errorf("%w: %v", ErrTaskPanicked, r.Value)
	}
	if err != nil {
		e.logger.Debug("task failed",
			zap.Int("chunk", h.index),
			zap.Stringer("task_id", h.id),
			zap.Int("worker", w.id),
			zap.Error(err),
		)
	}
	return result, err
}

// notify publishes a progress notification. It never affects the task result.
func (e *executor) notify(ctx context.Context, p Progress) {
	ti, _ := ctx.Value(taskInfoKey{}).(taskInfo)
	p.WorkerID = ti.worker
	e.logger.Debug("chunk processed",
		zap.Int("chunk", p.Index),
		zap.Uint64("sum", p.Sum),
		zap.Int("worker", p.WorkerID),
		zap.Stringer("task_id", ti.id),
	)
	if e.progress != nil {
		e.progress(p)
	}
}
