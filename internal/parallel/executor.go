// Package parallel fans backend calls out over a bounded worker pool.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Task is a named unit of work.
type Task interface {
	Name() string
	Execute(ctx context.Context) error
}

// TaskFunc adapts a function to Task.
type TaskFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// NewTask creates a new TaskFunc
func NewTask(name string, fn func(ctx context.Context) error) *TaskFunc {
	return &TaskFunc{name: name, fn: fn}
}

func (t *TaskFunc) Name() string {
	return t.name
}

func (t *TaskFunc) Execute(ctx context.Context) error {
	return t.fn(ctx)
}

// Result is the outcome of one task. Results are returned in task order.
type Result struct {
	Task     Task
	Error    error
	Duration time.Duration
}

// Executor runs tasks with at most workers in flight. An Executor holds no
// per-run state and may be reused.
type Executor struct {
	workers     int
	failFast    bool
	taskTimeout time.Duration
	onProgress  func(completed, total int, task Task)
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithWorkers sets the number of workers
func WithWorkers(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithFailFast cancels the remaining tasks after the first error.
func WithFailFast(ff bool) ExecutorOption {
	return func(e *Executor) {
		e.failFast = ff
	}
}

// WithTaskTimeout bounds each task individually.
func WithTaskTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.taskTimeout = d
	}
}

// WithProgress sets a progress callback. It is called from the collecting
// goroutine only.
func WithProgress(fn func(completed, total int, task Task)) ExecutorOption {
	return func(e *Executor) {
		e.onProgress = fn
	}
}

// NewExecutor creates a new parallel executor
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type indexed struct {
	index int
	task  Task
}

type outcome struct {
	index  int
	result Result
}

// Execute runs tasks in parallel and returns one result per task, in order.
func (e *Executor) Execute(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan indexed, len(tasks))
	for i, t := range tasks {
		queue <- indexed{index: i, task: t}
	}
	close(queue)

	outcomes := make(chan outcome, len(tasks))
	var wg sync.WaitGroup
	for w := 0; w < min(e.workers, len(tasks)); w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for item := range queue {
				res := e.run(ctx, id, item.task)
				if res.Error != nil && e.failFast {
					cancel()
				}
				outcomes <- outcome{index: item.index, result: res}
			}
		}(w)
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	results := make([]Result, len(tasks))
	completed := 0
	for o := range outcomes {
		results[o.index] = o.result
		completed++

		if o.result.Error != nil {
			log.Debug("Task failed", "task", o.result.Task.Name(), "error", o.result.Error)
		} else {
			log.Debug("Task completed", "task", o.result.Task.Name(), "took", o.result.Duration)
		}

		if e.onProgress != nil {
			e.onProgress(completed, len(tasks), o.result.Task)
		}
	}

	if n := countErrors(results); n > 0 {
		log.Warn("Some tasks failed", "failed", n, "total", len(tasks))
	}
	return results
}

func (e *Executor) run(ctx context.Context, worker int, task Task) Result {
	if err := ctx.Err(); err != nil {
		return Result{Task: task, Error: err}
	}
	if e.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.taskTimeout)
		defer cancel()
	}

	log.Debug("Worker starting task", "worker", worker, "task", task.Name())
	start := time.Now()
	err := task.Execute(ctx)
	return Result{Task: task, Error: err, Duration: time.Since(start)}
}

func countErrors(results []Result) int {
	count := 0
	for _, r := range results {
		if r.Error != nil {
			count++
		}
	}
	return count
}

// HasErrors returns true if any result has an error
func HasErrors(results []Result) bool {
	return countErrors(results) > 0
}

// Errors returns all errors from results
func Errors(results []Result) []error {
	var errs []error
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, r.Error)
		}
	}
	return errs
}

// Map applies fn to every item with at most workers in flight. Unlike
// Execute it stops at the first error.
func Map[T any, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	output := make([]R, len(items))
	tasks := make([]Task, len(items))
	for i, item := range items {
		tasks[i] = NewTask("item", func(ctx context.Context) error {
			v, err := fn(ctx, item)
			output[i] = v
			return err
		})
	}

	results := NewExecutor(WithWorkers(workers), WithFailFast(true)).Execute(ctx, tasks)
	errs := Errors(results)
	if len(errs) == 0 {
		return output, nil
	}
	// Tasks cancelled by fail-fast report context.Canceled; surface the cause.
	for _, err := range errs {
		if !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	return nil, errs[0]
}
