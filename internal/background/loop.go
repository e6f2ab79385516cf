package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storefront-theme/pkg/logger"
)

type LoopConfig struct {
	QueueSize int
}

// Job is one unit of work run on the loop's single worker.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

var (
	ErrLoopNotStarted = errors.New("loop not started")
	ErrLoopStopped    = errors.New("loop is shutting down")
	errJobName        = errors.New("job name is required")
	errJobRunner      = errors.New("job runner is required")
)

// Loop runs posted jobs one at a time in posting order. Signals from the
// editor host and from user input are funnelled through it so sections
// never observe two signals at once.
type Loop struct {
	config LoopConfig

	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool

	queue    chan queuedJob
	workerWG sync.WaitGroup
}

type queuedJob struct {
	job  Job
	done chan error
}

var (
	metricsOnce        sync.Once
	jobRunsTotal       *prometheus.CounterVec
	jobDurationSeconds *prometheus.HistogramVec
	queueLength        prometheus.Gauge
)

func initMetrics() {
	metricsOnce.Do(func() {
		jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront_theme",
			Subsystem: "background",
			Name:      "job_runs_total",
			Help:      "Total jobs run on the signal loop",
		}, []string{"job", "status"})

		jobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront_theme",
			Subsystem: "background",
			Name:      "job_duration_seconds",
			Help:      "Duration of jobs run on the signal loop",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"})

		queueLength = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront_theme",
			Subsystem: "background",
			Name:      "queue_length",
			Help:      "Jobs waiting on the signal loop",
		})
	})
}

func NewLoop(cfg LoopConfig) *Loop {
	initMetrics()

	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}

	return &Loop{
		config: cfg,
		queue:  make(chan queuedJob, cfg.QueueSize),
	}
}

func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started || l.stopped {
		return
	}

	l.ctx, l.cancel = context.WithCancel(ctx)
	l.started = true

	l.workerWG.Add(1)
	go l.worker()
}

func (l *Loop) worker() {
	defer l.workerWG.Done()

	for queued := range l.queue {
		queueLength.Dec()
		err := l.run(queued.job)
		if queued.done != nil {
			queued.done <- err
		}
	}
}

func (l *Loop) run(job Job) (runErr error) {
	start := time.Now()
	status := "success"

	defer func() {
		jobDurationSeconds.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())
		jobRunsTotal.WithLabelValues(job.Name, status).Inc()
	}()

	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("panic: %v", r)
			status = "failure"
			logger.Error(runErr, "Loop job panicked", map[string]interface{}{"job": job.Name})
		}
	}()

	runErr = job.Run(l.ctx)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			status = "canceled"
		} else {
			status = "failure"
		}
		logger.Error(runErr, "Loop job failed", map[string]interface{}{"job": job.Name})
	}
	return runErr
}

// Post queues job and returns without waiting for it to run. It blocks while
// the queue is full.
func (l *Loop) Post(job Job) error {
	return l.enqueue(queuedJob{job: job})
}

// Do queues job and waits for its result.
func (l *Loop) Do(ctx context.Context, job Job) error {
	done := make(chan error, 1)
	if err := l.enqueue(queuedJob{job: job, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every job posted before the call has run.
func (l *Loop) Flush(ctx context.Context) error {
	return l.Do(ctx, Job{Name: "flush", Run: func(context.Context) error { return nil }})
}

func (l *Loop) enqueue(queued queuedJob) error {
	if queued.job.Name == "" {
		return errJobName
	}
	if queued.job.Run == nil {
		return errJobRunner
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.stopped {
		return ErrLoopStopped
	}
	if !l.started {
		return ErrLoopNotStarted
	}

	queueLength.Inc()
	select {
	case l.queue <- queued:
		return nil
	case <-l.ctx.Done():
		queueLength.Dec()
		return ErrLoopStopped
	}
}

// Shutdown stops accepting jobs, lets the worker drain what is already
// queued and waits for it. When ctx expires first the running job's context
// is cancelled.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	if !l.started || l.stopped {
		l.stopped = true
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	close(l.queue)
	cancel := l.cancel
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.workerWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancel()
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// Pending returns the number of jobs waiting in the queue.
func (l *Loop) Pending() int {
	return len(l.queue)
}
