package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reposition/internal/oracle"

	"github.com/sirupsen/logrus"
)

// scoringJob is one oracle invocation waiting for a pool slot. The submitter
// blocks on done: the upload contract is synchronous, so completion must flow
// back to the request.
type scoringJob struct {
	ctx        context.Context
	inputPath  string
	outputPath string
	done       chan error
}

// Pool bounds how many scoring-oracle processes run at once so concurrent
// uploads cannot fork an unbounded number of model processes. It implements
// oracle.Scorer itself, which lets callers treat the pooled oracle as just
// another scorer.
type Pool struct {
	jobs        chan *scoringJob
	workerCount int
	scorer      oracle.Scorer
	logger      *logrus.Logger
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	metrics     *PoolMetrics

	// closeMu serializes submission against Shutdown closing the jobs
	// channel: a send racing the close would panic.
	closeMu sync.RWMutex
	closed  bool
}

// PoolMetrics tracks worker pool performance
type PoolMetrics struct {
	mu              sync.RWMutex
	processed       int64
	failed          int64
	totalProcessing time.Duration
}

// NewPool creates a scoring pool draining into the given scorer.
func NewPool(workerCount, queueSize int, scorer oracle.Scorer, logger *logrus.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		jobs:        make(chan *scoringJob, queueSize),
		workerCount: workerCount,
		scorer:      scorer,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		metrics:     &PoolMetrics{},
	}
}

// Start initializes and starts all worker goroutines
func (p *Pool) Start() {
	p.logger.WithFields(logrus.Fields{
		"workers": p.workerCount,
		"queue":   cap(p.jobs),
	}).Info("starting scoring worker pool")

	for i := 1; i <= p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// worker is the main worker loop that processes jobs
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return

		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.processJob(id, job)
		}
	}
}

// processJob runs one oracle invocation with panic recovery so a bad job
// cannot take a worker down.
func (p *Pool) processJob(workerID int, job *scoringJob) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithField("worker", workerID).Errorf("scoring job panic recovered: %v", r)
			p.metrics.incrementFailed()
			job.done <- fmt.Errorf("scoring job panicked: %v", r)
		}
	}()

	startTime := time.Now()
	err := p.scorer.Score(job.ctx, job.inputPath, job.outputPath)
	processingTime := time.Since(startTime)

	if err != nil {
		p.metrics.incrementFailed()
	} else {
		p.metrics.recordSuccess(processingTime)
	}
	job.done <- err
}

// Score submits an oracle run and waits for it to finish. Submission blocks
// when the queue is full: an upload must either be scored or fail, never be
// silently dropped. The caller's context cancels both the wait and the run.
func (p *Pool) Score(ctx context.Context, inputPath, outputPath string) error {
	job := &scoringJob{
		ctx:        ctx,
		inputPath:  inputPath,
		outputPath: outputPath,
		done:       make(chan error, 1),
	}

	p.closeMu.RLock()
	if p.closed {
		p.closeMu.RUnlock()
		return fmt.Errorf("scoring pool is shut down")
	}
	select {
	case p.jobs <- job:
		p.closeMu.RUnlock()
	case <-ctx.Done():
		p.closeMu.RUnlock()
		return ctx.Err()
	case <-p.ctx.Done():
		p.closeMu.RUnlock()
		return fmt.Errorf("scoring pool is shut down")
	}

	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully stops the pool, letting queued jobs drain first.
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.logger.Info("shutting down scoring worker pool")

	p.closeMu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logMetrics()
		return nil

	case <-time.After(timeout):
		p.cancel()
		p.logger.Warnf("scoring pool shutdown timed out after %v", timeout)
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// GetMetrics returns a snapshot of the pool metrics
func (p *Pool) GetMetrics() map[string]interface{} {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()

	avgProcessing := time.Duration(0)
	if p.metrics.processed > 0 {
		avgProcessing = p.metrics.totalProcessing / time.Duration(p.metrics.processed)
	}

	return map[string]interface{}{
		"processed":           p.metrics.processed,
		"failed":              p.metrics.failed,
		"avg_processing_time": avgProcessing.String(),
		"queue_utilization":   fmt.Sprintf("%d/%d", len(p.jobs), cap(p.jobs)),
	}
}

// logMetrics logs the final metrics
func (p *Pool) logMetrics() {
	p.logger.WithFields(logrus.Fields(p.GetMetrics())).Info("scoring pool metrics")
}

// Metrics helper methods
func (pm *PoolMetrics) recordSuccess(duration time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.processed++
	pm.totalProcessing += duration
}

func (pm *PoolMetrics) incrementFailed() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.failed++
}
