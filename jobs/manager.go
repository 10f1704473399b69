// Package jobs provides background job processing functionality.
package jobs

import (
	"context"
	"log/slog"
	"sync"
)

// JobManager runs background jobs whose lifetime is bound to one owner.
// Stopping the manager cancels every job still in flight and waits for it.
type JobManager struct {
	name    string
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewJobManager creates a new job manager
func NewJobManager(name string) *JobManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobManager{
		name:    name,
		ctx:     ctx,
		cancel:  cancel,
		running: false,
	}
}

// Start allows jobs to be launched
func (jm *JobManager) Start() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if jm.running {
		slog.Debug("Job manager is already running", "manager", jm.name)
		return
	}
	if jm.ctx.Err() != nil {
		slog.Warn("Job manager cannot restart after stop", "manager", jm.name)
		return
	}

	jm.running = true
	slog.Debug("Job manager started", "manager", jm.name)
}

// Stop cancels all jobs and waits for them to return. It is idempotent.
func (jm *JobManager) Stop() {
	jm.mu.Lock()
	if !jm.running {
		jm.mu.Unlock()
		return
	}
	jm.running = false
	jm.cancel()
	jm.mu.Unlock()

	// Wait outside the lock so jobs may still call IsRunning
	jm.wg.Wait()
	slog.Debug("Job manager stopped", "manager", jm.name)
}

// IsRunning returns whether the job manager is currently running
func (jm *JobManager) IsRunning() bool {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	return jm.running
}

// Launch runs job on a new goroutine with a context that is cancelled when
// the manager stops. It returns false if the manager is not running.
func (jm *JobManager) Launch(job func(ctx context.Context)) bool {
	_, ok := jm.LaunchCancellable(job)
	return ok
}

// LaunchCancellable is Launch plus a cancel function for this job alone
func (jm *JobManager) LaunchCancellable(job func(ctx context.Context)) (context.CancelFunc, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	if !jm.running {
		slog.Debug("Job rejected, manager not running", "manager", jm.name)
		return func() {}, false
	}

	ctx, cancel := context.WithCancel(jm.ctx)
	jm.wg.Add(1)
	go func() {
		defer jm.wg.Done()
		defer cancel()
		job(ctx)
	}()
	return cancel, true
}

// Wait blocks until every launched job has returned
func (jm *JobManager) Wait() {
	jm.wg.Wait()
}
