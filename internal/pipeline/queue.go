package pipeline

import (
	"context"
	"errors"
	"sync"
)

// Job is anything a Queue can execute.
type Job interface {
	Cancelled() bool
	Run(ctx context.Context)
}

// Queue is a FIFO executor that runs one job at a time. While suspended it
// starts nothing new; a job already running finishes.
type Queue struct {
	name string

	mu        sync.Mutex
	jobs      []Job
	suspended bool
	active    bool
	running   bool

	wake chan struct{}
}

// NewQueue creates an idle, unsuspended queue.
func NewQueue(name string) *Queue {
	return &Queue{name: name, wake: make(chan struct{}, 1)}
}

// Name returns the queue label.
func (q *Queue) Name() string {
	return q.name
}

// Enqueue appends job to the execution order.
func (q *Queue) Enqueue(job Job) {
	if job == nil {
		return
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	q.signal()
}

// SetSuspended pauses or resumes the start of queued jobs.
func (q *Queue) SetSuspended(suspended bool) {
	q.mu.Lock()
	q.suspended = suspended
	q.mu.Unlock()
	if !suspended {
		q.signal()
	}
}

// Suspended reports the suspension flag.
func (q *Queue) Suspended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.suspended
}

// Len returns the number of jobs waiting to start, including cancelled jobs
// that have not yet been skipped.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Active reports whether a job is executing right now.
func (q *Queue) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Run executes jobs until ctx is done. Jobs cancelled while waiting are
// dropped when they reach the head. Only one Run may be active per queue.
func (q *Queue) Run(ctx context.Context) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return errors.New("queue " + q.name + " already running")
	}
	q.running = true
	q.mu.Unlock()
	defer func() {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		job, ok := q.next()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-q.wake:
			}
			continue
		}
		if !job.Cancelled() {
			job.Run(ctx)
		}
		q.mu.Lock()
		q.active = false
		q.mu.Unlock()
	}
}

func (q *Queue) next() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.suspended || len(q.jobs) == 0 {
		return nil, false
	}
	job := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	q.active = true
	return job, true
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
