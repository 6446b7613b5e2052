package pipeline_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"lightbox/internal/pipeline"
)

type recordingJob struct {
	id        int
	log       *jobLog
	cancelled bool
	block     chan struct{}
	started   chan struct{}
}

func (j *recordingJob) Cancelled() bool { return j.cancelled }

func (j *recordingJob) Run(context.Context) {
	if j.started != nil {
		close(j.started)
	}
	if j.block != nil {
		<-j.block
	}
	j.log.add(j.id)
}

type jobLog struct {
	mu  sync.Mutex
	ids []int
}

func (l *jobLog) add(id int) {
	l.mu.Lock()
	l.ids = append(l.ids, id)
	l.mu.Unlock()
}

func (l *jobLog) snapshot() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.ids)
}

func runQueue(t *testing.T, q *pipeline.Queue) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := q.Run(ctx); err != nil {
			t.Errorf("queue run: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestQueueRunsFIFO(t *testing.T) {
	q := pipeline.NewQueue("test")
	log := &jobLog{}
	for i := range 5 {
		q.Enqueue(&recordingJob{id: i, log: log})
	}
	runQueue(t, q)

	waitUntil(t, "all jobs", func() bool { return len(log.snapshot()) == 5 })
	if got := log.snapshot(); !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("unexpected order %v", got)
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
}

func TestQueueSkipsCancelledJobs(t *testing.T) {
	q := pipeline.NewQueue("test")
	log := &jobLog{}
	q.Enqueue(&recordingJob{id: 1, log: log})
	q.Enqueue(&recordingJob{id: 2, log: log, cancelled: true})
	q.Enqueue(&recordingJob{id: 3, log: log})
	runQueue(t, q)

	waitUntil(t, "jobs drained", func() bool { return q.Len() == 0 && len(log.snapshot()) == 2 })
	if got := log.snapshot(); !slices.Equal(got, []int{1, 3}) {
		t.Fatalf("unexpected jobs %v", got)
	}
}

func TestQueueSuspendResumeExactlyOnce(t *testing.T) {
	q := pipeline.NewQueue("test")
	log := &jobLog{}

	release := make(chan struct{})
	started := make(chan struct{})
	q.Enqueue(&recordingJob{id: 0, log: log, block: release, started: started})
	q.Enqueue(&recordingJob{id: 1, log: log})
	q.Enqueue(&recordingJob{id: 2, log: log})
	runQueue(t, q)

	<-started
	q.SetSuspended(true)
	q.Enqueue(&recordingJob{id: 3, log: log})
	q.Enqueue(&recordingJob{id: 4, log: log})
	close(release)

	waitUntil(t, "running job to finish", func() bool { return len(log.snapshot()) == 1 })
	time.Sleep(30 * time.Millisecond)
	if got := log.snapshot(); !slices.Equal(got, []int{0}) {
		t.Fatalf("jobs ran while suspended: %v", got)
	}
	if q.Len() != 4 {
		t.Fatalf("expected 4 waiting jobs, got %d", q.Len())
	}

	q.SetSuspended(false)
	waitUntil(t, "resumed jobs", func() bool { return len(log.snapshot()) == 5 })
	time.Sleep(20 * time.Millisecond)
	if got := log.snapshot(); !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("unexpected order after resume %v", got)
	}
}

func TestQueueRejectsSecondRunner(t *testing.T) {
	q := pipeline.NewQueue("test")
	runQueue(t, q)

	log := &jobLog{}
	q.Enqueue(&recordingJob{id: 1, log: log})
	waitUntil(t, "first runner active", func() bool { return len(log.snapshot()) == 1 })

	if err := q.Run(context.Background()); err == nil {
		t.Fatal("expected error from second runner")
	}
}
