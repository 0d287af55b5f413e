// Package activity persists the per-workflow activity trail without
// blocking the collaboration event path.
package activity

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/flowcanvas/backend/internal/model"
	"github.com/flowcanvas/backend/internal/repository"
)

const insertTimeout = 5 * time.Second

// Recorder buffers activity records on a channel and writes them to the
// repository from a single goroutine. When the buffer is full the record
// is dropped and logged: the audit trail is best-effort and must never
// stall an event handler.
type Recorder struct {
	repo *repository.ActivityRepository
	ch   chan model.ActivityRecord
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewRecorder creates a recorder with the given buffer size and starts
// its writer goroutine.
func NewRecorder(repo *repository.ActivityRepository, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	r := &Recorder{
		repo: repo,
		ch:   make(chan model.ActivityRecord, buffer),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues an activity record. It never blocks; records submitted
// after Close or while the buffer is full are dropped.
func (r *Recorder) Record(rec model.ActivityRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	select {
	case r.ch <- rec:
	default:
		log.Printf("Activity buffer full, dropping %q record for workflow %s", rec.Activity, rec.WorkflowID)
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for rec := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		if err := r.repo.Insert(ctx, &rec); err != nil {
			log.Printf("Failed to persist activity for workflow %s: %v", rec.WorkflowID, err)
		}
		cancel()
	}
}

// Close drains the buffer, stops the writer, and waits for it to finish.
// Close is idempotent.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()

	<-r.done
}
