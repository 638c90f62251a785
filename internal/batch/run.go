package batch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a batch run.
type RunStatus string

// Run lifecycle states.
const (
	RunAwaitingLogin RunStatus = "awaiting-login"
	RunProcessing    RunStatus = "processing"
	RunCompleted     RunStatus = "completed"
	RunCancelled     RunStatus = "cancelled"
	RunFailed        RunStatus = "failed"
)

// Run carries the state of one batch run: progress, the cancellation flag,
// and the final result. Cancellation is cooperative — the flag is observed
// by the orchestrator between items only, never inside a step.
type Run struct {
	ID        uuid.UUID
	Total     int
	StartedAt time.Time

	cancelled atomic.Bool

	mu          sync.RWMutex
	status      RunStatus
	completed   int
	current     string
	err         string
	completedAt time.Time
	result      *BatchResult
	archive     []byte
}

// NewRun creates a run over total items, awaiting operator login.
func NewRun(total int) *Run {
	return &Run{
		ID:        uuid.New(),
		Total:     total,
		StartedAt: time.Now(),
		status:    RunAwaitingLogin,
	}
}

// Cancel sets the cancellation flag. Items not yet started will be omitted;
// the item in flight always runs to completion first.
func (r *Run) Cancel() {
	r.cancelled.Store(true)
}

// Cancelled reports whether cancellation has been requested.
func (r *Run) Cancelled() bool {
	return r.cancelled.Load()
}

// Progress is a point-in-time view of a run for status reporting.
type Progress struct {
	ID        uuid.UUID `json:"id"`
	Status    RunStatus `json:"status"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Fraction  float64   `json:"fraction"`
	Current   string    `json:"current,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Snapshot returns the run's current progress.
func (r *Run) Snapshot() Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := Progress{
		ID:        r.ID,
		Status:    r.status,
		Total:     r.Total,
		Completed: r.completed,
		Current:   r.current,
		Error:     r.err,
		StartedAt: r.StartedAt,
	}
	if r.Total > 0 {
		p.Fraction = float64(r.completed) / float64(r.Total)
	}

	return p
}

// Result returns the final batch result, or nil while the run is in flight.
func (r *Run) Result() *BatchResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result
}

// Archive returns the built artifact archive, or nil if absent.
func (r *Run) Archive() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.archive
}

func (r *Run) setStatus(status RunStatus) {
	r.mu.Lock()
	r.status = status
	r.mu.Unlock()
}

func (r *Run) advance(completed int, current string) {
	r.mu.Lock()
	r.completed = completed
	r.current = current
	r.mu.Unlock()
}

func (r *Run) finish(status RunStatus, result *BatchResult, archive []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status = status
	r.result = result
	r.archive = archive
	r.completedAt = time.Now()
	if err != nil {
		r.err = err.Error()
	}
}
