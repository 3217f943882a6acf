package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Status describes how a run ended.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// FileError records a non fatal per file failure. The run continues past
// these; they are surfaced in the result and the audit manifest.
type FileError struct {
	Path    string `yaml:"path"`
	Op      string `yaml:"op"`
	Message string `yaml:"message"`
}

// RunState holds the live counters for one engine run. All counters are
// atomic so pipeline goroutines can update them while the CLI polls
// Snapshot without locks. Counters only ever increase.
type RunState struct {
	RunID     string
	StartedAt time.Time

	FilesScanned       atomic.Int64
	DirsScanned        atomic.Int64
	FilesFingerprinted atomic.Int64
	CacheHits          atomic.Int64
	BytesHashed        atomic.Int64
	DuplicatesFound    atomic.Int64
	BytesReclaimable   atomic.Int64
	FilesActioned      atomic.Int64
	BytesFreed         atomic.Int64

	cancelled atomic.Bool

	mu     sync.Mutex
	errors []FileError
	status Status
}

// NewRunState creates the state for a fresh run with a unique run ID.
func NewRunState() *RunState {
	return &RunState{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		status:    StatusRunning,
	}
}

// Cancel requests a cooperative stop. The flag is terminal for the run;
// there is no way to resume a cancelled run.
func (s *RunState) Cancel() {
	s.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called. Pipeline stages check
// this between files and stop cleanly when it is set.
func (s *RunState) Cancelled() bool {
	return s.cancelled.Load()
}

// RecordError appends a per file error without failing the run.
func (s *RunState) RecordError(path, op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, FileError{Path: path, Op: op, Message: err.Error()})
}

// Errors returns a copy of the per file errors recorded so far.
func (s *RunState) Errors() []FileError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FileError, len(s.errors))
	copy(out, s.errors)
	return out
}

// SetStatus records the terminal status of the run. A cancelled run stays
// cancelled even if SetStatus is called with completed afterwards.
func (s *RunState) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusCancelled && status == StatusCompleted {
		return
	}
	s.status = status
}

// Status returns the current run status.
func (s *RunState) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot is a point in time copy of the run counters, safe to take
// while the run is in flight.
type Snapshot struct {
	RunID              string
	FilesScanned       int64
	DirsScanned        int64
	FilesFingerprinted int64
	CacheHits          int64
	BytesHashed        int64
	DuplicatesFound    int64
	BytesReclaimable   int64
	FilesActioned      int64
	BytesFreed         int64
	Errors             int
	Cancelled          bool
	Status             Status
	Elapsed            time.Duration
}

// Snapshot copies the counters into a plain struct for polling callers.
func (s *RunState) Snapshot() Snapshot {
	s.mu.Lock()
	errCount := len(s.errors)
	status := s.status
	s.mu.Unlock()

	return Snapshot{
		RunID:              s.RunID,
		FilesScanned:       s.FilesScanned.Load(),
		DirsScanned:        s.DirsScanned.Load(),
		FilesFingerprinted: s.FilesFingerprinted.Load(),
		CacheHits:          s.CacheHits.Load(),
		BytesHashed:        s.BytesHashed.Load(),
		DuplicatesFound:    s.DuplicatesFound.Load(),
		BytesReclaimable:   s.BytesReclaimable.Load(),
		FilesActioned:      s.FilesActioned.Load(),
		BytesFreed:         s.BytesFreed.Load(),
		Errors:             errCount,
		Cancelled:          s.cancelled.Load(),
		Status:             status,
		Elapsed:            time.Since(s.StartedAt),
	}
}
