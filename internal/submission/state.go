package submission

import (
	"errors"
	"fmt"
	"sync"

	"ocr-desk/internal/domain"
)

// ErrSubmissionPending is returned when starting while another submission is in flight.
var ErrSubmissionPending = errors.New("submission already pending")

// ErrStaleSubmission is returned when completing a submission that is no longer current.
var ErrStaleSubmission = errors.New("submission is not the pending one")

// Tracker holds the latest submission record and enforces single-flight.
type Tracker struct {
	mu      sync.RWMutex
	current domain.Submission
}

// NewTracker creates a tracker in idle state.
func NewTracker() *Tracker {
	return &Tracker{
		current: domain.Submission{
			State: domain.SubmissionStateIdle,
		},
	}
}

// Start records a new pending submission, dropping the previous outcome.
func (t *Tracker) Start(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.State == domain.SubmissionStatePending {
		return ErrSubmissionPending
	}
	if !isValidTransition(t.current.State, domain.SubmissionStatePending) {
		return fmt.Errorf("invalid transition: %s -> %s", t.current.State, domain.SubmissionStatePending)
	}

	t.current = domain.Submission{
		ID:    id,
		State: domain.SubmissionStatePending,
	}
	return nil
}

// Succeed completes the pending submission with extracted text.
func (t *Tracker) Succeed(id, text string) (domain.Submission, error) {
	return t.complete(domain.Submission{
		ID:     id,
		State:  domain.SubmissionStateSucceeded,
		Result: text,
	})
}

// Fail completes the pending submission with a display message.
func (t *Tracker) Fail(id string, kind domain.ErrorKind, message string) (domain.Submission, error) {
	return t.complete(domain.Submission{
		ID:           id,
		State:        domain.SubmissionStateFailed,
		ErrorMessage: message,
		ErrorKind:    kind,
	})
}

// complete swaps in the whole terminal record at once.
func (t *Tracker) complete(next domain.Submission) (domain.Submission, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.ID != next.ID || t.current.State != domain.SubmissionStatePending {
		return t.current, ErrStaleSubmission
	}
	if !isValidTransition(t.current.State, next.State) {
		return t.current, fmt.Errorf("invalid transition: %s -> %s", t.current.State, next.State)
	}

	t.current = next
	return next, nil
}

// ClearOutcome drops result and error. A pending submission is left alone.
func (t *Tracker) ClearOutcome() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.State == domain.SubmissionStatePending {
		return
	}
	t.current = domain.Submission{State: domain.SubmissionStateIdle}
}

// Current returns a snapshot of the latest submission.
func (t *Tracker) Current() domain.Submission {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// IsPending reports whether a submission is in flight.
func (t *Tracker) IsPending() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current.State == domain.SubmissionStatePending
}

// isValidTransition enforces the allowed submission state machine edges.
func isValidTransition(from, to domain.SubmissionState) bool {
	switch from {
	case domain.SubmissionStateIdle:
		return to == domain.SubmissionStatePending
	case domain.SubmissionStatePending:
		return to == domain.SubmissionStateSucceeded || to == domain.SubmissionStateFailed
	case domain.SubmissionStateSucceeded, domain.SubmissionStateFailed:
		return to == domain.SubmissionStatePending || to == domain.SubmissionStateIdle
	default:
		return false
	}
}
