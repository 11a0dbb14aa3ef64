package submission

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"ocr-desk/internal/domain"
)

// EventType classifies messages emitted around a submission.
type EventType string

const (
	EventTypeStatus EventType = "status"
	EventTypeResult EventType = "result"
	EventTypeError  EventType = "error"
)

// Event is a sequenced payload consumed by UI subscribers.
type Event struct {
	Seq          int64                  `json:"seq"`
	Timestamp    time.Time              `json:"timestamp"`
	SubmissionID string                 `json:"submissionId,omitempty"`
	Type         EventType              `json:"type"`
	Mode         domain.InputMode       `json:"mode,omitempty"`
	State        domain.SubmissionState `json:"state,omitempty"`
	ErrorKind    domain.ErrorKind       `json:"errorKind,omitempty"`
	Message      string                 `json:"message,omitempty"`
	Text         string                 `json:"text,omitempty"`
}

// EventBus stores recent events and provides incremental reads.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 200
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish appends one event and assigns sequence and timestamp.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if overflow := len(b.events) - b.maxEvents; overflow > 0 {
		b.events = lo.Drop(b.events, overflow)
	}

	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	return b.collect(func(event Event) bool {
		return event.Seq > seq
	})
}

// ForSubmission returns the buffered events of one submission in order.
func (b *EventBus) ForSubmission(id string) []Event {
	return b.collect(func(event Event) bool {
		return event.SubmissionID == id
	})
}

// collect copies out the buffered events accepted by keep.
func (b *EventBus) collect(keep func(Event) bool) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := lo.Filter(b.events, func(event Event, _ int) bool {
		return keep(event)
	})
	if len(out) == 0 {
		return nil
	}
	return out
}
