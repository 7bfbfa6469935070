package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/marksheet-builder/internal/model"
)

// subscriberBuffer is how many events a slow subscriber may lag behind
// before events are dropped for it.
const subscriberBuffer = 64

// StatusTracker records which forms are being submitted and fans status
// events out to subscribers (WebSocket clients, the CLI progress printer).
type StatusTracker struct {
	mu   sync.Mutex
	busy map[uuid.UUID]bool
	subs map[uuid.UUID]map[chan model.StatusEvent]struct{}
}

// NewStatusTracker creates an empty StatusTracker.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		busy: make(map[uuid.UUID]bool),
		subs: make(map[uuid.UUID]map[chan model.StatusEvent]struct{}),
	}
}

// TryAcquire marks formID busy. It returns false if a submission for the
// form is already running.
func (t *StatusTracker) TryAcquire(formID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.busy[formID] {
		return false
	}
	t.busy[formID] = true
	return true
}

// Release clears the busy flag of formID.
func (t *StatusTracker) Release(formID uuid.UUID) {
	t.mu.Lock()
	delete(t.busy, formID)
	t.mu.Unlock()
}

// IsBusy reports whether a submission for formID is running.
func (t *StatusTracker) IsBusy(formID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy[formID]
}

// Subscribe returns a channel receiving events for formID and a cancel
// function that must be called to unsubscribe. The channel is closed by
// cancel.
func (t *StatusTracker) Subscribe(formID uuid.UUID) (<-chan model.StatusEvent, func()) {
	ch := make(chan model.StatusEvent, subscriberBuffer)

	t.mu.Lock()
	if t.subs[formID] == nil {
		t.subs[formID] = make(map[chan model.StatusEvent]struct{})
	}
	t.subs[formID][ch] = struct{}{}
	t.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs[formID], ch)
			if len(t.subs[formID]) == 0 {
				delete(t.subs, formID)
			}
			t.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber of formID without blocking.
func (t *StatusTracker) Publish(formID uuid.UUID, ev model.StatusEvent) {
	ev.FormID = formID.String()

	t.mu.Lock()
	defer t.mu.Unlock()

	for ch := range t.subs[formID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
