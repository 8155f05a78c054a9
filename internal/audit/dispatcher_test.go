package audit

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memoryWriter struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (w *memoryWriter) Write(ev Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("boom")
	}
	w.events = append(w.events, ev)
	return nil
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	w := &memoryWriter{}
	d := NewDispatcher(w, nil, 10)

	d.Dispatch(Event{ProviderID: 1, Action: "booking_created"})
	d.Dispatch(Event{ProviderID: 1, Action: "booking_cancelled"})
	d.Close()

	assert.Len(t, w.events, 2)
	assert.Equal(t, "booking_created", w.events[0].Action)
}

func TestDispatcherSurvivesWriteErrors(t *testing.T) {
	w := &memoryWriter{fail: true}
	d := NewDispatcher(w, nil, 1)

	d.Dispatch(Event{Action: "x"})
	d.Close()
	d.Close()

	assert.Empty(t, w.events)
}

func TestNilDispatcherIsSafe(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: "x"})
	d.Close()
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	w := &memoryWriter{}
	d := NewDispatcher(w, nil, 10)

	d.Dispatch(Event{Action: "booking_created"})
	d.Close()

	assert.NotPanics(t, func() { d.Dispatch(Event{Action: "booking_cancelled"}) })
	assert.Len(t, w.events, 1)
}

func TestDispatchRacingClose(t *testing.T) {
	w := &memoryWriter{}
	d := NewDispatcher(w, nil, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d.Dispatch(Event{Action: "x"})
			}
		}()
	}
	d.Close()
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.LessOrEqual(t, len(w.events), 1000)
}
