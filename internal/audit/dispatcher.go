package audit

import (
	"sync"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
)

type Event struct {
	ProviderID uint
	Actor      string
	Action     string
	Entity     string
	EntityID   string
	Metadata   any
}

// Writer persists one audit event.
type Writer interface {
	Write(ev Event) error
}

// Dispatcher writes events on a background goroutine. A full queue drops
// the event; audit never fails a request.
type Dispatcher struct {
	writer Writer
	logger *zap.Logger
	queue  chan Event
	done   chan struct{}
	once   sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(writer Writer, logger *zap.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 100
	}
	d := &Dispatcher{
		writer: writer,
		logger: logging.Or(logger),
		queue:  make(chan Event, buffer),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.writer.Write(ev); err != nil {
			d.logger.Warn("audit write failed",
				zap.String("action", ev.Action),
				zap.Uint("provider_id", ev.ProviderID),
				zap.Error(err),
			)
		}
	}
}

// Dispatch is safe on a nil or closed dispatcher.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("audit dispatcher closed, dropping event", zap.String("action", ev.Action))
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	<-d.done
}
