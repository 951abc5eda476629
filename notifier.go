package identity

import (
	"context"
	"sync"
	"time"
)

// UserCreatedEventName is the event emitted after an account is created
const UserCreatedEventName = "user.created"

// UserCreatedEvent is the flat, serializable payload handed to the
// Event Notifier on account creation
type UserCreatedEvent struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// EventNotifier dispatches notification events to the outside world.
// Delivery guarantees are the notifier's responsibility, the cores
// only guarantee it is invoked with the correct payload.
type EventNotifier interface {
	Publish(ctx context.Context, eventName string, payload any) error
}

// EventNotifierFunc adapts a function into an EventNotifier.
type EventNotifierFunc func(ctx context.Context, eventName string, payload any) error

// Publish satisfies the EventNotifier interface.
func (f EventNotifierFunc) Publish(ctx context.Context, eventName string, payload any) error {
	if f == nil {
		return nil
	}
	return f(ctx, eventName, payload)
}

type noopEventNotifier struct{}

func (noopEventNotifier) Publish(context.Context, string, any) error {
	return nil
}

func normalizeEventNotifier(n EventNotifier) EventNotifier {
	if n == nil {
		return noopEventNotifier{}
	}
	return n
}

type outboundEvent struct {
	name    string
	payload any
}

// EventDispatcher is an explicit outbound event queue: producers write
// to it without waiting and a single worker drains it into the
// configured EventNotifier. Publish failures are logged, never
// propagated, so a slow or broken notifier cannot fail or delay the
// operation that emitted the event.
type EventDispatcher struct {
	notifier EventNotifier
	logger   Logger
	events   chan outboundEvent
	done     chan struct{}
	once     sync.Once
	stop     sync.Once

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewEventDispatcher builds a dispatcher with the given queue depth
func NewEventDispatcher(notifier EventNotifier, buffer int, logger Logger) *EventDispatcher {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	if logger == nil {
		logger = defLogger{}
	}
	return &EventDispatcher{
		notifier: normalizeEventNotifier(notifier),
		logger:   logger,
		events:   make(chan outboundEvent, buffer),
		done:     make(chan struct{}),
	}
}

// Start launches the drain worker. Calling it more than once is a no-op.
func (d *EventDispatcher) Start(ctx context.Context) {
	d.once.Do(func() {
		d.mu.Lock()
		d.started = true
		d.mu.Unlock()
		go d.drain(ctx)
	})
}

// Close stops accepting events and lets the worker drain what is
// queued. The queue channel is closed under the same lock Dispatch
// sends under, so a producer racing shutdown drops its event instead
// of hitting a closed channel. When Start never ran there is no worker
// to wait for.
func (d *EventDispatcher) Close() {
	d.stop.Do(func() {
		d.mu.Lock()
		d.closed = true
		started := d.started
		close(d.events)
		d.mu.Unlock()

		if started {
			<-d.done
		}
	})
}

// Dispatch enqueues an event without blocking. When the queue is full
// or the dispatcher is already closed the event is dropped and logged,
// at-most-one delivery attempt is the contract here, retries belong to
// the notifier.
func (d *EventDispatcher) Dispatch(eventName string, payload any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("dispatcher closed, dropping event", "event", eventName)
		return
	}

	select {
	case d.events <- outboundEvent{name: eventName, payload: payload}:
	default:
		d.logger.Warn("event queue full, dropping event", "event", eventName)
	}
}

// Notifier exposes the dispatcher as a non-blocking EventNotifier so
// the lifecycle core can publish without knowing about the queue.
func (d *EventDispatcher) Notifier() EventNotifier {
	return EventNotifierFunc(func(_ context.Context, eventName string, payload any) error {
		d.Dispatch(eventName, payload)
		return nil
	})
}

func (d *EventDispatcher) drain(ctx context.Context) {
	defer close(d.done)
	for event := range d.events {
		if err := d.notifier.Publish(ctx, event.name, event.payload); err != nil {
			d.logger.Error("event publish failed", "event", event.name, "error", err)
		}
	}
}
