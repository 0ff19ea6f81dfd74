package events

import "sync"

// Callback receives a delivered event. It returns nothing: a callback that
// wants to report trouble does so through its own injected logger, not by
// returning an error the bus would have to interpret.
type Callback func(Event)

// Unsubscribe removes a previously registered callback. It is idempotent
// and safe to call more than once.
type Unsubscribe func()

const defaultHistorySize = 100

// Bus fans events out to typed and wildcard subscribers, synchronously, in
// the emitting goroutine. Specific-type subscribers run before wildcard
// subscribers; within either group, callbacks run in registration order.
// A panicking callback is recovered and does not prevent the remaining
// callbacks — of this emission, and of future emissions — from running.
type Bus struct {
	mu          sync.RWMutex
	typed       map[Type][]*subscription
	wildcard    []*subscription
	history     []Event
	historySize int
	nextSubID   uint64
}

type subscription struct {
	id     uint64
	active bool
	cb     Callback
}

// Option configures a Bus at construction.
type Option func(*Bus)

// WithHistorySize overrides the default ring buffer size of 100.
func WithHistorySize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.historySize = n
		}
	}
}

// NewBus constructs an empty Bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		typed:       make(map[Type][]*subscription),
		historySize: defaultHistorySize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers cb for events of exactly typ, returning an
// Unsubscribe func.
func (b *Bus) Subscribe(typ Type, cb Callback) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSubID++
	sub := &subscription{id: b.nextSubID, active: true, cb: cb}
	b.typed[typ] = append(b.typed[typ], sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		sub.active = false
	}
}

// SubscribeAny registers cb for every event type, run after all
// type-specific subscribers for that event.
func (b *Bus) SubscribeAny(cb Callback) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSubID++
	sub := &subscription{id: b.nextSubID, active: true, cb: cb}
	b.wildcard = append(b.wildcard, sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		sub.active = false
	}
}

// Emit dispatches event to every matching subscriber — specific first,
// then wildcard — appends it to the ring buffer, and never returns an
// error: listener failures are isolated per callback. The subscriber list
// is snapshotted under the bus lock before any callback runs, mirroring
// the bus-snapshot pattern so registration/unregistration during Emit
// never races with delivery.
func (b *Bus) Emit(event Event) {
	b.mu.Lock()
	b.appendHistory(event)
	typed := append([]*subscription(nil), b.typed[event.Type]...)
	wildcard := append([]*subscription(nil), b.wildcard...)
	b.mu.Unlock()

	for _, sub := range typed {
		b.deliver(sub, event)
	}
	for _, sub := range wildcard {
		b.deliver(sub, event)
	}
}

func (b *Bus) deliver(sub *subscription, event Event) {
	b.mu.RLock()
	active := sub.active
	b.mu.RUnlock()
	if !active {
		return
	}
	defer func() {
		_ = recover() // best-effort: a panicking listener never halts the bus
	}()
	sub.cb(event)
}

func (b *Bus) appendHistory(event Event) {
	b.history = append(b.history, event)
	if len(b.history) > b.historySize {
		b.history = b.history[len(b.history)-b.historySize:]
	}
}

// History returns a snapshot of the last (up to historySize) emitted
// events, oldest first.
func (b *Bus) History() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Event, len(b.history))
	copy(out, b.history)
	return out
}
