package events

import (
	"sync"

	"go.uber.org/zap"
)

// Event is one dashboard notification.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Broadcaster fans events out to subscribed dashboard connections. Emit is
// best-effort and never blocks the caller: events pass through a buffered
// channel to a background dispatcher, and are dropped when the buffer is full
// or the broadcaster is closed.
type Broadcaster struct {
	hub    *Hub
	ch     chan Event
	logger *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

const eventBuffer = 256

func NewBroadcaster(hub *Hub, logger *zap.Logger) *Broadcaster {
	b := &Broadcaster{
		hub:    hub,
		ch:     make(chan Event, eventBuffer),
		logger: logger,
		done:   make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Emit queues an event for delivery. Callers may discard the outcome;
// delivery is at-most-once with no guarantee.
func (b *Broadcaster) Emit(name string, payload interface{}) {
	ev := Event{Name: name, Payload: payload}
	select {
	case <-b.done:
	case b.ch <- ev:
	default:
		b.logger.Warn("event buffer full, dropping event", zap.String("event", name))
	}
}

func (b *Broadcaster) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case ev := <-b.ch:
			b.hub.Broadcast(ev)
		}
	}
}

// Close stops the dispatcher. Queued events may be abandoned.
func (b *Broadcaster) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}
