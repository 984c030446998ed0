package notify

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"jobhunter/internal/metrics"
)

// Event is one named message pushed to a live subscriber. The name maps to the
// SSE event name; over WebSocket the whole struct is sent as JSON.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Live event names shared with the frontend.
const (
	EventPing         = "ping"
	EventResumeStatus = "resumeStatus"
)

var (
	errSubscriptionClosed  = errors.New("subscription closed")
	errSubscriptionStalled = errors.New("subscription buffer full")
)

// Subscription is one open live channel for a user. A user may hold several at
// once (multiple tabs or devices). It never expires on its own; it is torn
// down by Deregister or pruned by the hub when a push fails.
type Subscription struct {
	userID uint
	ch     chan Event
	done   chan struct{}
	once   sync.Once
}

// UserID returns the subscriber's identity.
func (s *Subscription) UserID() uint { return s.userID }

// Events returns the channel the consumer drains.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Done is closed when the subscription has been deregistered or pruned.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) close() {
	s.once.Do(func() { close(s.done) })
}

// push delivers without blocking: a full buffer means the consumer stalled and
// the subscription is treated the same as a broken connection.
func (s *Subscription) push(ev Event) error {
	select {
	case <-s.done:
		return errSubscriptionClosed
	default:
	}
	select {
	case s.ch <- ev:
		return nil
	case <-s.done:
		return errSubscriptionClosed
	default:
		return errSubscriptionStalled
	}
}

// Hub is the live connection registry: user id to the set of open channels.
// Delivery is best-effort only; the durable notification record is the source
// of truth for anything a disconnected user misses.
//
// Entries are kept in a sync.Map with one mutex per user so unrelated users
// never contend, and broadcasts iterate over a snapshot so subscribe and
// deregister stay safe during an ongoing Send.
type Hub struct {
	entries sync.Map // uint -> *hubEntry
	buffer  int
	logger  *slog.Logger
}

type hubEntry struct {
	mu     sync.Mutex
	closed bool
	subs   []*Subscription
}

const defaultEventBuffer = 16

// NewHub constructs an empty registry.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{buffer: defaultEventBuffer, logger: logger}
}

// Subscribe registers a new channel for userID and immediately emits a ping
// event on it so intermediaries do not reclaim an apparently idle connection.
func (h *Hub) Subscribe(userID uint) *Subscription {
	sub := &Subscription{
		userID: userID,
		ch:     make(chan Event, h.buffer),
		done:   make(chan struct{}),
	}

	for {
		value, _ := h.entries.LoadOrStore(userID, &hubEntry{})
		entry := value.(*hubEntry)
		entry.mu.Lock()
		if entry.closed {
			// Lost a race with the final removal of this entry; retry on a fresh one.
			entry.mu.Unlock()
			continue
		}
		entry.subs = append(entry.subs, sub)
		entry.mu.Unlock()
		break
	}

	metrics.LiveSubscriptionsInc()
	_ = sub.push(Event{Name: EventPing, Data: "ok"}) // fresh buffered channel, cannot fail

	return sub
}

// Send pushes an event to every open channel of userID. No channels is a
// silent no-op. Channels whose push fails are pruned after the pass; when the
// set becomes empty the user's entry is removed entirely.
func (h *Hub) Send(userID uint, ev Event) {
	value, ok := h.entries.Load(userID)
	if !ok {
		return
	}
	entry := value.(*hubEntry)

	entry.mu.Lock()
	subs := slices.Clone(entry.subs)
	entry.mu.Unlock()

	var dead []*Subscription
	for _, sub := range subs {
		if err := sub.push(ev); err != nil {
			h.logger.Warn("live push failed, pruning channel",
				slog.Uint64("user_id", uint64(userID)),
				slog.Any("error", err),
			)
			dead = append(dead, sub)
		}
	}

	for _, sub := range dead {
		h.remove(userID, entry, sub)
	}
}

// Deregister removes one channel; the last channel removes the user's entry.
func (h *Hub) Deregister(userID uint, sub *Subscription) {
	value, ok := h.entries.Load(userID)
	if !ok {
		sub.close()
		return
	}
	h.remove(userID, value.(*hubEntry), sub)
}

// Connections reports how many channels are currently open for userID.
func (h *Hub) Connections(userID uint) int {
	value, ok := h.entries.Load(userID)
	if !ok {
		return 0
	}
	entry := value.(*hubEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return len(entry.subs)
}

func (h *Hub) remove(userID uint, entry *hubEntry, sub *Subscription) {
	entry.mu.Lock()
	present := false
	for i, candidate := range entry.subs {
		if candidate == sub {
			entry.subs = slices.Delete(entry.subs, i, i+1)
			present = true
			break
		}
	}
	if len(entry.subs) == 0 && !entry.closed {
		entry.closed = true
		h.entries.Delete(userID)
	}
	entry.mu.Unlock()

	sub.close()
	if present {
		metrics.LiveSubscriptionsDec()
	}
}
