package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/core/domain"
)

const subscriberBuffer = 16

// Broadcaster is a typed publish/subscribe hub for session events. Views
// subscribe on mount and cancel on teardown; publishing never blocks; a
// subscriber that has fallen subscriberBuffer events behind misses the
// event and a warning is logged.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[domain.EventKind]map[int]chan domain.Event
	log    zerolog.Logger
}

// NewBroadcaster creates an empty hub.
func NewBroadcaster(log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		subs: make(map[domain.EventKind]map[int]chan domain.Event),
		log:  log,
	}
}

// Subscribe registers for events of one kind. The returned cancel func
// closes the channel and must be called exactly once.
func (b *Broadcaster) Subscribe(kind domain.EventKind) (<-chan domain.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[kind] == nil {
		b.subs[kind] = make(map[int]chan domain.Event)
	}
	id := b.nextID
	b.nextID++

	ch := make(chan domain.Event, subscriberBuffer)
	b.subs[kind][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[kind][id]; ok {
			delete(b.subs[kind], id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its kind.
func (b *Broadcaster) Publish(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[event.Kind] {
		select {
		case ch <- event:
		default:
			b.log.Warn().Str("kind", string(event.Kind)).Msg("slow subscriber dropped event")
		}
	}
}
