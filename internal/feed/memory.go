package feed

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process feed for single-instance deployments and
// tests. Every subscription gets its own unbounded queue so a slow reader
// never blocks publishers and never loses events.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]map[*memorySubscription]struct{} // user id -> subscriptions
}

// NewMemoryBroker creates an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs: make(map[string]map[*memorySubscription]struct{}),
	}
}

func (b *MemoryBroker) Driver() string { return "memory" }

func (b *MemoryBroker) Ping(context.Context) error { return nil }

// Subscribe registers a subscription. It is active when Subscribe returns.
func (b *MemoryBroker) Subscribe(ctx context.Context, f Filter) (Subscription, error) {
	if f.UserID == "" {
		return nil, ErrEmptyFilter
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &memorySubscription{
		broker: b,
		filter: f,
		notify: make(chan struct{}, 1),
		out:    make(chan Event),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	set := b.subs[f.UserID]
	if set == nil {
		set = make(map[*memorySubscription]struct{})
		b.subs[f.UserID] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	go sub.run()
	return sub, nil
}

// Publish enqueues ev on every matching subscription. Holding the read lock
// while enqueueing gives all subscribers the same order.
func (b *MemoryBroker) Publish(_ context.Context, ev Event) error {
	owner := ev.OwnerID()
	if owner == "" {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[owner] {
		if sub.filter.Matches(ev) {
			sub.push(ev)
		}
	}
	return nil
}

// SubscriberCount returns the number of open subscriptions.
func (b *MemoryBroker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, set := range b.subs {
		n += len(set)
	}
	return n
}

func (b *MemoryBroker) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subs[sub.filter.UserID]
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.filter.UserID)
	}
}

type memorySubscription struct {
	broker *MemoryBroker
	filter Filter

	mu     sync.Mutex
	queue  []Event
	notify chan struct{}

	out  chan Event
	done chan struct{}
	once sync.Once
}

func (s *memorySubscription) Events() <-chan Event { return s.out }

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.broker.remove(s)
		close(s.done)
	})
	return nil
}

func (s *memorySubscription) push(ev Event) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *memorySubscription) run() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		ev := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}
