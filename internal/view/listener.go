package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/feed"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// Listener applies change-feed events for one session user to a Holder, in
// delivery order.
type Listener struct {
	sub    feed.Subscription
	holder *Holder
	userID string
	logger logger.Logger

	mu      sync.Mutex
	started bool
	stopped bool

	stop chan struct{}
	done chan struct{}
	lost chan struct{}
	once sync.Once
	err  error
}

// Listen opens a subscription for userID and returns once it is active.
// Events are buffered by the subscription and not applied until Start, so
// the caller can seed the holder first.
func Listen(ctx context.Context, subscriber feed.Subscriber, holder *Holder, userID string, log logger.Logger) (*Listener, error) {
	sub, err := subscriber.Subscribe(ctx, feed.Filter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return &Listener{
		sub:    sub,
		holder: holder,
		userID: userID,
		logger: log,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		lost:   make(chan struct{}),
	}, nil
}

// Start begins applying events. Extra calls, and calls after Close, do
// nothing.
func (l *Listener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped {
		return
	}
	l.started = true
	go l.run()
}

func (l *Listener) run() {
	defer close(l.done)
	events := l.sub.Events()
	for {
		select {
		case <-l.stop:
			return
		case ev, ok := <-events:
			if !ok {
				l.logger.Warn("change feed closed", logger.String("user_id", l.userID))
				close(l.lost)
				return
			}
			l.apply(ev)
		}
	}
}

// Lost is closed when the transport ends the subscription on its own. The
// holder no longer receives changes after that.
func (l *Listener) Lost() <-chan struct{} {
	return l.lost
}

func (l *Listener) apply(ev feed.Event) {
	l.holder.Update(func(list []domain.Bookmark) []domain.Bookmark {
		return Reconcile(list, l.userID, ev)
	})
}

// Close releases the subscription and waits for the apply loop to exit. No
// event is applied after Close returns. Safe to call more than once.
func (l *Listener) Close() error {
	l.once.Do(func() {
		l.mu.Lock()
		l.stopped = true
		started := l.started
		l.mu.Unlock()

		close(l.stop)
		if started {
			<-l.done
		}
		l.err = l.sub.Close()
	})
	return l.err
}
