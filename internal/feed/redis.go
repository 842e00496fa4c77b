package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// KeyPrefixFeed is the prefix for per-user change channels
const KeyPrefixFeed = "smartmark:feed:bookmarks:"

// ChannelFor returns the Pub/Sub channel carrying userID's changes
func ChannelFor(userID string) string {
	return KeyPrefixFeed + userID
}

// RedisBroker fans events out over Redis Pub/Sub, one channel per user, so
// every server instance sees every change.
type RedisBroker struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisBroker creates a broker on top of an already connected client
func NewRedisBroker(client *redis.Client, log logger.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: log}
}

func (b *RedisBroker) Driver() string { return "redis" }

func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Publish sends ev on the owner's channel
func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	owner := ev.OwnerID()
	if owner == "" {
		return fmt.Errorf("feed: event without owner")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, ChannelFor(owner), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe opens a Pub/Sub subscription and waits for the server to confirm
// it before returning.
func (b *RedisBroker) Subscribe(ctx context.Context, f Filter) (Subscription, error) {
	if f.UserID == "" {
		return nil, ErrEmptyFilter
	}

	ps := b.client.Subscribe(ctx, ChannelFor(f.UserID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to feed: %w", err)
	}

	sub := &redisSubscription{
		ps:     ps,
		filter: f,
		logger: b.logger,
		out:    make(chan Event),
		done:   make(chan struct{}),
	}
	go sub.run(ps.Channel())
	return sub, nil
}

type redisSubscription struct {
	ps     *redis.PubSub
	filter Filter
	logger logger.Logger

	out  chan Event
	done chan struct{}
	once sync.Once
	err  error
}

func (s *redisSubscription) Events() <-chan Event { return s.out }

func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.ps.Close()
	})
	return s.err
}

func (s *redisSubscription) run(msgs <-chan *redis.Message) {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Warn("dropping undecodable feed message",
					logger.String("channel", msg.Channel),
					logger.Error(err))
				continue
			}
			if !s.filter.Matches(ev) {
				continue
			}

			select {
			case s.out <- ev:
			case <-s.done:
				return
			}
		}
	}
}
