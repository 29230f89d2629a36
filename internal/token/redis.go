package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"event-planner-web/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix  = "eventplanner:client:"
	defaultRedisChannel = "eventplanner:storage"
)

// RedisBackend stores values under "<prefix><client_id>:<key>".
// Tokens carry their own expiry, so keys are written without a TTL.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) (*RedisBackend, error) {
	if client == nil {
		return nil, errors.New("token: redis client is nil")
	}
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (b *RedisBackend) key(clientID, key string) string {
	return b.prefix + clientID + ":" + key
}

func (b *RedisBackend) Load(ctx context.Context, clientID, key string) (string, error) {
	v, err := b.client.Get(ctx, b.key(clientID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

func (b *RedisBackend) Save(ctx context.Context, clientID, key, value string) error {
	if err := b.client.Set(ctx, b.key(clientID, key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, clientID, key string) error {
	if err := b.client.Del(ctx, b.key(clientID, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// RedisSignal fans storage changes out across every process subscribed to the same channel.
// Events published by this process come back through Redis as well, so
// subscribers see exactly one delivery per change.
type RedisSignal struct {
	client  *redis.Client
	channel string
	pubsub  *redis.PubSub
	local   *LocalSignal
	log     *slog.Logger
	done    chan struct{}
}

func NewRedisSignal(ctx context.Context, client *redis.Client, channel string, log *slog.Logger) (*RedisSignal, error) {
	if client == nil {
		return nil, errors.New("token: redis client is nil")
	}
	if channel == "" {
		channel = defaultRedisChannel
	}

	ps := client.Subscribe(ctx, channel)
	// Wait for the subscription to be confirmed so no publish is missed after return.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	s := &RedisSignal{
		client:  client,
		channel: channel,
		pubsub:  ps,
		local:   NewLocalSignal(),
		log:     logger.OrDefault(log),
		done:    make(chan struct{}),
	}
	go s.run()
	return s, nil
}

func (s *RedisSignal) run() {
	defer close(s.done)
	for msg := range s.pubsub.Channel() {
		var ev ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			s.log.Warn("dropping malformed storage event", "err", err)
			continue
		}
		s.local.deliver(ev)
	}
}

func (s *RedisSignal) Publish(ctx context.Context, ev ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, data).Err()
}

func (s *RedisSignal) Subscribe(fn func(ChangeEvent)) func() {
	return s.local.Subscribe(fn)
}

// Close stops receiving and waits for the delivery goroutine to exit.
func (s *RedisSignal) Close() error {
	err := s.pubsub.Close()
	<-s.done
	return err
}
