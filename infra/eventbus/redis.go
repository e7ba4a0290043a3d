package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RedisEventBus implements eventbus.Bus on Redis Streams. Each event type has
// its own stream, read through one consumer group. Messages whose handler
// fails or panics are copied to a dead-letter stream before being acknowledged.
// On start a consumer first drains its own pending entries, then claims
// entries left idle by other consumers for longer than the claim threshold.
type RedisEventBus struct {
	client    *redis.Client
	group     string
	consumer  string
	block     time.Duration
	claimIdle time.Duration
	logger   *slog.Logger
	decoders map[string]func([]byte) (events.Event, error)

	mu       sync.Mutex
	handlers map[string][]eventbus.HandlerFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RedisOption configures a RedisEventBus.
type RedisOption func(*RedisEventBus)

// WithBlockTimeout sets how long a consumer waits for new messages per read.
func WithBlockTimeout(d time.Duration) RedisOption {
	return func(b *RedisEventBus) { b.block = d }
}

// WithConsumerName sets the consumer name within the group. It must be stable
// across restarts of the same process so its pending entries are picked up again.
func WithConsumerName(name string) RedisOption {
	return func(b *RedisEventBus) { b.consumer = name }
}

// WithClaimMinIdle sets how long an entry must stay unacknowledged by another
// consumer before this one claims it.
func WithClaimMinIdle(d time.Duration) RedisOption {
	return func(b *RedisEventBus) { b.claimIdle = d }
}

// NewWithRedis connects to url and creates a Redis-backed event bus.
func NewWithRedis(url, group string, logger *slog.Logger, opts ...RedisOption) (*RedisEventBus, error) {
	if url == "" || group == "" {
		return nil, errors.New("redis event bus: url and group are required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}
	return NewWithRedisClient(client, group, logger, opts...), nil
}

// NewWithRedisClient creates a Redis-backed event bus on an existing client.
// The bus owns the client and closes it on Close.
func NewWithRedisClient(client *redis.Client, group string, logger *slog.Logger, opts ...RedisOption) *RedisEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisEventBus{
		client:    client,
		group:     group,
		consumer:  defaultConsumerName(group),
		block:     2 * time.Second,
		claimIdle: time.Minute,
		logger:    logger.With("bus", "redis"),
		decoders:  events.Decoders,
		handlers:  make(map[string][]eventbus.HandlerFunc),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Emit appends the event to the stream for its type.
func (b *RedisEventBus) Emit(ctx context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redis event bus: marshal failed: %w", err)
	}
	env, err := json.Marshal(envelope{Type: e.Type(), Payload: payload})
	if err != nil {
		return fmt.Errorf("redis event bus: envelope marshal failed: %w", err)
	}
	err = b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamNameFor(e.Type()),
		Values: map[string]any{"event": string(env)},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", e.Type())
	return nil
}

// Register adds a handler for eventType. The first registration for a type
// creates its consumer group and starts consuming.
func (b *RedisEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	if len(b.handlers[eventType]) > 1 {
		return
	}

	stream := streamNameFor(eventType)
	err := b.client.XGroupCreateMkStream(b.ctx, stream, b.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		b.logger.Error("failed to create consumer group", "stream", stream, "group", b.group, "error", err)
	}

	b.wg.Add(1)
	go b.consume(eventType, stream, b.consumer)
	b.logger.Info("handler registered", "type", eventType, "consumer", b.consumer)
}

func defaultConsumerName(group string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return group + "-" + host
}

func (b *RedisEventBus) consume(eventType, stream, consumer string) {
	defer b.wg.Done()
	b.drainPending(eventType, stream, consumer)
	b.claimIdleEntries(eventType, stream, consumer)
	for b.ctx.Err() == nil {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    b.block,
		}).Result()
		if err != nil {
			if b.ctx.Err() != nil || errors.Is(err, redis.Nil) {
				continue
			}
			b.logger.Error("error reading from stream", "stream", stream, "error", err)
			select {
			case <-b.ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		for _, s := range res {
			for _, msg := range s.Messages {
				b.handle(eventType, stream, msg)
			}
		}
	}
}

// drainPending handles entries delivered to consumer before a restart.
func (b *RedisEventBus) drainPending(eventType, stream, consumer string) {
	for b.ctx.Err() == nil {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: consumer,
			Streams:  []string{stream, "0"},
			Count:    100,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && b.ctx.Err() == nil {
				b.logger.Error("error reading pending entries", "stream", stream, "error", err)
			}
			return
		}
		n := 0
		for _, s := range res {
			for _, msg := range s.Messages {
				b.handle(eventType, stream, msg)
				n++
			}
		}
		if n == 0 {
			return
		}
		b.logger.Info("pending entries recovered", "stream", stream, "count", n)
	}
}

// claimIdleEntries takes over entries other consumers read but never acknowledged.
func (b *RedisEventBus) claimIdleEntries(eventType, stream, consumer string) {
	start := "0-0"
	for b.ctx.Err() == nil {
		msgs, next, err := b.client.XAutoClaim(b.ctx, &redis.XAutoClaimArgs{
			Stream:   stream,
			Group:    b.group,
			Consumer: consumer,
			MinIdle:  b.claimIdle,
			Start:    start,
			Count:    100,
		}).Result()
		if err != nil {
			if b.ctx.Err() == nil {
				b.logger.Error("error claiming idle entries", "stream", stream, "error", err)
			}
			return
		}
		for _, msg := range msgs {
			b.handle(eventType, stream, msg)
		}
		if len(msgs) > 0 {
			b.logger.Info("idle entries claimed", "stream", stream, "count", len(msgs))
		}
		if next == "" || next == "0-0" {
			return
		}
		start = next
	}
}

func (b *RedisEventBus) handle(eventType, stream string, msg redis.XMessage) {
	defer func() {
		if err := b.client.XAck(b.ctx, stream, b.group, msg.ID).Err(); err != nil {
			b.logger.Error("failed to acknowledge message", "id", msg.ID, "error", err)
		}
	}()

	e, err := b.decode(msg)
	if err != nil {
		b.logger.Error("failed to decode message", "id", msg.ID, "error", err)
		b.pushToDLQ(eventType, msg.Values)
		return
	}

	b.mu.Lock()
	handlers := append([]eventbus.HandlerFunc{}, b.handlers[eventType]...)
	b.mu.Unlock()
	for _, handler := range handlers {
		if !b.dispatch(handler, e) {
			b.pushToDLQ(eventType, msg.Values)
			return
		}
	}
}

func (b *RedisEventBus) decode(msg redis.XMessage) (events.Event, error) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		return nil, errors.New("missing event field")
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, err
	}
	decode, ok := b.decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	return decode(env.Payload)
}

func (b *RedisEventBus) dispatch(handler eventbus.HandlerFunc, e events.Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic recovered in event handler", "type", e.Type(), "panic", r)
			ok = false
		}
	}()
	if err := handler(b.ctx, e); err != nil {
		b.logger.Error("failed to process event", "type", e.Type(), "error", err)
		return false
	}
	return true
}

func (b *RedisEventBus) pushToDLQ(eventType string, values map[string]any) {
	dlq := dlqStreamName(eventType)
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "stream", dlq, "error", err)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

// Close stops all consumers and closes the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

func streamNameFor(eventType string) string {
	return "events:" + strings.ToLower(eventType)
}

func dlqStreamName(eventType string) string {
	return "dlq:" + strings.ToLower(eventType)
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
