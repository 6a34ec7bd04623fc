package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/banksim/pkg/domain/events"
	"github.com/amirasaad/banksim/pkg/eventbus"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultBlock = time.Second

// message is the JSON stored in the "event" field of every stream entry.
type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// streamKeys names the Redis keys used for one event type:
// "Transaction.Completed" becomes events:transaction:completed,
// dlq:transaction:completed and so on.
type streamKeys struct {
	stream   string
	dlq      string
	group    string
	consumer string
}

func keysFor(eventType string) streamKeys {
	base := strings.ToLower(strings.ReplaceAll(eventType, ".", ":"))
	return streamKeys{
		stream:   "events:" + base,
		dlq:      "dlq:" + base,
		group:    "group:" + base,
		consumer: "consumer:" + base,
	}
}

// RedisEventBus publishes events to one Redis stream per event type and
// consumes them through consumer groups.
type RedisEventBus struct {
	client        redis.UniversalClient
	typeFactories map[string]func() events.Event
	block         time.Duration
	logger        *slog.Logger

	// handlers counts registrations per event type. Each registration gets
	// its own consumer group so every handler sees every event.
	mu       sync.Mutex
	handlers map[string]int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RedisOption configures a RedisEventBus.
type RedisOption func(*RedisEventBus)

// WithBlock sets how long a consumer blocks on XREADGROUP per poll.
func WithBlock(d time.Duration) RedisOption {
	return func(b *RedisEventBus) {
		if d > 0 {
			b.block = d
		}
	}
}

// WithTypes replaces the decoder registry. Defaults to events.EventTypes.
func WithTypes(types map[string]func() events.Event) RedisOption {
	return func(b *RedisEventBus) { b.typeFactories = types }
}

// NewWithRedis creates a Redis-backed event bus on an existing client.
func NewWithRedis(client redis.UniversalClient, logger *slog.Logger, opts ...RedisOption) *RedisEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisEventBus{
		client:        client,
		typeFactories: events.EventTypes,
		block:         defaultBlock,
		logger:        logger.With("component", "redis-event-bus"),
		handlers:      make(map[string]int),
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Emit publishes an event to the stream for its type.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis event bus: marshal failed: %w", err)
	}
	raw, err := json.Marshal(message{Type: event.Type(), Payload: data})
	if err != nil {
		return fmt.Errorf("redis event bus: message marshal failed: %w", err)
	}

	stream := keysFor(event.Type()).stream
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": string(raw)},
	}).Err(); err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", event.Type(), "stream", stream)
	return nil
}

// Register creates a consumer group for this handler and starts a consumer
// goroutine that runs until Close. Consumers inside one group split the
// stream between them, so handlers never share a group: the n-th handler
// registered for eventType reads through "group:<type>:<n>". The numbering
// follows registration order, which keeps group names stable across restarts.
func (b *RedisEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	n := b.handlers[eventType]
	b.handlers[eventType] = n + 1
	b.mu.Unlock()

	keys := keysFor(eventType)
	keys.group += ":" + strconv.Itoa(n)
	consumer := keys.consumer + ":" + uuid.NewString()

	err := b.client.XGroupCreateMkStream(b.ctx, keys.stream, keys.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		b.logger.Error("failed to create consumer group", "error", err, "stream", keys.stream)
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(keys, consumer, handler)
	}()
	b.logger.Info("handler registered", "event_type", eventType, "group", keys.group, "consumer", consumer)
}

func (b *RedisEventBus) consume(keys streamKeys, consumer string, handler eventbus.HandlerFunc) {
	for b.ctx.Err() == nil {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    keys.group,
			Consumer: consumer,
			Streams:  []string{keys.stream, ">"},
			Count:    10,
			Block:    b.block,
		}).Result()
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				b.logger.Error("error reading from stream", "error", err, "consumer", consumer)
				select {
				case <-b.ctx.Done():
					return
				case <-time.After(100 * time.Millisecond):
				}
			}
			continue
		}

		for _, s := range res {
			for _, msg := range s.Messages {
				if err := b.handle(msg, handler); err != nil {
					b.logger.Error("handler failed", "error", err, "stream", keys.stream)
					b.pushToDLQ(keys.dlq, msg.Values)
				}
				if err := b.client.XAck(b.ctx, keys.stream, keys.group, msg.ID).Err(); err != nil {
					b.logger.Error("failed to acknowledge message", "error", err, "msg_id", msg.ID)
				}
			}
		}
	}
}

func (b *RedisEventBus) handle(msg redis.XMessage, handler eventbus.HandlerFunc) (err error) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		return errors.New("message has no event field")
	}
	var m message
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	constructor, ok := b.typeFactories[m.Type]
	if !ok {
		return fmt.Errorf("unknown event type %q", m.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(m.Payload, evt); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(b.ctx, evt)
}

// pushToDLQ copies the raw entry to the dead-letter stream dlq.
func (b *RedisEventBus) pushToDLQ(dlq string, values map[string]any) {
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlq)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

// Close stops every consumer and waits for them to return. The client is
// owned by the caller and stays open.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
