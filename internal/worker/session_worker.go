package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/chefhut/storefront/internal/session"
)

const (
	DefaultExchange = "session.events"
	idempotencyTTL  = 24 * time.Hour
)

// Channel is the part of *amqp.Channel the worker and publisher use.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Dedup remembers which events were already handled.
type Dedup interface {
	// Claim reports whether key was not seen before, and marks it seen.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type redisDedup struct{ client *redis.Client }

func NewRedisDedup(client *redis.Client) Dedup { return &redisDedup{client: client} }

func (d *redisDedup) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return d.client.SetNX(ctx, key, "1", ttl).Result()
}

// SetupRabbitMQ declares the fanout exchange and this replica's exclusive,
// auto-deleted queue bound to it. It returns the queue name.
func SetupRabbitMQ(ch Channel, exchange string) (string, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return "", fmt.Errorf("declare session queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return "", fmt.Errorf("bind session queue: %w", err)
	}
	return q.Name, nil
}

// Publisher sends session events to the fanout exchange.
type Publisher struct {
	channel  Channel
	exchange string
}

func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{channel: ch, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, e session.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}
	return p.channel.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   e.ID,
		Timestamp:   e.At,
		Type:        string(e.Type),
		Body:        body,
	})
}

// SessionEventWorker delivers events published by other replicas to the
// local session store subscribers.
type SessionEventWorker struct {
	channel Channel
	queue   string
	store   *session.Store
	dedup   Dedup
	log     *slog.Logger
	done    chan struct{}
}

func NewSessionEventWorker(ch Channel, queue string, store *session.Store, dedup Dedup, log *slog.Logger) *SessionEventWorker {
	return &SessionEventWorker{
		channel: ch,
		queue:   queue,
		store:   store,
		dedup:   dedup,
		log:     log,
		done:    make(chan struct{}),
	}
}

func (w *SessionEventWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(w.queue, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("session event worker started", "queue", w.queue)
	return nil
}

func (w *SessionEventWorker) Stop() { close(w.done) }

func (w *SessionEventWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var e session.Event
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		w.log.Error("unmarshal session event", "error", err)
		_ = msg.Nack(false, false)
		return
	}
	if e.Origin == w.store.Origin() {
		_ = msg.Ack(false)
		return
	}

	log := w.log.With("event_id", e.ID, "type", e.Type, "origin", e.Origin)

	// Keyed per replica: every replica must see each event once.
	key := "session_event:" + w.store.Origin() + ":" + e.ID
	fresh, err := w.dedup.Claim(ctx, key, idempotencyTTL)
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if !fresh {
		log.Info("session event already handled, skipping")
		_ = msg.Ack(false)
		return
	}

	w.store.Dispatch(ctx, e)
	_ = msg.Ack(false)
	log.Debug("session event dispatched")
}
