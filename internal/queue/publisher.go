package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// dialTimeout keeps a request from stalling on an unreachable broker.
const dialTimeout = 2 * time.Second

// redialCooldown is how long Publish fails fast after a failed dial.
const redialCooldown = 10 * time.Second

// ErrBrokerUnavailable is returned while the publisher waits out the
// cooldown that follows a failed connect.
var ErrBrokerUnavailable = errors.New("rabbitmq: broker unavailable, retry later")

// Publisher sends interview events to RabbitMQ.  The connection and
// channel are opened lazily and reopened after a failure, so a broker
// that is down at startup only costs the events published meanwhile.
// Errors are logged and returned; callers treat publishing as best
// effort.
type Publisher struct {
	url string

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	failedAt time.Time
	now      func() time.Time
}

// NewPublisher returns a publisher for the broker at url.  No connection
// is made until the first Publish.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, now: time.Now}
}

// Publish marshals ev and sends it to the events queue as a persistent
// message.  OccurredAt is filled in when empty.
func (p *Publisher) Publish(ctx context.Context, ev InterviewEvent) error {
	if ev.Type == "" {
		return errors.New("event type is empty")
	}
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if errors.Is(err, ErrBrokerUnavailable) {
		return err
	}
	if err != nil {
		log.Printf("rabbitmq: connect failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",          // default exchange
		EventsQueue, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish %s failed: %v", ev.Type, err)
		p.resetLocked()
		return err
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	p.ch, p.conn = nil, nil
	return err
}

func (p *Publisher) channelLocked() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.resetLocked()
	if !p.failedAt.IsZero() && p.now().Sub(p.failedAt) < redialCooldown {
		return nil, ErrBrokerUnavailable
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		p.failedAt = p.now()
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	p.failedAt = time.Time{}
	return ch, nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}
