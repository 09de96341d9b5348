package storage

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"rental-estimator/models"
)

// QueuePublisher publishes each scraped raw listing as a JSON message to a
// durable AMQP queue, for consumers that process listings as they arrive.
type QueuePublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewQueuePublisher dials the broker and declares the queue.
func NewQueuePublisher(url, queueName string) (*QueuePublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue: open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue: declare %q: %w", queueName, err)
	}

	return &QueuePublisher{conn: conn, channel: ch, queue: q.Name}, nil
}

// WriteRaw publishes one persistent message per listing.
func (p *QueuePublisher) WriteRaw(listings []*models.RawListing) error {
	for _, l := range listings {
		msg, err := rawMessage(l)
		if err != nil {
			return err
		}
		if err := p.channel.Publish("", p.queue, false, false, msg); err != nil {
			return fmt.Errorf("queue: publish %s: %w", l.URL, err)
		}
	}
	return nil
}

func rawMessage(l *models.RawListing) (amqp.Publishing, error) {
	body, err := json.Marshal(l)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("queue: encode listing: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    l.URL,
		Type:         "listing.scraped",
		Timestamp:    l.ScrapedAt,
		Body:         body,
	}, nil
}

func (p *QueuePublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		_ = p.conn.Close()
		return fmt.Errorf("queue: close channel: %w", err)
	}
	return p.conn.Close()
}
