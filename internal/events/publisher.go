// internal/events/publisher.go
package events

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
)

// TopicReminders is the queue/topic reminder events are published to.
const TopicReminders = "scale_reminders"

// ReminderEvent mirrors one successful ledger append for downstream
// consumers (Slack bridges, audit taps). Delivery is best effort by
// contract; the ledger row is the system of record.
type ReminderEvent struct {
	SweepID      string    `json:"sweep_id,omitempty"`
	CampaignID   int       `json:"campaign_id"`
	AccountName  string    `json:"account_name"`
	CampaignName string    `json:"campaign_name"`
	SentAt       time.Time `json:"sent_at"`
}

// Publisher fans a reminder event out to interested consumers.
// Implementations must be non-blocking enough for the dispatch path;
// errors are logged by the caller, never propagated.
type Publisher interface {
	ReminderSent(ev ReminderEvent) error
}

// AMQPPublisher publishes reminder events to a durable queue.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewAMQPPublisher connects to the broker and declares the queue.
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *AMQPPublisher) ReminderSent(ev ReminderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.ch.Publish(
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

var _ Publisher = (*AMQPPublisher)(nil)
