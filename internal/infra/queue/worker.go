package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kklick/funnel-api/internal/infra/http/middleware"
)

// NotificationSender delivers a lead notification (SMTP in production).
type NotificationSender interface {
	SendLeadNotification(n LeadNotification) error
}

type Worker struct {
	Channel *amqp.Channel
	Sender  NotificationSender
}

func NewWorker(ch *amqp.Channel, sender NotificationSender) *Worker {
	return &Worker{
		Channel: ch,
		Sender:  sender,
	}
}

// Start consumes the notification queue until the channel closes. Failed
// deliveries are not retried in-process: they are rejected to the dead-letter
// queue and logged. A lost notification never blocks the funnel.
func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("[worker] registering consumer: %s", err)
	}

	log.Printf("[worker] waiting for lead notifications on %q", queueName)

	for d := range msgs {
		var n LeadNotification
		if err := json.Unmarshal(d.Body, &n); err != nil {
			log.Printf("[worker] dropping malformed message: %s", err)
			d.Nack(false, false)
			continue
		}

		if err := w.Sender.SendLeadNotification(n); err != nil {
			log.Printf("[worker] lead notification for %s failed: %s", n.LeadID, err)
			middleware.RecordNotificationError()
			d.Nack(false, false)
			continue
		}

		log.Printf("[worker] lead notification sent for %s (repeat=%t)", n.LeadID, n.Repeat)
		d.Ack(false)
	}
}
