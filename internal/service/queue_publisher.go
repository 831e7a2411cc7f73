// Package queue_publisher publishes provisioning activity events to
// RabbitMQ. Errors are logged and returned so callers can ignore failures
// without interrupting the request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/identikit/scim-bridge/internal/queue"
)

// activityQueue is the durable queue provisioning events are published to.
const activityQueue = "scim.activity"

// PublishProvisioningActivity publishes a ProvisioningEvent to the
// activity queue. Publishing is best effort: with no broker configured the
// call is a no-op, and any failure is logged and returned for the caller
// to ignore. Messages are marked persistent.
func PublishProvisioningActivity(ctx context.Context, event q.ProvisioningEvent) error {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	if url == "" {
		// No broker configured; activity events are disabled.
		return nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so events survive
	// broker restarts.
	if _, err := ch.QueueDeclare(
		activityQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",            // default exchange
		activityQueue, // routing key = queue name
		false,         // mandatory
		false,         // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
