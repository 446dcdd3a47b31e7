package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartEngagementConsumer connects to RabbitMQ, declares the engagement
// queues (durable), and consumes from both, writing each event to the
// server log. It runs a reconnect loop with exponential backoff and never
// returns under normal operation; callers run it in a goroutine.
func StartEngagementConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("engagement-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("engagement-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("engagement-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{VideoPublishedQueue, ChannelSubscribedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	videos, err := ch.Consume(VideoPublishedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", VideoPublishedQueue, err)
	}
	subs, err := ch.Consume(ChannelSubscribedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ChannelSubscribedQueue, err)
	}

	for {
		select {
		case d, ok := <-videos:
			if !ok {
				return fmt.Errorf("%s channel closed", VideoPublishedQueue)
			}
			handleDelivery(d, &VideoPublishedEvent{})
		case d, ok := <-subs:
			if !ok {
				return fmt.Errorf("%s channel closed", ChannelSubscribedQueue)
			}
			handleDelivery(d, &ChannelSubscribedEvent{})
		}
	}
}

func handleDelivery(d amqp.Delivery, into interface{}) {
	if err := json.Unmarshal(d.Body, into); err != nil {
		log.Printf("engagement-consumer: bad payload on %s: %v", d.RoutingKey, err)
		_ = d.Nack(false, false) // drop malformed messages, do not requeue
		return
	}
	log.Printf("engagement-consumer: %s %+v", d.RoutingKey, into)
	_ = d.Ack(false)
}
