package main

import (
	"encoding/json"
	"log"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/unclebandit/scaletracker-backend/internal/config"
	"github.com/unclebandit/scaletracker-backend/internal/events"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	cfg, err := config.LoadFromEnv("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.AMQP.URL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	// Connect to RabbitMQ
	conn, err := amqp.Dial(cfg.AMQP.URL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.AMQP.Queue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		log.Fatal("Failed to declare queue:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var ev events.ReminderEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				log.Println("Invalid event:", err)
				d.Ack(false)
				continue
			}

			log.Printf("[Worker] scale reminder sent: %s / %s (campaign %d, sweep %s, at %s)",
				ev.AccountName, ev.CampaignName, ev.CampaignID, ev.SweepID, ev.SentAt)

			d.Ack(false)
		}
	}()

	log.Println("Worker running, waiting for reminder events...")
	<-forever
}
