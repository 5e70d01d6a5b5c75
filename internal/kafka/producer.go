package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"eventdesk/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

// PublishRegistrationStatus streams a registration status change to Kafka.
// Downstream consumers (mailers, check-in devices) react to these; the
// dashboard itself never reads them back.
func (p *Producer) PublishRegistrationStatus(evt models.RegistrationStatusEvent) error {
	msgBytes, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [registration_status]: %s\n", string(msgBytes))

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(evt.RegistrationID),
			Value: msgBytes,
		},
	)
}

// Close shuts down the underlying writer.
func (p *Producer) Close() error {
	return p.Writer.Close()
}
