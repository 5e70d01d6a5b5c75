package kafka

import (
	"log"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// EnsureTopicsExist creates the given topics on the cluster controller.
// Already-existing topics are fine; other per-topic failures are logged
// and the remaining topics are still attempted.
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		err := controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		switch {
		case err == nil:
			log.Printf("Created topic: %s", topic)
		case err.Error() == "kafka server: topic already exists":
			log.Printf("Topic %s already exists", topic)
		default:
			log.Printf("Error creating topic %s: %v", topic, err)
		}
	}

	// Give the cluster a moment to propagate topic metadata
	time.Sleep(1 * time.Second)
	return nil
}

// CreateTopicIfNotExists creates a single topic if it doesn't exist.
func CreateTopicIfNotExists(brokers []string, topic string) error {
	return EnsureTopicsExist(brokers, []string{topic})
}
