package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NotAnonymousUser/Ticket-System/internal/config"

	"github.com/IBM/sarama"
)

// LifecycleEvent is the record written to the Kafka topic.
type LifecycleEvent struct {
	EventType string       `json:"event_type"`
	Data      Notification `json:"data"`
}

// Kafka publishes every notification as a LifecycleEvent keyed by
// ticket code, so all events of one ticket land in one partition.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(cfg config.KafkaConfig) (*Kafka, error) {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 5

	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewKafkaWithProducer(p, cfg.Topic), nil
}

func NewKafkaWithProducer(p sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{producer: p, topic: topic}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Publish(_ context.Context, n Notification, _ Message) error {
	// Recipients are delivery detail, not part of the event.
	n.Recipients = nil
	b, err := json.Marshal(LifecycleEvent{EventType: string(n.Event), Data: n})
	if err != nil {
		return err
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(n.Ticket.Code),
		Value: sarama.ByteEncoder(b),
	})
	return err
}

func (k *Kafka) Close() error { return k.producer.Close() }
