package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"earningsbot/src/model"
)

// OrderPublisher emits every fill as a JSON OrderResult on a Kafka topic, keyed by
// ticker so a ticker's fills stay ordered within a partition.
type OrderPublisher struct {
	logger   *logrus.Entry
	producer sarama.SyncProducer
	topic    string
}

// NewOrderPublisher connects a synchronous producer. It returns nil, nil when no
// brokers are configured.
func NewOrderPublisher(logger *logrus.Entry, brokers []string, topic string) (*OrderPublisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewOrderPublisherWithProducer(logger, producer, topic), nil
}

func NewOrderPublisherWithProducer(logger *logrus.Entry, producer sarama.SyncProducer, topic string) *OrderPublisher {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &OrderPublisher{logger: logger.WithField("sink", "kafka"), producer: producer, topic: topic}
}

// MirrorOrder publishes r.
func (p *OrderPublisher) MirrorOrder(_ context.Context, r model.OrderResult) error {
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(r.Ticker),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("publish order %s: %w", r.OrderID, err)
	}

	p.logger.WithFields(logrus.Fields{
		"order_id":  r.OrderID,
		"topic":     p.topic,
		"partition": partition,
		"offset":    offset,
	}).Debug("Order published")
	return nil
}

func (p *OrderPublisher) Close() error {
	return p.producer.Close()
}
