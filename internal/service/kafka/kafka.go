package kafka

import (
	"context"
	"errors"
	"fmt"
	"github.com/kotche/notekeeper/infrastructure/logger"
	"github.com/segmentio/kafka-go"
	"net"
	"strconv"
	"time"
)

type Producer struct {
	writer *kafka.Writer
}

// NewProducer makes sure the topic exists and returns a writer keyed by message key.
func NewProducer(brokers []string, topic string, numPartitions, replicationFactor int) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if err := ensureTopic(brokers, topic, numPartitions, replicationFactor); err != nil {
		return nil, err
	}

	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}, nil
}

func (p *Producer) SendMessage(ctx context.Context, key, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          topic,
			GroupID:        groupID,
			CommitInterval: time.Second,
		}),
	}
}

func (c *Consumer) ReadMessage(ctx context.Context) (key, value []byte, err error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read message from kafka: %w", err)
	}
	return msg.Key, msg.Value, nil
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	return nil
}

// ensureTopic creates the topic through the cluster controller, trying the
// brokers in order until one answers.
func ensureTopic(brokers []string, topic string, numPartitions, replicationFactor int) error {
	var lastErr error
	for _, broker := range brokers {
		lastErr = createTopic(broker, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     numPartitions,
			ReplicationFactor: replicationFactor,
		})
		if lastErr == nil {
			return nil
		}
		logger.Log.WithError(lastErr).Warnf("kafka broker %s unavailable", broker)
	}
	return fmt.Errorf("failed to ensure kafka topic %q: %w", topic, lastErr)
}

func createTopic(broker string, cfg kafka.TopicConfig) error {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return fmt.Errorf("failed to connect to kafka broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find kafka controller: %w", err)
	}
	ctrlConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to connect to kafka controller: %w", err)
	}
	defer ctrlConn.Close()

	if err = ctrlConn.CreateTopics(cfg); err != nil {
		if errors.Is(err, kafka.TopicAlreadyExists) {
			logger.Log.Debugf("kafka topic %q already exists", cfg.Topic)
			return nil
		}
		return err
	}

	logger.Log.Infof("kafka topic %q created", cfg.Topic)
	return nil
}
