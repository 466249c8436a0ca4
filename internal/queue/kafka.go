package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/IBM/sarama"

	"messageboard/internal/domain"
)

type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return newKafka(producer, topic), nil
}

func newKafka(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{
		producer: producer,
		topic:    topic,
	}
}

// Publish keys events by message id so every change to one message lands on
// the same partition, in order.
func (k *Kafka) Publish(ctx context.Context, evt domain.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(evt.MessageID, 10)),
		Value: sarama.ByteEncoder(data),
	})

	return err
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

type KafkaConsumer struct {
	group   sarama.ConsumerGroup
	topic   string
	log     *slog.Logger
	handler func(ctx context.Context, evt domain.Event) error
}

func NewKafkaConsumer(brokers []string, groupID, topic string, log *slog.Logger) (*KafkaConsumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	return &KafkaConsumer{
		group: group,
		topic: topic,
		log:   log,
	}, nil
}

func (c *KafkaConsumer) Consume(ctx context.Context, handler func(ctx context.Context, evt domain.Event) error) error {
	c.handler = handler

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
				return err
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.group.Close()
}

func (c *KafkaConsumer) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (c *KafkaConsumer) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (c *KafkaConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var evt domain.Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			c.log.Warn("skipping undecodable event", "offset", msg.Offset, "error", err)
			session.MarkMessage(msg, "")
			continue
		}

		// Offsets commit cumulatively, so a failed event cannot be held back for
		// redelivery without stalling its partition. Delivery is at most once.
		if err := c.handler(session.Context(), evt); err != nil {
			c.log.Error("handle event, dropping it", "id", evt.ID, "type", evt.Type, "offset", msg.Offset, "error", err)
		}

		session.MarkMessage(msg, "")
	}
	return nil
}
