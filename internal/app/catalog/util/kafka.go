package util

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"kmarket/pkg/metrics"
)

// KafkaProducer - продюсер событий каталога
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{
		writer: writer,
		topic:  topic,
	}
}

// PublishMessage отправляет сообщение в топик
// Ключ - id товара, события одного товара попадают в одну партицию
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	metrics.RecordKafkaMessageProduced(p.topic)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
