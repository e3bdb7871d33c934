package writer

import (
	"context"
	"encoding/json"
	"fmt"

	kafka "github.com/segmentio/kafka-go"

	appconfig "bondflow/config"
	"bondflow/logger"
)

// KafkaPublisher pushes flushed ledger batches onto a topic as JSON, keyed by
// ledger name so consumers can partition per service.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *logger.Log
}

func NewKafkaPublisher(cfg *appconfig.Config) (*KafkaPublisher, error) {
	if len(cfg.Storage.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	kp := &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Storage.Kafka.Brokers...),
			Topic:    cfg.Storage.Kafka.Topic,
			Balancer: &kafka.LeastBytes{},
		},
		log: logger.GetLogger(),
	}
	kp.log.WithComponent("kafka_publisher").WithFields(logger.Fields{
		"brokers": cfg.Storage.Kafka.Brokers,
		"topic":   cfg.Storage.Kafka.Topic,
	}).Debug("kafka publisher initialized")
	return kp, nil
}

// Publish implements BatchSink.
func (kp *KafkaPublisher) Publish(ctx context.Context, batch Batch) {
	log := kp.log.WithComponent("kafka_publisher")

	data, err := json.Marshal(batch)
	if err != nil {
		log.WithError(err).Warn("failed to marshal batch")
		return
	}
	msg := kafka.Message{
		Key:   []byte(batch.Ledger),
		Value: data,
	}
	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		log.WithError(err).Warn("failed to write message")
		return
	}
	log.WithFields(logger.Fields{
		"batch_id": batch.BatchID,
		"records":  batch.RecordCount,
	}).Debug("batch written to kafka")
}

// Close releases the underlying connections.
func (kp *KafkaPublisher) Close() {
	kp.writer.Close()
	kp.log.WithComponent("kafka_publisher").Debug("kafka publisher closed")
}
