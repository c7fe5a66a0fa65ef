package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/Shopify/sarama"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

type producerConfig interface {
	Brokers() []string
	ExportsTopic() string
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

func NewProducer(cfg producerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers(), config)
	if err != nil {
		return nil, errors.Wrap(err, "create producer")
	}
	return newProducer(producer, cfg.ExportsTopic()), nil
}

func newProducer(producer sarama.SyncProducer, topic string) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

// RequestExport queues an export for the user and returns the request id.
// Messages are keyed by user so one user's requests stay ordered.
func (p *Producer) RequestExport(_ context.Context, userID int64) (string, error) {
	req := ExportRequest{
		RequestID:   uuid.NewString(),
		UserID:      userID,
		RequestedAt: p.now().UTC(),
	}
	message, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode export request")
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(userID, 10)),
		Value: sarama.ByteEncoder(message),
	})
	if err != nil {
		return "", errors.Wrap(err, "send export request")
	}

	logger.Info("export requested",
		zap.String("requestID", req.RequestID),
		zap.Int64("userID", userID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return req.RequestID, nil
}

func (p *Producer) Close() {
	err := p.producer.Close()
	if err != nil {
		logger.Error("failed to close producer", zap.Error(err))
	}
}
