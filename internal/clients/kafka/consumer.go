package kafka

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

type consumerConfig interface {
	producerConfig
	ConsumerGroup() string
}

type exportHandler interface {
	HandleExportRequest(ctx context.Context, userID int64) error
}

type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	handler       exportHandler
}

func NewConsumer(cfg consumerConfig, handler exportHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers(), cfg.ConsumerGroup(), config)
	if err != nil {
		return nil, errors.Wrap(err, "create consumer group")
	}
	return &Consumer{
		consumerGroup: consumerGroup,
		topic:         cfg.ExportsTopic(),
		handler:       handler,
	}, nil
}

func (c *Consumer) StartConsuming(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("consume from %s", c.topic))
			}
		}
	}
}

func (c *Consumer) Close() {
	if err := c.consumerGroup.Close(); err != nil {
		logger.Error("failed to close consumer group", zap.Error(err))
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - setup")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - cleanup")
	return nil
}

// ConsumeClaim marks every message, failed exports are reported to the user and not redelivered.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		c.processMessage(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (c *Consumer) processMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	var req ExportRequest
	if err := json.Unmarshal(message.Value, &req); err != nil {
		logger.Error("cannot unmarshal kafka message", zap.Error(err))
		return
	}
	logger.Info(
		"received export request",
		zap.ByteString("key", message.Key),
		zap.String("requestID", req.RequestID),
		zap.Int64("userID", req.UserID),
	)

	if err := c.handler.HandleExportRequest(ctx, req.UserID); err != nil {
		logger.Error("failed to handle export request",
			zap.String("requestID", req.RequestID),
			zap.Error(err))
	}
}
