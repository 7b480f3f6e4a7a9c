// Package intake consumes order commands from Kafka and applies them through
// the order service. Malformed or rejected commands are logged and skipped;
// the stream keeps moving.
package intake

import (
	"context"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"vela/service"
)

type Consumer struct {
	reader *kafka.Reader
	svc    *service.OrderService
	log    *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, svc *service.OrderService, log *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, svc: svc, log: log}
}

// Run consumes until the context is cancelled or the reader is closed.
func (c *Consumer) Run(ctx context.Context) {
	c.log.Info("intake started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			// io.EOF means the reader was closed during shutdown.
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			c.log.Error("read failed", zap.Error(err))
			return
		}
		c.apply(msg.Value)
	}
}

func (c *Consumer) apply(raw []byte) {
	cmd, err := ParseCommand(raw)
	if err != nil {
		c.log.Warn("command dropped", zap.Error(err))
		return
	}

	switch cmd.Action {
	case ActionPlace:
		side, err := ParseSide(cmd.Side)
		if err != nil {
			c.log.Warn("command dropped", zap.Error(err))
			return
		}
		otype, err := ParseOrderType(cmd.Type)
		if err != nil {
			c.log.Warn("command dropped", zap.Error(err))
			return
		}
		if _, err := c.svc.Place(cmd.ID, side, otype, cmd.Price, cmd.Qty); err != nil {
			c.log.Warn("place refused", zap.Uint64("id", cmd.ID), zap.Error(err))
		}
	case ActionCancel:
		c.svc.Cancel(cmd.ID)
	case ActionModify:
		side, err := ParseSide(cmd.Side)
		if err != nil {
			c.log.Warn("command dropped", zap.Error(err))
			return
		}
		if _, err := c.svc.Modify(cmd.ID, side, cmd.Price, cmd.Qty); err != nil {
			c.log.Warn("modify refused", zap.Uint64("id", cmd.ID), zap.Error(err))
		}
	case ActionClear:
		c.svc.Clear()
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
