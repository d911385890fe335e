package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CharlesX20/chimestradingstore/models"
	awspkg "github.com/CharlesX20/chimestradingstore/pkg/aws"
	"github.com/CharlesX20/chimestradingstore/sender"

	"go.uber.org/zap"
)

// NotificationWorker turns order_created events into a WhatsApp message to
// the store manager.
type NotificationWorker struct {
	sender       sender.MessageSender
	managerPhone string
	loc          *time.Location
	metrics      MetricsRecorder
	logger       *zap.Logger
}

func NewNotificationWorker(s sender.MessageSender, managerPhone string, loc *time.Location, metrics MetricsRecorder, logger *zap.Logger) *NotificationWorker {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{sender: s, managerPhone: managerPhone, loc: loc, metrics: metrics, logger: logger}
}

// snsEnvelope unwraps the SNS to SQS message wrapper.
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// HandleMessage is an aws.MessageHandler. Undecodable and unrelated messages
// return nil so they are removed from the queue; send failures return an
// error so the message is retried.
func (w *NotificationWorker) HandleMessage(ctx context.Context, body string) error {
	payload := []byte(body)

	var envelope snsEnvelope
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Message != "" {
		payload = []byte(envelope.Message)
	}

	var event models.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		w.logger.Error("failed to unmarshal event payload", zap.Error(err))
		return nil
	}
	if event.EventType != models.EventOrderCreated {
		w.logger.Debug("ignoring event", zap.String("event_type", event.EventType))
		return nil
	}

	text := SellerMessage(event.OrderID, event.BuyerName, event.BuyerPhone, event.PickupDatetime, event.Items, event.Total, event.ReceiptURL, w.loc)
	res, err := w.sender.SendMessage(ctx, w.managerPhone, text)
	if err != nil {
		return fmt.Errorf("notify seller of order %s: %w", event.OrderID, err)
	}

	w.logger.Info("seller notified",
		zap.String("order_id", event.OrderID),
		zap.String("message_id", res.MessageID),
	)
	if w.metrics != nil {
		if err := w.metrics.RecordCount(ctx, awspkg.MetricSellerNotified, nil); err != nil {
			w.logger.Debug("failed to record metric", zap.Error(err))
		}
	}
	return nil
}
