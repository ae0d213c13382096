package kafkanotify

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"geoshop/internal/core/ports"
)

// Event types written into the message headers so back-office consumers can
// route without decoding the payload.
const (
	eventOrderConfirmed          = "order.confirmed"
	eventOrderGeometryInvalid    = "order.geometry_invalid"
	eventItemValidationRequested = "order.item_validation_requested"
	eventOrderProcessed          = "order.processed"
)

// KafkaNotifier publishes order lifecycle events as JSON messages keyed by
// order ID, so events of one order stay on one partition.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a notifier writing to the given topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

func (n *KafkaNotifier) NotifyOrderConfirmed(ctx context.Context, event ports.OrderConfirmedEvent) error {
	return n.publish(ctx, eventOrderConfirmed, event.OrderID.String(), orderConfirmedMessage{
		OrderID:      event.OrderID.String(),
		ClientID:     event.ClientID.String(),
		Status:       event.Status,
		NeedsQuote:   event.NeedsQuote,
		InvalidGeom:  event.InvalidGeom,
		ManualItems:  event.ManualItems,
		TotalWithVAT: event.TotalWithVAT,
	})
}

func (n *KafkaNotifier) NotifyOrderGeometryInvalid(
	ctx context.Context,
	event ports.OrderGeometryInvalidEvent,
) error {
	return n.publish(ctx, eventOrderGeometryInvalid, event.OrderID.String(), orderGeometryInvalidMessage{
		OrderID:  event.OrderID.String(),
		ClientID: event.ClientID.String(),
	})
}

func (n *KafkaNotifier) NotifyItemValidationRequested(
	ctx context.Context,
	event ports.ItemValidationRequestedEvent,
) error {
	return n.publish(ctx, eventItemValidationRequested, event.OrderID.String(), itemValidationRequestedMessage{
		OrderID:   event.OrderID.String(),
		ItemID:    event.ItemID.String(),
		ProductID: event.ProductID.String(),
		Token:     event.Token.String(),
	})
}

func (n *KafkaNotifier) NotifyOrderProcessed(ctx context.Context, event ports.OrderProcessedEvent) error {
	return n.publish(ctx, eventOrderProcessed, event.OrderID.String(), orderProcessedMessage{
		OrderID:       event.OrderID.String(),
		ClientID:      event.ClientID.String(),
		DownloadToken: event.DownloadToken.String(),
	})
}

func (n *KafkaNotifier) publish(ctx context.Context, eventType, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
}

type orderConfirmedMessage struct {
	OrderID      string `json:"order_id"`
	ClientID     string `json:"client_id"`
	Status       string `json:"status"`
	NeedsQuote   bool   `json:"needs_quote"`
	InvalidGeom  bool   `json:"invalid_geom"`
	ManualItems  int    `json:"manual_items"`
	TotalWithVAT string `json:"total_with_vat"`
}

type orderGeometryInvalidMessage struct {
	OrderID  string `json:"order_id"`
	ClientID string `json:"client_id"`
}

type itemValidationRequestedMessage struct {
	OrderID   string `json:"order_id"`
	ItemID    string `json:"item_id"`
	ProductID string `json:"product_id"`
	Token     string `json:"token"`
}

type orderProcessedMessage struct {
	OrderID       string `json:"order_id"`
	ClientID      string `json:"client_id"`
	DownloadToken string `json:"download_token"`
}
