package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventStockEntered       = "StockEntered"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderDispatched    = "OrderDispatched"
)

const (
	TopicStockEntered       = "stock.entered"
	TopicOrderStatusChanged = "order.status.changed"
	TopicOrderDispatched    = "order.dispatched"
)

// Publisher is the producer surface services depend on; satisfied by
// kafka.Producer. Keeping it narrow lets tests run without a broker.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Envelope wraps every published event. Payload is type-specific.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// New builds a v1 envelope around payload. Marshal failures panic:
// payload types are our own structs and cannot legitimately fail.
func New(eventType, producer, correlationID string, payload any) Envelope {
	b, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       b,
	}
}

// PartitionKey keeps all events of one entity on one partition so
// per-entity ordering holds.
func PartitionKey(id string) []byte { return []byte(id) }

// Headers are the standard routing headers attached to every message.
func Headers(eventType string) []kafkago.Header {
	return []kafkago.Header{
		{Key: "x-event-type", Value: []byte(eventType)},
		{Key: "x-event-version", Value: []byte("1")},
	}
}

// ---- payloads ----

type SKUQty struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

type StockEnteredPayload struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Qty       int    `json:"qty"`
	NewTotal  int    `json:"new_total"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type OrderDispatchedPayload struct {
	OrderID string   `json:"order_id"`
	Items   []SKUQty `json:"items"`
}
