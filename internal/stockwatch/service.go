// Package stockwatch keeps the per-SKU stock documents in Redis warm:
// it consumes stock and dispatch events and rewrites stock_doc:{sku}
// with the current availability and a low-stock flag, so the listings
// screens read without hitting PostgreSQL.
package stockwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/mbenitez/stockroom/internal/domain"
	"github.com/mbenitez/stockroom/internal/events"
	kafkax "github.com/mbenitez/stockroom/internal/kafka"
	"github.com/mbenitez/stockroom/internal/redisx"
)

type Service struct {
	Products          domain.ProductRepo
	Redis             *redis.Client
	Log               *log.Entry
	ServiceName       string
	LowStockThreshold int
}

// StockDoc is the document written under stock_doc:{sku}.
type StockDoc struct {
	SKU       string    `json:"sku"`
	Available int       `json:"available"`
	LowStock  bool      `json:"low_stock"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) logger() *log.Entry {
	if s.Log != nil {
		return s.Log
	}
	return log.WithField("component", "stockwatch")
}

// HandleStockEntered is the consumer handler for stock.entered.
func (s *Service) HandleStockEntered(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventStockEntered {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}
	p, err := kafkax.UnwrapPayload[events.StockEnteredPayload](env.Payload)
	if err != nil {
		return err
	}
	return s.refresh(ctx, p.SKU)
}

// HandleOrderDispatched is the consumer handler for order.dispatched.
func (s *Service) HandleOrderDispatched(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventOrderDispatched {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}
	p, err := kafkax.UnwrapPayload[events.OrderDispatchedPayload](env.Payload)
	if err != nil {
		return err
	}
	for _, it := range p.Items {
		if it.SKU == "" {
			continue
		}
		if err := s.refresh(ctx, it.SKU); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) seen(ctx context.Context, eventID string) bool {
	key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
	exists, _ := redisx.Exists(ctx, s.Redis, key)
	if exists {
		return true
	}
	_ = s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
	return false
}

func (s *Service) refresh(ctx context.Context, sku string) error {
	key := fmt.Sprintf(redisx.KeyStockDoc, domain.NormalizeSKU(sku))

	p, err := s.Products.GetBySKU(ctx, sku)
	if errors.Is(err, domain.ErrProductNotFound) {
		s.logger().WithField("sku", sku).Warn("stock document for missing product removed")
		return s.Redis.Del(ctx, key).Err()
	}
	if err != nil {
		return err
	}

	doc := StockDoc{
		SKU:       p.SKU,
		Available: p.Available(),
		LowStock:  p.Available() <= s.LowStockThreshold,
		UpdatedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, key, b, 0).Err()
}
