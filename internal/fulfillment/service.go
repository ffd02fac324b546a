// Package fulfillment drives the order lifecycle:
// PENDING -> IN_PREPARATION -> PREPARED -> DISPATCHED.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/mbenitez/stockroom/internal/domain"
	"github.com/mbenitez/stockroom/internal/events"
	kafkax "github.com/mbenitez/stockroom/internal/kafka"
	"github.com/mbenitez/stockroom/internal/metrics"
	"github.com/mbenitez/stockroom/internal/redisx"
)

// Resolver classifies a SKU; implemented by catalog.Service.
type Resolver interface {
	Resolve(ctx context.Context, sku string) (domain.Resolved, error)
}

type Service struct {
	Orders      domain.OrderRepo
	Products    domain.ProductRepo
	Resolver    Resolver
	Redis       *redis.Client
	Producer    events.Publisher
	Metrics     *metrics.Metrics
	Log         *log.Entry
	ServiceName string
}

func (s *Service) logger() *log.Entry {
	if s.Log != nil {
		return s.Log
	}
	return log.WithField("component", "fulfillment")
}

// SaleInput is one sold SKU. The SKU may resolve to a product, a kit
// (expanded into component lines) or nothing (placeholder line).
type SaleInput struct {
	SKU          string              `json:"sku"`
	Qty          int                 `json:"qty"`
	ShippingType domain.ShippingType `json:"shipping_type"`
}

// CreateSale resolves the SKU, expands it into order items and creates
// a PENDING order. Reservation happens inside the repo transaction.
func (s *Service) CreateSale(ctx context.Context, in SaleInput) (domain.Order, error) {
	if in.Qty <= 0 {
		return domain.Order{}, domain.ErrQtyInvalid
	}
	if in.ShippingType == "" {
		in.ShippingType = domain.ShippingOther
	}

	resolved, err := s.Resolver.Resolve(ctx, in.SKU)
	if err != nil {
		return domain.Order{}, err
	}
	if resolved.Kind == domain.KindUnregistered {
		s.logger().WithField("sku", resolved.SKU).Warn("sale for unregistered sku accepted")
	}

	o := domain.Order{
		ID:           uuid.NewString(),
		Status:       domain.StatusPending,
		ShippingType: in.ShippingType,
		Items:        domain.ExpandSale(resolved, in.Qty),
	}
	if errs := o.Validate(); len(errs) > 0 {
		return domain.Order{}, errs[0]
	}
	for i := range o.Items {
		o.Items[i].ID = uuid.NewString()
		o.Items[i].OrderID = o.ID
	}

	if err := s.Orders.Create(ctx, o); err != nil {
		return domain.Order{}, err
	}
	s.cacheStatus(ctx, o.ID, o.Status)
	return s.Orders.Get(ctx, o.ID)
}

// Advance moves the order one step forward. The dispatch step carries
// stock side effects and is delegated to Dispatch.
func (s *Service) Advance(ctx context.Context, orderID string, next domain.Status) (domain.Order, error) {
	if !next.Valid() {
		return domain.Order{}, domain.ErrInvalidTransition
	}
	if next == domain.StatusDispatched {
		return s.Dispatch(ctx, orderID)
	}

	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status.Final() {
		return domain.Order{}, domain.ErrOrderFinal
	}
	if !domain.CanTransition(o.Status, next) {
		return domain.Order{}, fmt.Errorf("%s -> %s: %w", o.Status, next, domain.ErrInvalidTransition)
	}

	if err := s.Orders.SetStatus(ctx, orderID, o.Status, next); err != nil {
		return domain.Order{}, err
	}
	s.afterTransition(ctx, orderID, o.Status, next)

	o.Status = next
	return o, nil
}

// Dispatch performs PREPARED -> DISPATCHED as one atomic repo
// operation: stock decrement and status flip commit together.
func (s *Service) Dispatch(ctx context.Context, orderID string) (domain.Order, error) {
	started := time.Now()
	o, err := s.Orders.Dispatch(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	s.Metrics.ObserveDispatch(time.Since(started))
	s.afterTransition(ctx, orderID, domain.StatusPrepared, domain.StatusDispatched)

	if s.Producer != nil {
		items := make([]events.SKUQty, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, events.SKUQty{SKU: it.SKU, Qty: it.Qty})
		}
		ev := events.New(events.EventOrderDispatched, s.ServiceName, o.ID,
			events.OrderDispatchedPayload{OrderID: o.ID, Items: items})
		s.Producer.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev),
			events.Headers(events.EventOrderDispatched)...)
	}
	return o, nil
}

func (s *Service) afterTransition(ctx context.Context, orderID string, from, to domain.Status) {
	s.Metrics.ObserveTransition(string(from), string(to))
	s.cacheStatus(ctx, orderID, to)
	s.logger().WithFields(log.Fields{"order_id": orderID, "from": from, "to": to}).
		Info("order status changed")

	if s.Producer != nil && to != domain.StatusDispatched {
		ev := events.New(events.EventOrderStatusChanged, s.ServiceName, orderID,
			events.OrderStatusChangedPayload{OrderID: orderID, From: string(from), To: string(to)})
		s.Producer.Publish(events.PartitionKey(orderID), kafkax.MustMarshal(ev),
			events.Headers(events.EventOrderStatusChanged)...)
	}
}

func (s *Service) cacheStatus(ctx context.Context, orderID string, status domain.Status) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = s.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, status), redisx.TTLStatusCache).Err()
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.Orders.Get(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.Orders.List(ctx)
}

// ---- picking list ----

type PickingRow struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// PickingList is the consolidated per-SKU pick quantities for a batch
// of orders. Unresolved lists order items that carried no SKU.
type PickingList struct {
	Rows       []PickingRow `json:"rows"`
	Unresolved []string     `json:"unresolved,omitempty"`
}

// PickingList aggregates the selected orders' items by SKU, summing
// quantities of the same SKU across orders. Pure read, no side effects.
func (s *Service) PickingList(ctx context.Context, orderIDs []string) (PickingList, error) {
	bySKU := map[string]int{}
	var unresolved []string

	for _, id := range orderIDs {
		o, err := s.Orders.Get(ctx, id)
		if err != nil {
			return PickingList{}, fmt.Errorf("order %s: %w", id, err)
		}
		for _, it := range o.Items {
			if it.SKU == "" {
				s.logger().WithField("order_id", id).Warn("order item without sku skipped in picking list")
				unresolved = append(unresolved, id)
				continue
			}
			bySKU[it.SKU] += it.Qty
		}
	}
	return buildPickingList(bySKU, unresolved), nil
}

// ---- sufficiency ----

type Shortage struct {
	SKU       string `json:"sku"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

type SufficiencyReport struct {
	OrderID     string     `json:"order_id"`
	Fulfillable bool       `json:"fulfillable"`
	Shortages   []Shortage `json:"shortages,omitempty"`
	// Unresolved lists SKUs whose product reference could not be found;
	// they count as available zero but are flagged, not silently dropped.
	Unresolved []string `json:"unresolved,omitempty"`
}

// Sufficiency classifies the order as fulfillable iff every item qty is
// covered by the referenced product's available stock. Display only: it
// never blocks a transition.
func (s *Service) Sufficiency(ctx context.Context, orderID string) (SufficiencyReport, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return SufficiencyReport{}, err
	}

	rep := SufficiencyReport{OrderID: orderID, Fulfillable: true}
	for _, it := range o.Items {
		if it.ProductID == "" {
			rep.Unresolved = append(rep.Unresolved, it.SKU)
			rep.Fulfillable = false
			rep.Shortages = append(rep.Shortages, Shortage{SKU: it.SKU, Required: it.Qty})
			continue
		}
		p, err := s.Products.Get(ctx, it.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			s.logger().WithFields(log.Fields{"order_id": orderID, "sku": it.SKU}).
				Warn("order item references missing product")
			rep.Unresolved = append(rep.Unresolved, it.SKU)
			rep.Fulfillable = false
			rep.Shortages = append(rep.Shortages, Shortage{SKU: it.SKU, Required: it.Qty})
			continue
		}
		if err != nil {
			return SufficiencyReport{}, err
		}
		if it.Qty > p.Available() {
			rep.Fulfillable = false
			rep.Shortages = append(rep.Shortages, Shortage{
				SKU: it.SKU, Required: it.Qty, Available: p.Available(),
			})
		}
	}
	return rep, nil
}
