// Package listings owns the marketplace listing documents edited from
// the dashboard. They live in the document store (Redis) as JSON blobs
// under listing:{id}, with a set index for enumeration. The marketplace
// API itself (field mapping, category prediction) is out of scope; this
// is only the local editing surface.
package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"github.com/mbenitez/stockroom/internal/domain"
	"github.com/mbenitez/stockroom/internal/redisx"
)

type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingPaused ListingStatus = "paused"
	ListingClosed ListingStatus = "closed"
)

type Listing struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Status    ListingStatus   `json:"status"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Store struct {
	Redis *redis.Client
	Log   *log.Entry
}

func (s *Store) logger() *log.Entry {
	if s.Log != nil {
		return s.Log
	}
	return log.WithField("component", "listings")
}

func (s *Store) Save(ctx context.Context, l Listing) (Listing, error) {
	l.SKU = domain.NormalizeSKU(l.SKU)
	if l.SKU == "" {
		return Listing{}, domain.ErrSKURequired
	}
	if l.Title == "" {
		return Listing{}, domain.ErrNameRequired
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = ListingActive
	}
	l.UpdatedAt = time.Now().UTC()

	b, err := json.Marshal(l)
	if err != nil {
		return Listing{}, err
	}
	pipe := s.Redis.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(redisx.KeyListing, l.ID), b, 0)
	pipe.SAdd(ctx, redisx.KeyListingIndex, l.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return Listing{}, fmt.Errorf("save listing: %w", err)
	}
	return l, nil
}

func (s *Store) Get(ctx context.Context, id string) (Listing, error) {
	raw, err := s.Redis.Get(ctx, fmt.Sprintf(redisx.KeyListing, id)).Result()
	if errors.Is(err, redis.Nil) {
		return Listing{}, domain.ErrListingNotFound
	}
	if err != nil {
		return Listing{}, err
	}
	var l Listing
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return Listing{}, fmt.Errorf("decode listing %s: %w", id, err)
	}
	return l, nil
}

func (s *Store) List(ctx context.Context) ([]Listing, error) {
	ids, err := s.Redis.SMembers(ctx, redisx.KeyListingIndex).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, len(ids))
	for _, id := range ids {
		l, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrListingNotFound) {
			// index entry without document: drop it and move on
			s.logger().WithField("listing_id", id).Warn("dangling listing index entry")
			_ = s.Redis.SRem(ctx, redisx.KeyListingIndex, id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyListing, id)).Result()
	if err != nil {
		return err
	}
	_ = s.Redis.SRem(ctx, redisx.KeyListingIndex, id).Err()
	if n == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// Clear deletes every listing document. Refused unless the operator
// supplied the confirmation phrase (case-insensitive for this gate).
func (s *Store) Clear(ctx context.Context, confirm string) (int, error) {
	if !domain.ListingsClearGate.Match(confirm) {
		return 0, domain.ErrConfirmationMismatch
	}
	ids, err := s.Redis.SMembers(ctx, redisx.KeyListingIndex).Result()
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, id := range ids {
		n, err := s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyListing, id)).Result()
		if err != nil {
			return deleted, err
		}
		deleted += int(n)
	}
	if err := s.Redis.Del(ctx, redisx.KeyListingIndex).Err(); err != nil {
		return deleted, err
	}
	s.logger().WithField("deleted", deleted).Warn("bulk listing clear executed")
	return deleted, nil
}
