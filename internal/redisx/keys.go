package redisx

import "time"

const (
	// Order status cache: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Marketplace listing document: listing:{listing_id} -> JSON blob
	KeyListing = "listing:%s"
	// Set of all listing ids.
	KeyListingIndex = "listings:index"

	// Per-SKU stock document maintained by stockwatch: stock_doc:{sku}
	KeyStockDoc = "stock_doc:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
