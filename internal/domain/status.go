package domain

// Status is the fulfillment state of a sales order. The lifecycle is
// strictly forward: PENDING -> IN_PREPARATION -> PREPARED -> DISPATCHED.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusInPreparation Status = "IN_PREPARATION"
	StatusPrepared      Status = "PREPARED"
	StatusDispatched    Status = "DISPATCHED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:       {StatusInPreparation: true},
	StatusInPreparation: {StatusPrepared: true},
	StatusPrepared:      {StatusDispatched: true},
	StatusDispatched:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Final reports whether the status is terminal. A dispatched order
// never transitions again.
func (s Status) Final() bool {
	return s == StatusDispatched
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInPreparation, StatusPrepared, StatusDispatched:
		return true
	default:
		return false
	}
}

// ShippingType is how the order leaves the warehouse.
type ShippingType string

const (
	ShippingMercadoEnvios ShippingType = "mercado_envios"
	ShippingFlex          ShippingType = "flex"
	ShippingOther         ShippingType = "other"
)

func (t ShippingType) Valid() bool {
	switch t {
	case ShippingMercadoEnvios, ShippingFlex, ShippingOther:
		return true
	default:
		return false
	}
}
