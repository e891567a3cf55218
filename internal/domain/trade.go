package domain

import "time"

// TradeStatus is the lifecycle state of a trade as reported by the backend.
type TradeStatus string

const (
	StatusPending    TradeStatus = "PENDING"
	StatusQueued     TradeStatus = "QUEUED"
	StatusProcessing TradeStatus = "PROCESSING"
	StatusActive     TradeStatus = "ACTIVE"
	StatusCompleted  TradeStatus = "COMPLETED"
	StatusExited     TradeStatus = "EXITED"
	StatusCancelled  TradeStatus = "CANCELLED"
	StatusFailed     TradeStatus = "FAILED"
	StatusUnknown    TradeStatus = "UNKNOWN"
)

// ParseTradeStatus maps a raw status string to a TradeStatus.
// Anything unrecognized becomes StatusUnknown.
func ParseTradeStatus(s string) TradeStatus {
	switch st := TradeStatus(s); st {
	case StatusPending, StatusQueued, StatusProcessing, StatusActive,
		StatusCompleted, StatusExited, StatusCancelled, StatusFailed:
		return st
	default:
		return StatusUnknown
	}
}

// IsTerminal reports whether no further exit is possible from this status.
func (s TradeStatus) IsTerminal() bool {
	switch s {
	case StatusExited, StatusCancelled, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// OptionType is the option leg kind (call or put).
type OptionType string

const (
	OptionCall OptionType = "CE"
	OptionPut  OptionType = "PE"
)

// TransactionType is the side of the order.
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// OrderType is the pricing mode of the order.
type OrderType string

const (
	OrderMarket OrderType = "MARKET"
	OrderLimit  OrderType = "LIMIT"
)

// Trade is the canonical record produced from a backend trade-list payload.
// Nil pointers mean the backend did not supply (or supplied an unusable) value.
type Trade struct {
	ID               string
	UnderlyingSymbol string
	TradingSymbol    string
	StrikePrice      *float64
	OptionType       *OptionType
	ExpiryDate       *time.Time
	TransactionType  *TransactionType
	OrderType        *OrderType
	Quantity         float64
	LotSize          *float64
	TotalQuantity    float64
	Status           TradeStatus
	InitiatedAt      *time.Time
	LastProcessedAt  *time.Time
	ExitedAt         *time.Time
	Remarks          *string
}
