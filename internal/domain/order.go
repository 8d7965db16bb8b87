package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

const (
	DefaultFiatCurrency = "USD"
	DefaultNetwork      = "sepolia"
	maxMemoLength       = 140
)

type Order struct {
	ID           uuid.UUID   `json:"id"`
	Status       OrderStatus `json:"status"`
	FiatAmount   float64     `json:"fiatAmount"`
	FiatCurrency string      `json:"fiatCurrency"`
	CryptoAmount float64     `json:"cryptoAmount"`
	CryptoSymbol string      `json:"cryptoSymbol"`
	Address      string      `json:"address"`
	Network      string      `json:"network"`
	Memo         *string     `json:"memo"`
	TxHash       *string     `json:"txHash"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// CreateOrderInput is the caller-supplied part of a new order.
type CreateOrderInput struct {
	FiatAmount   float64 `json:"fiatAmount"`
	FiatCurrency string  `json:"fiatCurrency"`
	CryptoAmount float64 `json:"cryptoAmount"`
	CryptoSymbol string  `json:"cryptoSymbol"`
	Address      string  `json:"address"`
	Network      string  `json:"network"`
	Memo         *string `json:"memo"`
}

// Normalize applies defaults and upper-cases currency codes.
func (in *CreateOrderInput) Normalize() {
	in.FiatCurrency = strings.ToUpper(strings.TrimSpace(in.FiatCurrency))
	if in.FiatCurrency == "" {
		in.FiatCurrency = DefaultFiatCurrency
	}
	in.CryptoSymbol = strings.ToUpper(strings.TrimSpace(in.CryptoSymbol))
	if in.Network == "" {
		in.Network = DefaultNetwork
	}
}

// Validate returns a *ValidationError listing every rejected field.
func (in *CreateOrderInput) Validate() error {
	v := &ValidationError{}
	if in.FiatAmount <= 0 {
		v.Add("fiatAmount", "must be a positive number")
	}
	if len(in.FiatCurrency) != 3 {
		v.Add("fiatCurrency", "must be exactly 3 characters")
	}
	if in.CryptoAmount <= 0 {
		v.Add("cryptoAmount", "must be a positive number")
	}
	if n := len(in.CryptoSymbol); n < 3 || n > 5 {
		v.Add("cryptoSymbol", "must be between 3 and 5 characters")
	}
	if len(in.Address) < 4 {
		v.Add("address", "must be at least 4 characters")
	}
	if in.Memo != nil && len(*in.Memo) > maxMemoLength {
		v.Add("memo", "must be at most 140 characters")
	}
	return v.OrNil()
}

// OrderFilter selects a page of orders.
type OrderFilter struct {
	Page     int
	PageSize int
	Status   string
	Symbol   string
	Query    string
}

// Offset returns the number of rows to skip for the filter's page.
func (f OrderFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// EventData renders the order as the payload of an order.* event.
func (o *Order) EventData() map[string]any {
	return map[string]any{
		"orderId":      o.ID.String(),
		"fiatAmount":   o.FiatAmount,
		"fiatCurrency": o.FiatCurrency,
		"cryptoAmount": o.CryptoAmount,
		"cryptoSymbol": o.CryptoSymbol,
		"address":      o.Address,
		"network":      o.Network,
		"status":       string(o.Status),
	}
}

const minTxHashLength = 6

// ValidateTxHash checks the transaction hash supplied when confirming an order.
func ValidateTxHash(txHash string) error {
	if len(strings.TrimSpace(txHash)) < minTxHashLength {
		return (&ValidationError{}).Add("txHash", "must be at least 6 characters")
	}
	return nil
}
