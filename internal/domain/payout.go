package domain

import (
	"time"

	"github.com/google/uuid"
)

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "PENDING"
	PayoutStatusSent    PayoutStatus = "SENT"
)

type Payout struct {
	ID        uuid.UUID    `json:"id"`
	Amount    float64      `json:"amount"`
	Currency  string       `json:"currency"`
	Status    PayoutStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Page is a 1-based page request clamped to sane bounds.
type Page struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NewPage clamps page to >= 1 and size to 1..MaxPageSize, using
// DefaultPageSize when size is zero.
func NewPage(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Page: page, PageSize: size}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}
