package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReturnTypeReturn   = "return"
	ReturnTypeExchange = "exchange"
	ReturnTypeRefund   = "refund"

	ReturnStatusPending   = "pending"
	ReturnStatusCompleted = "completed"
	ReturnStatusCancelled = "cancelled"

	ActionReturn      = "return"
	ActionExchangeIn  = "exchange_in"
	ActionExchangeOut = "exchange_out"
)

type ReturnTransaction struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	OriginalSaleID      uint            `gorm:"index;not null" json:"original_sale_id"`
	OriginalSale        *Sale           `gorm:"foreignKey:OriginalSaleID" json:"original_sale,omitempty"`
	StockID             uint            `gorm:"index;not null" json:"stock_id"`
	ClientID            *uint           `gorm:"index" json:"client_id"`
	UserID              uint            `gorm:"index;not null" json:"user_id"`
	ReturnType          string          `gorm:"size:20;not null" json:"return_type"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_amount"`
	TotalRefundAmount   decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_refund_amount"`
	TotalExchangeAmount decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_exchange_amount"`
	Status              string          `gorm:"size:20;default:'pending'" json:"status"`
	PaymentMethod       string          `gorm:"size:20;default:'cash'" json:"payment_method"`
	Notes               string          `gorm:"type:text" json:"notes"`
	ProcessedAt         *time.Time      `json:"processed_at"`
	Items               []ReturnItem    `gorm:"foreignKey:ReturnTransactionID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type ReturnItem struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	ReturnTransactionID uint            `gorm:"index;not null" json:"return_transaction_id"`
	ProductID           uint            `gorm:"index;not null" json:"product_id"`
	Product             *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	ActionType          string          `gorm:"size:20;not null" json:"action_type"`
}

// StockDelta is the quantity adjustment this item applies on creation.
// Goods coming back (return, exchange_in) increase stock; goods going out
// (exchange_out) decrease it. Deletion of a pending return applies the
// negation.
func (ri *ReturnItem) StockDelta() int {
	switch ri.ActionType {
	case ActionReturn, ActionExchangeIn:
		return ri.Quantity
	case ActionExchangeOut:
		return -ri.Quantity
	}
	return 0
}
