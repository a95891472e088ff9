package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodCheck  = "check"
	PaymentMethodCredit = "credit"

	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"

	SaleSourcePOS    = "pos"
	SaleSourceManual = "manual"
)

var allowedPaymentMethods = map[string]bool{
	PaymentMethodCash:   true,
	PaymentMethodCard:   true,
	PaymentMethodCheck:  true,
	PaymentMethodCredit: true,
}

var allowedPaymentStatuses = map[string]bool{
	PaymentStatusPending: true,
	PaymentStatusPartial: true,
	PaymentStatusPaid:    true,
}

// NormalizePaymentMethod returns the method if it is on the allow-list,
// otherwise the cash default. Unknown values are substituted, not rejected.
func NormalizePaymentMethod(m string) string {
	if allowedPaymentMethods[m] {
		return m
	}
	return PaymentMethodCash
}

func NormalizePaymentStatus(s string) string {
	if allowedPaymentStatuses[s] {
		return s
	}
	return PaymentStatusPending
}

type Sale struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UserID        uint             `gorm:"index;not null" json:"user_id"`
	StockID       uint             `gorm:"index;not null" json:"stock_id"`
	ClientID      *uint            `gorm:"index" json:"client_id"`
	Client        *Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Total         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total"`
	AmountPaid    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount_paid"`
	ChangeAmount  *decimal.Decimal `gorm:"type:decimal(10,2)" json:"change_amount"`
	PaymentMethod string           `gorm:"size:20;default:'cash'" json:"payment_method"`
	PaymentStatus string           `gorm:"size:20;default:'pending'" json:"payment_status"`
	Barcode       string           `gorm:"size:50;index" json:"barcode"`
	Source        string           `gorm:"size:20;default:'pos'" json:"source"`
	Notes         string           `gorm:"type:text" json:"notes"`
	Items         []SaleItem       `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time        `json:"created_at"`
}

type SaleItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	SaleID     uint            `gorm:"index;not null" json:"sale_id"`
	ProductID  uint            `gorm:"index;not null" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
}

// SaleBarcode derives the printable barcode for a sale from its creation
// date and id, e.g. 20260830000042.
func SaleBarcode(createdAt time.Time, id uint) string {
	return fmt.Sprintf("%s%06d", createdAt.Format("20060102"), id)
}
