package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is a supplier purchase ("achat"), the mirror of a sale:
// receiving credits stock at the buying location.
type Purchase struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	StockID       uint            `gorm:"index;not null" json:"stock_id"`
	FournisseurID *uint           `gorm:"index" json:"fournisseur_id"`
	Fournisseur   *Fournisseur    `gorm:"foreignKey:FournisseurID" json:"fournisseur,omitempty"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	PaymentMethod string          `gorm:"size:20;default:'cash'" json:"payment_method"`
	PaymentStatus string          `gorm:"size:20;default:'pending'" json:"payment_status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PurchaseItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PurchaseID uint            `gorm:"index;not null" json:"purchase_id"`
	ProductID  uint            `gorm:"index;not null" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
}
