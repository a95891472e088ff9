package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrMovementNotPending = errors.New("movement is not pending")

const (
	MovementStatusPending   = "pending"
	MovementStatusConfirmed = "confirmed"
	MovementStatusClaimed   = "claimed"
)

// StockMovement is an inter-location transfer. Stock is applied at the
// destination only on the pending -> confirmed transition, never on creation.
type StockMovement struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	FromStockID    uint                `gorm:"index;not null" json:"from_stock_id"`
	ToStockID      uint                `gorm:"index;not null" json:"to_stock_id"`
	UserID         uint                `gorm:"index;not null" json:"user_id"`
	MovementNumber string              `gorm:"size:50;unique;not null" json:"movement_number"`
	RecipientName  string              `gorm:"size:100" json:"recipient_name"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(10,2);default:0" json:"total_amount"`
	Status         string              `gorm:"size:20;default:'pending'" json:"status"`
	ClaimMessage   string              `gorm:"type:text" json:"claim_message"`
	ClaimDate      *time.Time          `json:"claim_date"`
	Notes          string              `gorm:"type:text" json:"notes"`
	Items          []StockMovementItem `gorm:"foreignKey:StockMovementID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type StockMovementItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	StockMovementID uint            `gorm:"index;not null" json:"stock_movement_id"`
	ProductID       uint            `gorm:"index;not null" json:"product_id"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
}

// TransitionMovementStatus applies updates to a movement only while it is
// still pending. The status guard lives in the WHERE clause, so of two
// concurrent transitions exactly one wins; the loser gets
// ErrMovementNotPending and must roll back whatever it applied.
func TransitionMovementStatus(tx *gorm.DB, id uint, updates map[string]any) error {
	res := tx.Model(&StockMovement{}).
		Where("id = ? AND status = ?", id, MovementStatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMovementNotPending
	}
	return nil
}

// NewMovementNumber generates a human-readable unique movement reference.
func NewMovementNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("MV-%s-%s", now.Format("20060102"), suffix)
}
