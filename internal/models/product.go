package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnlimitedQuantity is the sentinel meaning a product is never depleted.
const UnlimitedQuantity = 999999

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:150;not null" json:"name"`
	Reference   string          `gorm:"size:100" json:"reference"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `gorm:"default:0" json:"quantity"`
	StockID     *uint           `gorm:"index" json:"stock_id"` // nil = global/shared
	Stock       *Stock          `gorm:"foreignKey:StockID" json:"stock,omitempty"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	Barcodes    []Barcode       `gorm:"foreignKey:ProductID" json:"barcodes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Barcode is an alias code for a product; one product may carry several.
type Barcode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Code      string    `gorm:"size:100;unique;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Unlimited reports whether quantity tracking applies to this product.
// Global products (no stock) and sentinel-quantity rows are never adjusted.
func (p *Product) Unlimited() bool {
	return p.StockID == nil || p.Quantity >= UnlimitedQuantity
}

// lockForUpdate adds a row lock on dialects that support it. SQLite (tests)
// serializes writes on its own and rejects FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// AdjustProductQuantity applies delta to a product's on-hand quantity inside
// the caller's transaction, locking the row to prevent lost updates. The
// product must belong to stockID or be global; global/unlimited products are
// left untouched. A negative result is rejected with ErrInsufficientStock.
func AdjustProductQuantity(tx *gorm.DB, productID uint, stockID uint, delta int) error {
	var product Product
	if err := lockForUpdate(tx).Where("id = ? AND (stock_id = ? OR stock_id IS NULL)", productID, stockID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if product.Unlimited() {
		return nil
	}

	newQty := product.Quantity + delta
	if newQty < 0 {
		return ErrInsufficientStock
	}

	return tx.Model(&Product{}).Where("id = ?", product.ID).
		Update("quantity", newQty).Error
}
