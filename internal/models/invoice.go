package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusIssued    = "issued"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"

	InvoiceTypeSale     = "sale"
	InvoiceTypePurchase = "purchase"
	InvoiceTypeManual   = "manual"
)

type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ReferenceID   uint            `gorm:"index" json:"reference_id"`
	InvoiceType   string          `gorm:"size:20;not null" json:"invoice_type"`
	CustomerID    *uint           `gorm:"index" json:"customer_id"`
	SupplierID    *uint           `gorm:"index" json:"supplier_id"`
	StockID       uint            `gorm:"index;not null" json:"stock_id"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_amount"`
	Status        string          `gorm:"size:20;default:'draft'" json:"status"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       *time.Time      `json:"due_date"`
	InvoiceNumber string          `gorm:"size:50;unique;not null" json:"invoice_number"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceFile stores the raw bytes of a manually-uploaded invoice,
// at most one per sale.
type InvoiceFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SaleID    uint      `gorm:"uniqueIndex;not null" json:"sale_id"`
	FileName  string    `gorm:"size:255" json:"file_name"`
	MimeType  string    `gorm:"size:100" json:"mime_type"`
	Data      []byte    `gorm:"type:longblob" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NextInvoiceNumber produces INV-<year>-NNNNN, zero-padded, scoped per year.
// The highest existing number is read under a row lock and incremented, so
// concurrent creates in one transaction each get a distinct number and gaps
// left by deletions are never reused.
func NextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	prefix := fmt.Sprintf("INV-%d-", now.Year())

	var last Invoice
	err := lockForUpdate(tx).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number desc").
		First(&last).Error

	next := 1
	switch {
	case err == nil:
		n, perr := strconv.Atoi(strings.TrimPrefix(last.InvoiceNumber, prefix))
		if perr != nil {
			return "", fmt.Errorf("malformed invoice number %q: %w", last.InvoiceNumber, perr)
		}
		next = n + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, next), nil
}
