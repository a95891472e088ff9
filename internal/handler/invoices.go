package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoicesHandler struct{}

// Uploaded invoice files are capped to keep blob rows reasonable.
const maxInvoiceFileSize = 10 << 20

type CreateInvoiceRequest struct {
	ReferenceID uint            `json:"reference_id"`
	InvoiceType string          `json:"invoice_type" binding:"required"`
	CustomerID  *uint           `json:"customer_id"`
	SupplierID  *uint           `json:"supplier_id"`
	StockID     any             `json:"stock_id" binding:"required"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount" binding:"required"`
	IssueDate   *time.Time      `json:"issue_date"`
	DueDate     *time.Time      `json:"due_date"`
}

func (h *InvoicesHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Champs requis manquants: invoice_type, stock_id, total_amount")
		return
	}

	stockID, err := resolveStockField(req.StockID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	tx := database.DB.Begin()

	number, err := models.NextInvoiceNumber(tx, issueDate)
	if err != nil {
		tx.Rollback()
		respondDBError(c, "CreateInvoice", "next number", err)
		return
	}

	invoice := models.Invoice{
		ReferenceID:   req.ReferenceID,
		InvoiceType:   req.InvoiceType,
		CustomerID:    req.CustomerID,
		SupplierID:    req.SupplierID,
		StockID:       stockID,
		Subtotal:      req.Subtotal,
		TaxAmount:     req.TaxAmount,
		TotalAmount:   req.TotalAmount,
		Status:        models.InvoiceStatusDraft,
		IssueDate:     issueDate,
		DueDate:       req.DueDate,
		InvoiceNumber: number,
	}

	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		respondDBError(c, "CreateInvoice", "insert", err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondDBError(c, "CreateInvoice", "commit", err)
		return
	}

	respondData(c, http.StatusCreated, invoice)
}

func (h *InvoicesHandler) ListInvoices(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	query := database.DB.Model(&models.Invoice{})
	if stock := c.Query("stock"); stock != "" {
		stockID, err := models.ResolveStockID(stock)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("stock_id = ?", stockID)
	}
	if t := c.Query("type"); t != "" {
		query = query.Where("invoice_type = ?", t)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondDBError(c, "ListInvoices", "count", err)
		return
	}

	var invoices []models.Invoice
	if err := query.Order("issue_date desc").Limit(limit).Offset(offset).Find(&invoices).Error; err != nil {
		respondDBError(c, "ListInvoices", "select", err)
		return
	}

	respondPage(c, invoices, NewPagination(page, limit, total))
}

func (h *InvoicesHandler) GetInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Facture introuvable")
			return
		}
		respondDBError(c, "GetInvoice", "select", err)
		return
	}

	respondData(c, http.StatusOK, invoice)
}

// UploadInvoiceFile stores the raw bytes of a manually-produced invoice,
// replacing any previous upload for the same sale.
func (h *InvoicesHandler) UploadInvoiceFile(c *gin.Context) {
	saleID, err := strconv.ParseUint(c.PostForm("sale_id"), 10, 32)
	if err != nil || saleID == 0 {
		respondError(c, http.StatusBadRequest, "sale_id requis")
		return
	}

	var sale models.Sale
	if err := database.DB.First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Vente introuvable")
			return
		}
		respondDBError(c, "UploadInvoiceFile", "select sale", err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Fichier requis")
		return
	}
	if fileHeader.Size > maxInvoiceFileSize {
		respondError(c, http.StatusBadRequest, "Fichier trop volumineux (10 Mo max)")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondDBError(c, "UploadInvoiceFile", "open upload", err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondDBError(c, "UploadInvoiceFile", "read upload", err)
		return
	}

	record := models.InvoiceFile{
		SaleID:   uint(saleID),
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	}

	var existing models.InvoiceFile
	err = database.DB.Where("sale_id = ?", saleID).First(&existing).Error
	switch {
	case err == nil:
		record.ID = existing.ID
		if err := database.DB.Save(&record).Error; err != nil {
			respondDBError(c, "UploadInvoiceFile", "update", err)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := database.DB.Create(&record).Error; err != nil {
			respondDBError(c, "UploadInvoiceFile", "insert", err)
			return
		}
	default:
		respondDBError(c, "UploadInvoiceFile", "select", err)
		return
	}

	respondMessage(c, http.StatusCreated, "Facture téléversée", gin.H{"sale_id": saleID, "file_name": record.FileName})
}

func (h *InvoicesHandler) DownloadInvoiceFile(c *gin.Context) {
	saleID, err := strconv.ParseUint(c.Query("sale_id"), 10, 32)
	if err != nil || saleID == 0 {
		respondError(c, http.StatusBadRequest, "sale_id requis")
		return
	}

	var file models.InvoiceFile
	if err := database.DB.Where("sale_id = ?", saleID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Aucune facture pour cette vente")
			return
		}
		respondDBError(c, "DownloadInvoiceFile", "select", err)
		return
	}

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, mimeType, file.Data)
}
