package handler

import (
	"fmt"
	"net/http"
	"testing"

	"stock-app/internal/models"

	"github.com/shopspring/decimal"
)

func TestCreatePurchase_CreditsStock(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()

	user := seedUser(t, db, models.RoleAdmin, uintPtr(3))
	auth := bearerFor(t, user)
	product := seedProduct(t, db, "Carton cahiers", 8, 20, uintPtr(3))

	fournisseur := models.Fournisseur{Name: "Papeterie Centrale", StockID: 3, IsActive: true}
	if err := db.Create(&fournisseur).Error; err != nil {
		t.Fatalf("seed fournisseur: %v", err)
	}

	rec := doJSON(t, r, http.MethodPost, "/api/purchases", auth, map[string]any{
		"user_id":        user.ID,
		"stock_id":       "gros",
		"fournisseur_id": fournisseur.ID,
		"items": []map[string]any{
			{"product_id": product.ID, "quantity": 50, "unit_price": 8},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var purchase models.Purchase
	if err := db.Preload("Items").First(&purchase).Error; err != nil {
		t.Fatalf("load purchase: %v", err)
	}
	if !purchase.Total.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected total 400, got %s", purchase.Total)
	}
	if len(purchase.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(purchase.Items))
	}

	if got := productQuantity(t, db, product.ID); got != 70 {
		t.Fatalf("expected quantity 70 after purchase, got %d", got)
	}
}

func TestDeletePurchase_DebitsStockBack(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()

	user := seedUser(t, db, models.RoleAdmin, uintPtr(1))
	auth := bearerFor(t, user)
	product := seedProduct(t, db, "Classeurs", 10, 5, uintPtr(1))

	rec := doJSON(t, r, http.MethodPost, "/api/purchases", auth, map[string]any{
		"user_id":  user.ID,
		"stock_id": 1,
		"items":    []map[string]any{{"product_id": product.ID, "quantity": 10, "unit_price": 10}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	if got := productQuantity(t, db, product.ID); got != 15 {
		t.Fatalf("expected 15 after purchase, got %d", got)
	}

	var purchase models.Purchase
	if err := db.First(&purchase).Error; err != nil {
		t.Fatalf("load purchase: %v", err)
	}

	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/purchases/%d", purchase.ID), auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	if got := productQuantity(t, db, product.ID); got != 5 {
		t.Fatalf("expected quantity back to 5, got %d", got)
	}
}

func TestDeletePurchase_FailsWhenStockConsumed(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()

	user := seedUser(t, db, models.RoleAdmin, uintPtr(1))
	auth := bearerFor(t, user)
	product := seedProduct(t, db, "Encre", 20, 0, uintPtr(1))

	doJSON(t, r, http.MethodPost, "/api/purchases", auth, map[string]any{
		"user_id":  user.ID,
		"stock_id": 1,
		"items":    []map[string]any{{"product_id": product.ID, "quantity": 10, "unit_price": 20}},
	})

	// Most of the received goods are sold before the cancellation attempt.
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("quantity", 3).Error; err != nil {
		t.Fatalf("consume stock: %v", err)
	}

	var purchase models.Purchase
	if err := db.First(&purchase).Error; err != nil {
		t.Fatalf("load purchase: %v", err)
	}

	rec := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/purchases/%d", purchase.ID), auth, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when reversal would go negative, got %d", rec.Code)
	}

	// Nothing moved.
	if got := productQuantity(t, db, product.ID); got != 3 {
		t.Fatalf("expected quantity unchanged at 3, got %d", got)
	}
	var count int64
	db.Model(&models.Purchase{}).Count(&count)
	if count != 1 {
		t.Fatalf("purchase must still exist, got %d", count)
	}
}
