package handler

import (
	"net/http"
	"testing"

	"stock-app/internal/models"

	"gorm.io/gorm"
)

func seedSaleItem(t *testing.T, db *gorm.DB, saleID, productID uint, qty int) {
	t.Helper()
	item := models.SaleItem{SaleID: saleID, ProductID: productID, Quantity: qty}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed sale item: %v", err)
	}
}

func TestGetDuplicates_GroupsByNormalizedName(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()

	admin := seedUser(t, db, models.RoleAdmin, uintPtr(1))
	auth := bearerFor(t, admin)

	a := seedProduct(t, db, "Stylo BIC", 2, 10, uintPtr(1))
	b := seedProduct(t, db, " stylo  bic ", 2, 3, uintPtr(1))
	seedProduct(t, db, "Crayon HB", 1, 5, uintPtr(1))

	sale := seedSale(t, db, admin.ID, 1, a, 1)
	seedSaleItem(t, db, sale.ID, b.ID, 1)
	seedSaleItem(t, db, sale.ID, b.ID, 2)

	rec := doJSON(t, r, http.MethodGet, "/api/products/duplicates", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["dry_run"] != true {
		t.Fatalf("expected dry_run true, got %v", data["dry_run"])
	}
	groups := data["groups"].([]any)
	if len(groups) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(groups))
	}
	group := groups[0].(map[string]any)
	if group["name"] != "stylo bic" {
		t.Fatalf("expected normalized name, got %v", group["name"])
	}
	// b has more sale items, so it wins over the older a.
	if uint(group["keep_id"].(float64)) != b.ID {
		t.Fatalf("expected keep_id %d, got %v", b.ID, group["keep_id"])
	}

	// Dry run must not touch the rows.
	var count int64
	db.Model(&models.Product{}).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 products after dry run, got %d", count)
	}
}

func TestCleanupDuplicates_ReassignsAndDeletes(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()

	admin := seedUser(t, db, models.RoleAdmin, uintPtr(1))
	auth := bearerFor(t, admin)

	keeper := seedProduct(t, db, "Cahier 200p", 12, 10, uintPtr(1))
	loser := seedProduct(t, db, "cahier  200p", 12, 4, uintPtr(1))

	sale := seedSale(t, db, admin.ID, 1, keeper, 1)
	seedSale(t, db, admin.ID, 1, keeper, 2)
	seedSaleItem(t, db, sale.ID, loser.ID, 1)

	barcode := models.Barcode{ProductID: loser.ID, Code: "6111000000011"}
	if err := db.Create(&barcode).Error; err != nil {
		t.Fatalf("seed barcode: %v", err)
	}

	rec := doJSON(t, r, http.MethodPost, "/api/products/duplicates", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["groups"].(float64) != 1 || data["products_deleted"].(float64) != 1 {
		t.Fatalf("unexpected summary: %v", data)
	}
	if data["items_reassigned"].(float64) != 1 {
		t.Fatalf("expected 1 reassigned item, got %v", data["items_reassigned"])
	}

	// Loser is gone, and nothing references it anymore.
	var gone models.Product
	if err := db.First(&gone, loser.ID).Error; err == nil {
		t.Fatalf("expected loser product deleted")
	}
	var orphaned int64
	db.Model(&models.SaleItem{}).Where("product_id = ?", loser.ID).Count(&orphaned)
	if orphaned != 0 {
		t.Fatalf("expected no sale items on deleted product, got %d", orphaned)
	}
	db.Model(&models.Barcode{}).Where("product_id = ?", loser.ID).Count(&orphaned)
	if orphaned != 0 {
		t.Fatalf("expected no barcodes on deleted product, got %d", orphaned)
	}

	var keeperItems int64
	db.Model(&models.SaleItem{}).Where("product_id = ?", keeper.ID).Count(&keeperItems)
	if keeperItems != 3 {
		t.Fatalf("expected keeper to own 3 sale items, got %d", keeperItems)
	}

	// Re-running finds nothing left to merge.
	rec = doJSON(t, r, http.MethodPost, "/api/products/duplicates", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second run: expected 200, got %d", rec.Code)
	}
	data = decodeBody(t, rec)["data"].(map[string]any)
	if data["groups"].(float64) != 0 {
		t.Fatalf("expected 0 groups on second run, got %v", data["groups"])
	}
}

func TestDuplicates_RequireAdminRole(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()

	cashier := seedUser(t, db, models.RoleCaissier, uintPtr(1))
	rec := doJSON(t, r, http.MethodGet, "/api/products/duplicates", bearerFor(t, cashier), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier, got %d", rec.Code)
	}
}
