package handler

import (
	"fmt"
	"net/http"
	"testing"

	"stock-app/internal/models"
)

func TestClients_CRUD(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()

	user := seedUser(t, db, models.RoleCaissier, uintPtr(2))
	auth := bearerFor(t, user)

	rec := doJSON(t, r, http.MethodPost, "/api/clients", auth, map[string]any{
		"name":     "Ecole Ibn Sina",
		"phone":    "0600000000",
		"stock_id": "renaissance",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var client models.Client
	if err := db.First(&client).Error; err != nil {
		t.Fatalf("load client: %v", err)
	}
	if client.StockID != 2 || !client.IsActive {
		t.Fatalf("unexpected client: %+v", client)
	}

	rec = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/clients/%d", client.ID), auth,
		map[string]any{"phone": "0611111111"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}
	if err := db.First(&client, client.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if client.Phone != "0611111111" || client.Name != "Ecole Ibn Sina" {
		t.Fatalf("partial update went wrong: %+v", client)
	}

	// Deletion deactivates, never removes.
	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/clients/%d", client.ID), auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if err := db.First(&client, client.ID).Error; err != nil {
		t.Fatalf("row must survive deletion: %v", err)
	}
	if client.IsActive {
		t.Fatalf("expected is_active false")
	}

	// Deactivated clients drop out of listings.
	rec = doJSON(t, r, http.MethodGet, "/api/clients?stock=renaissance", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	data := decodeBody(t, rec)["data"].([]any)
	if len(data) != 0 {
		t.Fatalf("expected empty list, got %d", len(data))
	}
}

func TestCreateClient_RejectsUnknownStock(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()

	user := seedUser(t, db, models.RoleCaissier, uintPtr(1))
	auth := bearerFor(t, user)

	rec := doJSON(t, r, http.MethodPost, "/api/clients", auth, map[string]any{
		"name":     "Client fantome",
		"stock_id": "nulle-part",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFournisseurs_CreateListDelete(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()

	user := seedUser(t, db, models.RoleAdmin, uintPtr(3))
	auth := bearerFor(t, user)

	rec := doJSON(t, r, http.MethodPost, "/api/fournisseurs", auth, map[string]any{
		"name":     "Grossiste Atlas",
		"phone":    "0522000000",
		"stock_id": 3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodGet, "/api/fournisseurs?stock=gros", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	data := decodeBody(t, rec)["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected 1 fournisseur, got %d", len(data))
	}

	var fournisseur models.Fournisseur
	if err := db.First(&fournisseur).Error; err != nil {
		t.Fatalf("load fournisseur: %v", err)
	}
	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/fournisseurs/%d", fournisseur.ID), auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if err := db.First(&fournisseur, fournisseur.ID).Error; err != nil {
		t.Fatalf("row must survive deletion: %v", err)
	}
	if fournisseur.IsActive {
		t.Fatalf("expected is_active false")
	}
}
