package handler

import (
	"net/http"
	"strings"

	"stock-app/internal/models"
	"stock-app/pkg/database"

	"github.com/gin-gonic/gin"
)

type DuplicatesHandler struct{}

type DuplicateGroup struct {
	Name        string         `json:"name"`
	KeepID      uint           `json:"keep_id"`
	DeleteIDs   []uint         `json:"delete_ids"`
	SalesCounts map[uint]int64 `json:"sales_counts"`
}

// normalizeName folds case and collapses internal whitespace so
// " Stylo  BIC " and "stylo bic" group together.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func buildDuplicatePlan() ([]DuplicateGroup, error) {
	var products []models.Product
	if err := database.DB.Order("id asc").Find(&products).Error; err != nil {
		return nil, err
	}

	byName := map[string][]models.Product{}
	for _, p := range products {
		key := normalizeName(p.Name)
		byName[key] = append(byName[key], p)
	}

	var groups []DuplicateGroup
	for key, members := range byName {
		if len(members) < 2 {
			continue
		}

		counts := map[uint]int64{}
		for _, p := range members {
			var n int64
			if err := database.DB.Model(&models.SaleItem{}).Where("product_id = ?", p.ID).Count(&n).Error; err != nil {
				return nil, err
			}
			counts[p.ID] = n
		}

		// Keep the member with the most associated sales; ties go to the
		// oldest (lowest) id. Members are already id-ordered.
		keep := members[0]
		for _, p := range members[1:] {
			if counts[p.ID] > counts[keep.ID] {
				keep = p
			}
		}

		group := DuplicateGroup{Name: key, KeepID: keep.ID, SalesCounts: counts}
		for _, p := range members {
			if p.ID != keep.ID {
				group.DeleteIDs = append(group.DeleteIDs, p.ID)
			}
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// GetDuplicates reports the consolidation plan without mutating anything.
func (h *DuplicatesHandler) GetDuplicates(c *gin.Context) {
	groups, err := buildDuplicatePlan()
	if err != nil {
		respondDBError(c, "GetDuplicates", "build plan", err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"groups": groups, "dry_run": true})
}

// CleanupDuplicates executes the plan. Each group is one transaction:
// sale items and barcodes are re-pointed to the kept product before the
// losing rows are deleted, so no reference is ever orphaned.
func (h *DuplicatesHandler) CleanupDuplicates(c *gin.Context) {
	groups, err := buildDuplicatePlan()
	if err != nil {
		respondDBError(c, "CleanupDuplicates", "build plan", err)
		return
	}

	var merged, deleted int64
	for _, group := range groups {
		tx := database.DB.Begin()

		res := tx.Model(&models.SaleItem{}).Where("product_id IN ?", group.DeleteIDs).
			Update("product_id", group.KeepID)
		if res.Error != nil {
			tx.Rollback()
			respondDBError(c, "CleanupDuplicates", "reassign sale items", res.Error)
			return
		}
		merged += res.RowsAffected

		if err := tx.Model(&models.Barcode{}).Where("product_id IN ?", group.DeleteIDs).
			Update("product_id", group.KeepID).Error; err != nil {
			tx.Rollback()
			respondDBError(c, "CleanupDuplicates", "reassign barcodes", err)
			return
		}

		res = tx.Where("id IN ?", group.DeleteIDs).Delete(&models.Product{})
		if res.Error != nil {
			tx.Rollback()
			respondDBError(c, "CleanupDuplicates", "delete products", res.Error)
			return
		}
		deleted += res.RowsAffected

		if err := tx.Commit().Error; err != nil {
			respondDBError(c, "CleanupDuplicates", "commit", err)
			return
		}
	}

	respondMessage(c, http.StatusOK, "Nettoyage des doublons terminé", gin.H{
		"groups":           len(groups),
		"items_reassigned": merged,
		"products_deleted": deleted,
	})
}
