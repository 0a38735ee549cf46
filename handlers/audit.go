package handlers

import (
	"log"
	"net/http"
	"strings"

	"p9e.in/loantracker/config"
	"p9e.in/loantracker/models"
	"p9e.in/loantracker/utils"
)

// ListAuditLogs returns administrative audit entries, newest first, capped at
// 500 rows, optionally filtered by exact action.
func ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimSpace(r.URL.Query().Get("action"))

	q := config.DB.WithContext(r.Context()).
		Order("created_at DESC").
		Limit(500)
	if action != "" {
		q = q.Where("action = ?", action)
	}

	logs := []models.AuditLog{}
	if err := q.Find(&logs).Error; err != nil {
		log.Printf("[AUDIT] fetch failed: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to fetch audit logs")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}
