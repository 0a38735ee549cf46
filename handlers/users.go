package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"p9e.in/loantracker/config"
	"p9e.in/loantracker/middleware"
	"p9e.in/loantracker/models"
	"p9e.in/loantracker/pkg/identity"
	"p9e.in/loantracker/utils"
)

// Deactivation bans the identity for ten years, which outlives any refresh
// token. There is no un-ban path.
const deactivationBan = 87600 * time.Hour

// ListUsers returns all profiles, newest first.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	users := []models.Profile{}
	if err := config.DB.WithContext(r.Context()).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		log.Printf("[USERS] list failed: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

type createUserReq struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser provisions an account in two phases: credential first, profile
// second. If the profile insert fails the credential is deleted again, so a
// half-created account never lingers in the identity store.
func CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		utils.JSONError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if strings.TrimSpace(req.Phone) == "" {
		utils.JSONError(w, http.StatusBadRequest, "Phone number is required")
		return
	}
	if len(req.Password) < 6 {
		utils.JSONError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Role must be field_agent or collection_manager")
		return
	}

	manager := middleware.GetProfile(r)
	id := uuid.New()

	if err := gateway.Create(r.Context(), id.String(), req.Phone, req.Password); err != nil {
		if errors.Is(err, identity.ErrDuplicatePhone) {
			utils.JSONError(w, http.StatusConflict, "Phone number already in use")
			return
		}
		log.Printf("[USERS] identity create failed: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to create auth user")
		return
	}

	profile := models.Profile{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      role,
		IsActive:  true,
		CreatedBy: &manager.ID,
	}
	if err := config.DB.WithContext(r.Context()).Create(&profile).Error; err != nil {
		// Compensating action: the credential must not outlive the profile.
		if delErr := gateway.Delete(r.Context(), id.String()); delErr != nil {
			log.Printf("[USERS] identity rollback failed for %s: %v", id, delErr)
		}
		if strings.Contains(err.Error(), "duplicate key") {
			utils.JSONError(w, http.StatusConflict, "Phone number already in use")
			return
		}
		log.Printf("[USERS] profile insert failed: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to create user profile")
		return
	}

	writeAudit(r, models.AuditUserCreated, manager, &profile.ID, map[string]interface{}{
		"name":  profile.Name,
		"phone": profile.Phone,
		"role":  profile.Role.String(),
	})

	utils.JSON(w, http.StatusCreated, map[string]interface{}{"user": profile})
}

// DeactivateUser flips is_active and bans the identity. Check order matters:
// self-protection first, then existence, then already-inactive.
func DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	manager := middleware.GetProfile(r)
	if manager.ID == id {
		utils.JSONError(w, http.StatusBadRequest, "You cannot deactivate your own account")
		return
	}

	var target models.Profile
	if err := config.DB.WithContext(r.Context()).First(&target, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !target.IsActive {
		utils.JSONError(w, http.StatusBadRequest, "User is already deactivated")
		return
	}

	if err := config.DB.WithContext(r.Context()).Model(&target).Update("is_active", false).Error; err != nil {
		log.Printf("[USERS] deactivate failed: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to deactivate user")
		return
	}

	if err := gateway.Ban(r.Context(), id.String(), deactivationBan); err != nil {
		log.Printf("[USERS] ban failed for %s: %v", id, err)
	}

	writeAudit(r, models.AuditUserDeactivated, manager, &id, map[string]interface{}{
		"name":  target.Name,
		"phone": target.Phone,
	})

	utils.JSON(w, http.StatusOK, map[string]string{"message": "User deactivated successfully"})
}

type resetPasswordReq struct {
	NewPassword string `json:"new_password"`
}

// ResetPassword sets a new password on the target identity. A manager may
// reset their own password through this path.
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req resetPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.NewPassword) < 6 {
		utils.JSONError(w, http.StatusBadRequest, "New password must be at least 6 characters")
		return
	}

	var target models.Profile
	if err := config.DB.WithContext(r.Context()).First(&target, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := gateway.SetPassword(r.Context(), id.String(), req.NewPassword); err != nil {
		log.Printf("[USERS] password reset failed: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	manager := middleware.GetProfile(r)
	writeAudit(r, models.AuditPasswordReset, manager, &id, map[string]interface{}{
		"name":  target.Name,
		"phone": target.Phone,
	})

	utils.JSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

// writeAudit appends an audit entry. Best-effort: a failed write is logged
// and never fails the mutation that caused it.
func writeAudit(r *http.Request, action string, actor *models.Profile, target *uuid.UUID, metadata map[string]interface{}) {
	entry := models.AuditLog{
		Action:          action,
		PerformedBy:     actor.ID,
		PerformedByName: actor.Name,
		TargetUserID:    target,
		Metadata:        datatypes.JSONMap(metadata),
	}
	if err := config.DB.WithContext(r.Context()).Create(&entry).Error; err != nil {
		log.Printf("[AUDIT] write failed for %s: %v", action, err)
	}
}
