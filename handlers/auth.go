// handlers/auth.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"p9e.in/loantracker/config"
	"p9e.in/loantracker/models"
	"p9e.in/loantracker/pkg/identity"
	"p9e.in/loantracker/utils"
)

var gateway identity.Gateway

// SetIdentityGateway wires the gateway used by the auth and user handlers.
func SetIdentityGateway(g identity.Gateway) { gateway = g }

type loginReq struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type userPayload struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
	Role  models.Role `json:"role"`
}

type loginResp struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         userPayload `json:"user"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Phone == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "Phone and password are required")
		return
	}

	id, pair, err := gateway.SignIn(r.Context(), req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrBanned):
			utils.JSONError(w, http.StatusForbidden, "Account is deactivated. Please contact your manager.")
		case errors.Is(err, identity.ErrInvalidCredentials):
			utils.JSONError(w, http.StatusUnauthorized, "Invalid phone number or password")
		default:
			log.Printf("[AUTH] sign-in failed: %v", err)
			utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	var profile models.Profile
	if err := config.DB.WithContext(r.Context()).First(&profile, "id = ?", id).Error; err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "User profile not found")
		return
	}
	if !profile.IsActive {
		utils.JSONError(w, http.StatusForbidden, "Account is deactivated. Please contact your manager.")
		return
	}

	utils.JSON(w, http.StatusOK, loginResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User: userPayload{
			ID:    profile.ID.String(),
			Name:  profile.Name,
			Phone: profile.Phone,
			Role:  profile.Role,
		},
	})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.RefreshToken == "" {
		utils.JSONError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	id, pair, err := gateway.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	// A deactivated profile must not get a fresh pair even if the identity
	// ban is somehow missing.
	var profile models.Profile
	if err := config.DB.WithContext(r.Context()).First(&profile, "id = ?", id).Error; err != nil || !profile.IsActive {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}
