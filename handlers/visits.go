package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
	"p9e.in/loantracker/config"
	"p9e.in/loantracker/middleware"
	"p9e.in/loantracker/models"
	"p9e.in/loantracker/utils"
)

var loanNumberRe = regexp.MustCompile(`^\d{21}$`)

type submitVisitReq struct {
	LoanNumber    string   `json:"loan_number"`
	PersonVisited string   `json:"person_visited"`
	Status        string   `json:"status"`
	Comments      string   `json:"comments"`
	PhotoURLs     []string `json:"photo_urls"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Address       string   `json:"address"`
	PtpDate       *string  `json:"ptp_date"`
	PtpAmount     *float64 `json:"ptp_amount"`
}

// validateVisit runs the submission checks in contract order and returns the
// first violation. Coordinates are presence-checked only; whatever the device
// reported is stored as-is.
func validateVisit(req *submitVisitReq) string {
	if !loanNumberRe.MatchString(req.LoanNumber) {
		return "Loan number must be exactly 21 digits"
	}
	if strings.TrimSpace(req.PersonVisited) == "" {
		return "Person visited is required"
	}
	if !models.ValidVisitStatus(req.Status) {
		return fmt.Sprintf("Status must be one of: %s", strings.Join(models.VisitStatuses, ", "))
	}
	if strings.TrimSpace(req.Comments) == "" {
		return "Comments are required"
	}
	if len(req.PhotoURLs) < 1 || len(req.PhotoURLs) > 5 {
		return "Between 1 and 5 photos are required"
	}
	if req.Latitude == nil || req.Longitude == nil {
		return "Geolocation is required"
	}
	if strings.TrimSpace(req.Address) == "" {
		return "Address is required"
	}
	if req.Status == "PTP" {
		if req.PtpDate == nil || strings.TrimSpace(*req.PtpDate) == "" {
			return "PTP Date is required"
		}
		if req.PtpAmount == nil || *req.PtpAmount <= 0 {
			return "PTP Amount must be a positive number"
		}
	}
	return ""
}

// SubmitVisit appends one visit row. There is no update path; submitting the
// same loan number again creates another row.
func SubmitVisit(w http.ResponseWriter, r *http.Request) {
	var req submitVisitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if msg := validateVisit(&req); msg != "" {
		utils.JSONError(w, http.StatusBadRequest, msg)
		return
	}

	agent := middleware.GetProfile(r)

	photos, err := json.Marshal(req.PhotoURLs)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid photo URLs")
		return
	}

	visit := models.Visit{
		LoanNumber:    req.LoanNumber,
		AgentID:       agent.ID,
		AgentName:     agent.Name,
		AgentPhone:    agent.Phone,
		PersonVisited: strings.TrimSpace(req.PersonVisited),
		Status:        req.Status,
		Comments:      strings.TrimSpace(req.Comments),
		PhotoURLs:     datatypes.JSON(photos),
		Latitude:      *req.Latitude,
		Longitude:     *req.Longitude,
		Address:       strings.TrimSpace(req.Address),
		VisitedAt:     models.JSONTime(time.Now().UTC()),
	}
	if req.Status == "PTP" {
		visit.PtpDate = req.PtpDate
		visit.PtpAmount = req.PtpAmount
	}

	if err := config.DB.WithContext(r.Context()).Create(&visit).Error; err != nil {
		log.Printf("[VISIT] insert failed: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to save visit")
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]interface{}{"visit": visit})
}

// visitRecord is a visit plus how far it lies from the loan's previous visit.
// Managers use the jump to spot entries logged far from earlier visits to the
// same address.
type visitRecord struct {
	models.Visit
	DistanceFromPreviousMeters *float64 `json:"distance_from_previous_meters,omitempty"`
}

// withDistances annotates each visit with the distance to the next-older
// visit for the same loan. Input is newest first; a loan's oldest visit in the
// set stays unannotated.
func withDistances(visits []models.Visit) []visitRecord {
	out := make([]visitRecord, len(visits))
	prev := make(map[string]utils.Coordinate)
	for i := len(visits) - 1; i >= 0; i-- {
		v := visits[i]
		out[i] = visitRecord{Visit: v}
		here := utils.Coordinate{Lat: v.Latitude, Lng: v.Longitude}
		if p, ok := prev[v.LoanNumber]; ok {
			d := utils.DistanceMeters(p, here)
			out[i].DistanceFromPreviousMeters = &d
		}
		prev[v.LoanNumber] = here
	}
	return out
}

// MyVisits returns the calling agent's visits for one loan, newest first.
func MyVisits(w http.ResponseWriter, r *http.Request) {
	loanNumber := r.URL.Query().Get("loan_number")
	if !loanNumberRe.MatchString(loanNumber) {
		utils.JSONError(w, http.StatusBadRequest, "Valid 21-digit loan number is required")
		return
	}

	agent := middleware.GetProfile(r)

	visits := []models.Visit{}
	if err := config.DB.WithContext(r.Context()).
		Where("agent_id = ?", agent.ID).
		Where("loan_number = ?", loanNumber).
		Order("visited_at DESC").
		Find(&visits).Error; err != nil {
		log.Printf("[VISIT] fetch failed: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to fetch visits")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"visits": withDistances(visits)})
}

// SearchVisits is the manager-side search: exact loan match and/or
// case-insensitive substring match on agent name or phone.
func SearchVisits(w http.ResponseWriter, r *http.Request) {
	loanNumber := strings.TrimSpace(r.URL.Query().Get("loan_number"))
	agentQuery := strings.TrimSpace(r.URL.Query().Get("agent_query"))

	if loanNumber == "" && agentQuery == "" {
		utils.JSONError(w, http.StatusBadRequest, "At least one search parameter is required")
		return
	}

	q := config.DB.WithContext(r.Context()).
		Order("visited_at DESC").
		Limit(200)

	if loanNumber != "" {
		q = q.Where("loan_number = ?", loanNumber)
	}
	if agentQuery != "" {
		pattern := "%" + agentQuery + "%"
		q = q.Where("agent_name ILIKE ? OR agent_phone ILIKE ?", pattern, pattern)
	}

	visits := []models.Visit{}
	if err := q.Find(&visits).Error; err != nil {
		log.Printf("[VISIT] search failed: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to search visits")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"visits": withDistances(visits)})
}
