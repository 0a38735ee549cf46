package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VisitStatuses is the fixed outcome enumeration for a field visit.
var VisitStatuses = []string{"PTP", "Not Found", "Partial Received", "Received", "Others"}

func ValidVisitStatus(s string) bool {
	for _, v := range VisitStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Visit is one in-person visit outcome logged against a loan account.
// Rows are append-only: there is no update or delete path, and resubmitting
// for the same loan number creates another independent row. Agent name and
// phone are snapshots taken at submission time.
type Visit struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LoanNumber    string         `gorm:"column:loan_number;size:21;index;not null" json:"loan_number"`
	AgentID       uuid.UUID      `gorm:"column:agent_id;type:uuid;index;not null" json:"agent_id"`
	AgentName     string         `gorm:"column:agent_name;size:100;not null" json:"agent_name"`
	AgentPhone    string         `gorm:"column:agent_phone;size:15;not null" json:"agent_phone"`
	PersonVisited string         `gorm:"column:person_visited;not null" json:"person_visited"`
	Status        string         `gorm:"column:status;size:20;not null" json:"status"`
	Comments      string         `gorm:"column:comments;not null" json:"comments"`
	PhotoURLs     datatypes.JSON `gorm:"column:photo_urls;type:jsonb;not null" json:"photo_urls"`
	Latitude      float64        `gorm:"column:latitude;not null" json:"latitude"`
	Longitude     float64        `gorm:"column:longitude;not null" json:"longitude"`
	Address       string         `gorm:"column:address;not null" json:"address"`
	PtpDate       *string        `gorm:"column:ptp_date" json:"ptp_date,omitempty"`
	PtpAmount     *float64       `gorm:"column:ptp_amount" json:"ptp_amount,omitempty"`
	VisitedAt     JSONTime       `gorm:"column:visited_at;not null" json:"visited_at"`
}

func (v *Visit) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
