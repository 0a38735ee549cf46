package handlers

import (
	"strings"
	"testing"

	"p9e.in/loantracker/models"
)

func validSubmit() submitVisitReq {
	lat, lon := 12.97, 77.59
	return submitVisitReq{
		LoanNumber:    "123456789012345678901",
		PersonVisited: "Jane Roe",
		Status:        "Received",
		Comments:      "paid in full",
		PhotoURLs:     []string{"https://x/1.jpg"},
		Latitude:      &lat,
		Longitude:     &lon,
		Address:       "MG Road",
	}
}

func TestValidateVisitLoanNumber(t *testing.T) {
	badLoans := []string{
		"",
		"12345",
		"1234567890123456789012", // 22 digits
		"12345678901234567890",   // 20 digits
		"12345678901234567890a",
		"123456789012345678 01",
		"123456789012345678.01",
	}
	// Every status must reject a malformed loan number the same way.
	statuses := []string{"PTP", "Not Found", "Partial Received", "Received", "Others"}

	for _, loan := range badLoans {
		for _, status := range statuses {
			req := validSubmit()
			req.LoanNumber = loan
			req.Status = status
			if status == "PTP" {
				d := "2026-09-15"
				amt := 500.0
				req.PtpDate = &d
				req.PtpAmount = &amt
			}
			if got := validateVisit(&req); got != "Loan number must be exactly 21 digits" {
				t.Errorf("loan %q status %q: got %q", loan, status, got)
			}
		}
	}
}

func TestValidateVisitFieldOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*submitVisitReq)
		want   string
	}{
		{"valid", func(r *submitVisitReq) {}, ""},
		{"blank person", func(r *submitVisitReq) { r.PersonVisited = "   " }, "Person visited is required"},
		{"unknown status", func(r *submitVisitReq) { r.Status = "Visited" },
			"Status must be one of: PTP, Not Found, Partial Received, Received, Others"},
		{"blank comments", func(r *submitVisitReq) { r.Comments = "\t" }, "Comments are required"},
		{"zero photos", func(r *submitVisitReq) { r.PhotoURLs = nil }, "Between 1 and 5 photos are required"},
		{"six photos", func(r *submitVisitReq) {
			r.PhotoURLs = []string{"1", "2", "3", "4", "5", "6"}
		}, "Between 1 and 5 photos are required"},
		{"five photos ok", func(r *submitVisitReq) {
			r.PhotoURLs = []string{"1", "2", "3", "4", "5"}
		}, ""},
		{"missing latitude", func(r *submitVisitReq) { r.Latitude = nil }, "Geolocation is required"},
		{"missing longitude", func(r *submitVisitReq) { r.Longitude = nil }, "Geolocation is required"},
		{"zero coordinates ok", func(r *submitVisitReq) {
			zero := 0.0
			r.Latitude = &zero
			r.Longitude = &zero
		}, ""},
		// Out-of-range coordinates are accepted by contract.
		{"out of range latitude ok", func(r *submitVisitReq) {
			big := 400.0
			r.Latitude = &big
		}, ""},
		{"blank address", func(r *submitVisitReq) { r.Address = " " }, "Address is required"},
		// Loan check wins over later violations.
		{"loan before person", func(r *submitVisitReq) {
			r.LoanNumber = "12345"
			r.PersonVisited = ""
		}, "Loan number must be exactly 21 digits"},
		// Photo count wins over missing geo.
		{"photos before geo", func(r *submitVisitReq) {
			r.PhotoURLs = nil
			r.Latitude = nil
		}, "Between 1 and 5 photos are required"},
		{"ptp ignored for non-ptp", func(r *submitVisitReq) {
			r.Status = "Received"
			r.PtpDate = nil
			r.PtpAmount = nil
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSubmit()
			tt.mutate(&req)
			if got := validateVisit(&req); got != tt.want {
				t.Errorf("validateVisit() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateVisitPTP(t *testing.T) {
	date := "2026-09-15"
	blank := "  "
	pos := 1500.0
	zero := 0.0
	neg := -5.0

	tests := []struct {
		name   string
		date   *string
		amount *float64
		want   string
	}{
		{"both present", &date, &pos, ""},
		{"missing date", nil, &pos, "PTP Date is required"},
		{"blank date", &blank, &pos, "PTP Date is required"},
		{"missing amount", &date, nil, "PTP Amount must be a positive number"},
		{"zero amount", &date, &zero, "PTP Amount must be a positive number"},
		{"negative amount", &date, &neg, "PTP Amount must be a positive number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSubmit()
			req.Status = "PTP"
			req.PtpDate = tt.date
			req.PtpAmount = tt.amount
			if got := validateVisit(&req); got != tt.want {
				t.Errorf("validateVisit() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateVisitTrimsOnly(t *testing.T) {
	// Whitespace-padded values are valid; trimming happens at persistence.
	req := validSubmit()
	req.PersonVisited = "  Jane Roe  "
	req.Comments = " paid "
	req.Address = " MG Road "
	if got := validateVisit(&req); got != "" {
		t.Errorf("padded fields rejected: %q", got)
	}
	if strings.TrimSpace(req.PersonVisited) != "Jane Roe" {
		t.Fatal("test fixture broken")
	}
}

func TestWithDistances(t *testing.T) {
	loanA := "111111111111111111111"
	loanB := "222222222222222222222"
	// Newest first, two loans interleaved. Coordinates on the equator so the
	// expected separations are easy to reason about (0.001 deg of longitude
	// is roughly 111 m).
	visits := []models.Visit{
		{LoanNumber: loanA, Latitude: 0, Longitude: 0.002},
		{LoanNumber: loanB, Latitude: 0, Longitude: 0.5},
		{LoanNumber: loanA, Latitude: 0, Longitude: 0.001},
		{LoanNumber: loanB, Latitude: 0, Longitude: 0.5},
		{LoanNumber: loanA, Latitude: 0, Longitude: 0},
	}

	got := withDistances(visits)
	if len(got) != len(visits) {
		t.Fatalf("len = %d", len(got))
	}

	// Oldest visit of each loan carries no distance.
	if got[4].DistanceFromPreviousMeters != nil {
		t.Errorf("oldest visit of loan A annotated: %v", *got[4].DistanceFromPreviousMeters)
	}
	if got[3].DistanceFromPreviousMeters != nil {
		t.Errorf("oldest visit of loan B annotated: %v", *got[3].DistanceFromPreviousMeters)
	}

	// Each newer visit measures against its own loan's previous visit.
	for _, i := range []int{0, 2} {
		d := got[i].DistanceFromPreviousMeters
		if d == nil {
			t.Fatalf("visit %d not annotated", i)
		}
		if *d < 100 || *d > 125 {
			t.Errorf("visit %d distance = %f, want roughly 111m", i, *d)
		}
	}

	// Loan B revisited the same spot.
	d := got[1].DistanceFromPreviousMeters
	if d == nil {
		t.Fatal("repeat visit not annotated")
	}
	if *d != 0 {
		t.Errorf("same-spot distance = %f", *d)
	}
}

func TestWithDistancesEmpty(t *testing.T) {
	if got := withDistances(nil); len(got) != 0 {
		t.Errorf("withDistances(nil) = %v", got)
	}
}
