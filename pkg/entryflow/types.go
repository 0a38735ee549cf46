// Package entryflow is the agent-facing visit entry flow: a two-step state
// machine (loan entry, then the visit form) that gathers geolocation, photos
// and outcome fields and produces the submission payload. It is headless; a
// UI layer owns rendering and feeds events in. All collaborators are injected
// so the flow runs against the real API or against fakes in tests.
package entryflow

import (
	"context"
	"time"
)

// Position is a device-reported location fix.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Geolocator asks the device for its current position.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// Geocoder resolves a position to a street address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// Photo is one captured or picked image, held in memory until upload.
type Photo struct {
	Name string
	MIME string
	Size int64
	Data []byte
}

// PhotoStore uploads a batch of photos and returns their public URLs.
type PhotoStore interface {
	Upload(ctx context.Context, photos []Photo) ([]string, error)
}

// Submission is the payload handed to the visit API.
type Submission struct {
	LoanNumber    string
	PersonVisited string
	Status        string
	Comments      string
	PhotoURLs     []string
	Latitude      float64
	Longitude     float64
	Address       string
	PtpDate       string  // set only when Status is PTP
	PtpAmount     float64 // set only when Status is PTP
}

// PastVisit is one earlier visit shown alongside the form.
type PastVisit struct {
	Status        string
	PersonVisited string
	Comments      string
	Address       string
	VisitedAt     time.Time
}

// VisitService is the server side of the flow.
type VisitService interface {
	Submit(ctx context.Context, sub Submission) error
	History(ctx context.Context, loanNumber string) ([]PastVisit, error)
}

// CameraStream is a live device camera session. It must be stopped on every
// exit path (capture, cancel, flow teardown) or the device stays claimed.
type CameraStream interface {
	Capture() (Photo, error)
	Stop()
}

// Camera opens device camera sessions.
type Camera interface {
	Start(ctx context.Context) (CameraStream, error)
}

// Deps bundles the flow's collaborators.
type Deps struct {
	Geolocator Geolocator
	Geocoder   Geocoder
	Photos     PhotoStore
	Visits     VisitService
	Camera     Camera
}
