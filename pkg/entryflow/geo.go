package entryflow

import (
	"context"
	"fmt"
)

// GeoStatus is the acquisition sub-state for the device position.
type GeoStatus string

const (
	GeoIdle       GeoStatus = "idle"
	GeoRequesting GeoStatus = "requesting"
	GeoGranted    GeoStatus = "granted"
	GeoDenied     GeoStatus = "denied"
	GeoError      GeoStatus = "error"
)

// GeoState carries the position and resolved address. Address may lag behind
// Status: the fix is granted first, the geocode fills in afterwards.
type GeoState struct {
	Status    GeoStatus
	Latitude  float64
	Longitude float64
	Address   string
}

// Geo returns the current geolocation state.
func (f *Flow) Geo() GeoState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.geo
}

// RequestLocation starts (or retries) the position acquisition. The fix and
// the follow-up reverse geocode run off the caller's goroutine; a denied or
// failed fix blocks submission until retried. A failed geocode does NOT
// revert a granted fix; the formatted coordinates become the address.
func (f *Flow) RequestLocation(ctx context.Context) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if f.deps.Geolocator == nil {
		f.geo = GeoState{Status: GeoError}
		f.mu.Unlock()
		f.notify()
		return
	}
	f.geoSeq++
	seq := f.geoSeq
	f.geo = GeoState{Status: GeoRequesting}
	f.mu.Unlock()
	f.notify()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		pos, err := f.deps.Geolocator.CurrentPosition(ctx)

		f.mu.Lock()
		if f.closed || f.geoSeq != seq {
			f.mu.Unlock()
			return
		}
		if err != nil {
			f.geo = GeoState{Status: GeoDenied}
			f.mu.Unlock()
			f.notify()
			return
		}
		f.geo = GeoState{Status: GeoGranted, Latitude: pos.Latitude, Longitude: pos.Longitude}
		f.mu.Unlock()
		f.notify()

		address, gerr := f.reverse(ctx, pos)
		if gerr != nil {
			address = fmt.Sprintf("%.6f, %.6f", pos.Latitude, pos.Longitude)
		}

		f.mu.Lock()
		if f.closed || f.geoSeq != seq {
			f.mu.Unlock()
			return
		}
		f.geo.Address = address
		f.mu.Unlock()
		f.notify()
	}()
}

func (f *Flow) reverse(ctx context.Context, pos Position) (string, error) {
	if f.deps.Geocoder == nil {
		return "", fmt.Errorf("no geocoder configured")
	}
	return f.deps.Geocoder.Reverse(ctx, pos.Latitude, pos.Longitude)
}
