package handlers

import (
	"log"
	"net/http"
	"strconv"

	"p9e.in/loantracker/pkg/geocode"
	"p9e.in/loantracker/utils"
)

var geocoder *geocode.Client

// SetGeocoder wires the reverse-geocoding client. Called once from route
// registration.
func SetGeocoder(c *geocode.Client) { geocoder = c }

// ReverseGeocode proxies a coordinate lookup. Geocoder failure is not an
// error for the caller: the formatted coordinates come back as the address.
func ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		utils.JSONError(w, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}

	coord := utils.Coordinate{Lat: lat, Lng: lon}
	if err := utils.ValidateCoordinate(coord); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	address, err := geocoder.Reverse(r.Context(), lat, lon)
	if err != nil {
		log.Printf("[GEO] reverse lookup failed: %v", err)
		address = utils.FormatCoordinate(coord)
	}

	utils.JSON(w, http.StatusOK, map[string]string{"address": address})
}
