package handlers

import (
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"p9e.in/loantracker/middleware"
	"p9e.in/loantracker/utils"
)

const (
	maxPhotoCount      = 5
	maxPhotoBatchBytes = 10 << 20 // 10 MB combined
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// UploadPhotos accepts a multipart batch of visit photos and returns public
// URLs for them. Routes to Google Cloud Storage in production and the local
// uploads directory in development.
func UploadPhotos(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoBatchBytes + 1<<20); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}

	files := r.MultipartForm.File["photos"]
	if msg := validatePhotoBatch(files); msg != "" {
		utils.JSONError(w, http.StatusBadRequest, msg)
		return
	}

	agent := middleware.GetProfile(r)

	var (
		urls []string
		err  error
	)
	if useGCS() {
		urls, err = uploadPhotosGCS(r.Context(), agent.ID.String(), files)
	} else {
		urls, err = uploadPhotosLocal(agent.ID.String(), files)
	}
	if err != nil {
		log.Printf("[UPLOAD] failed for agent %s: %v", agent.ID, err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to upload photos")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"urls": urls})
}

// validatePhotoBatch enforces the photo constraints and reports the first
// violation.
func validatePhotoBatch(files []*multipart.FileHeader) string {
	if len(files) < 1 || len(files) > maxPhotoCount {
		return "Between 1 and 5 photos are required"
	}
	var total int64
	for _, fh := range files {
		if !allowedPhotoTypes[photoContentType(fh)] {
			return "Only JPEG and PNG files are allowed"
		}
		total += fh.Size
		if total > maxPhotoBatchBytes {
			return "Total photo size must not exceed 10 MB"
		}
	}
	return ""
}

func photoContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}

func useGCS() bool {
	return os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != "" // Cloud Run indicator
}
