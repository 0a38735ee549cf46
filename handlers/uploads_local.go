package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const uploadDir = "./uploads" // Local directory for development storage

// uploadPhotosLocal is the development fallback: files land under ./uploads
// and are served back from the /uploads/ route.
func uploadPhotosLocal(agentID string, files []*multipart.FileHeader) ([]string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	batch := time.Now().Format("20060102-150405")

	urls := make([]string, 0, len(files))
	for i, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}

		name := fmt.Sprintf("%s-%s-%d%s", agentID, batch, i, photoExt(fh))
		dst, err := os.Create(filepath.Join(uploadDir, name))
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("create %s: %w", name, err)
		}

		if _, err := io.Copy(dst, src); err != nil {
			src.Close()
			dst.Close()
			return nil, fmt.Errorf("save %s: %w", name, err)
		}
		src.Close()
		dst.Close()

		urls = append(urls, "/uploads/"+name)
	}

	return urls, nil
}

func photoExt(fh *multipart.FileHeader) string {
	if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != "" {
		return ext
	}
	if photoContentType(fh) == "image/png" {
		return ".png"
	}
	return ".jpg"
}
