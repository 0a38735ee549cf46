package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"time"

	"cloud.google.com/go/storage"
)

// uploadPhotosGCS writes the batch to the configured bucket and returns the
// public object URLs. Object names are agent-scoped and timestamped so
// repeated batches never collide.
func uploadPhotosGCS(ctx context.Context, agentID string, files []*multipart.FileHeader) ([]string, error) {
	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return nil, fmt.Errorf("GCS_BUCKET is not set")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	defer client.Close()

	bucket := client.Bucket(bucketName)
	batch := time.Now().UnixMilli()

	urls := make([]string, 0, len(files))
	for i, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}

		object := fmt.Sprintf("visit-photos/%s/%d/%d%s", agentID, batch, i, photoExt(fh))
		wc := bucket.Object(object).NewWriter(ctx)
		wc.ContentType = photoContentType(fh)

		if _, err := io.Copy(wc, src); err != nil {
			src.Close()
			wc.Close()
			return nil, fmt.Errorf("write %s: %w", object, err)
		}
		src.Close()
		if err := wc.Close(); err != nil {
			return nil, fmt.Errorf("close %s: %w", object, err)
		}

		urls = append(urls, fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, object))
	}

	return urls, nil
}
