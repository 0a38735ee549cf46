package entryflow

import (
	"context"
	"errors"
)

const (
	maxPhotos          = 5
	maxPhotoBatchBytes = 10 << 20 // 10 MB combined
)

var (
	ErrPhotoType  = errors.New("Only JPEG and PNG files are allowed")
	ErrPhotoCount = errors.New("Maximum 5 photos allowed")
	ErrPhotoSize  = errors.New("Total photo size must not exceed 10 MB")
	ErrNoCamera   = errors.New("no camera available")
)

func allowedPhotoMIME(mime string) bool {
	return mime == "image/jpeg" || mime == "image/png"
}

// AddPhotos appends a batch from either capture path (camera or file picker)
// to the single accumulating list. The batch is atomic: the first violated
// constraint rejects it whole, nothing is kept.
func (f *Flow) AddPhotos(batch []Photo) error {
	f.mu.Lock()

	total := int64(0)
	for _, p := range f.photos {
		total += p.Size
	}

	accepted := 0
	var violation error
	for _, p := range batch {
		if !allowedPhotoMIME(p.MIME) {
			violation = ErrPhotoType
			break
		}
		if len(f.photos)+accepted >= maxPhotos {
			violation = ErrPhotoCount
			break
		}
		total += p.Size
		if total > maxPhotoBatchBytes {
			violation = ErrPhotoSize
			break
		}
		accepted++
	}
	if violation != nil {
		f.mu.Unlock()
		return violation
	}

	f.photos = append(f.photos, batch...)
	f.mu.Unlock()
	f.notify()
	return nil
}

// RemovePhoto drops one photo from the list.
func (f *Flow) RemovePhoto(i int) {
	f.mu.Lock()
	if i < 0 || i >= len(f.photos) {
		f.mu.Unlock()
		return
	}
	f.photos = append(f.photos[:i], f.photos[i+1:]...)
	f.mu.Unlock()
	f.notify()
}

// Photos returns a copy of the accumulated list.
func (f *Flow) Photos() []Photo {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Photo, len(f.photos))
	copy(out, f.photos)
	return out
}

// OpenCamera claims the device camera. At most one stream is live; opening
// again first releases the previous one.
func (f *Flow) OpenCamera(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.deps.Camera == nil {
		f.mu.Unlock()
		return ErrNoCamera
	}
	f.stopCameraLocked()
	f.mu.Unlock()

	stream, err := f.deps.Camera.Start(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.closed {
		// Teardown raced the open; release immediately.
		f.mu.Unlock()
		stream.Stop()
		return ErrClosed
	}
	f.camera = stream
	f.mu.Unlock()
	f.notify()
	return nil
}

// CapturePhoto grabs a frame from the live stream and feeds it through the
// normal photo constraints. The stream is released no matter how the capture
// goes; a retake means reopening the camera.
func (f *Flow) CapturePhoto() error {
	f.mu.Lock()
	stream := f.camera
	f.camera = nil
	f.mu.Unlock()

	if stream == nil {
		return ErrNoCamera
	}
	defer stream.Stop()

	photo, err := stream.Capture()
	if err != nil {
		return err
	}
	return f.AddPhotos([]Photo{photo})
}

// CancelCamera releases the stream without capturing.
func (f *Flow) CancelCamera() {
	f.mu.Lock()
	f.stopCameraLocked()
	f.mu.Unlock()
	f.notify()
}

// stopCameraLocked releases the live stream if any. Caller holds the lock.
func (f *Flow) stopCameraLocked() {
	if f.camera != nil {
		f.camera.Stop()
		f.camera = nil
	}
}
