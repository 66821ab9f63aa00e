// Package media stores user-uploaded images and returns the URL they are
// served from.
package media

import (
	"bytes"
	"context"
	"io"
	"sync"

	gcs "cloud.google.com/go/storage"
	"github.com/anonto42/socialape/backend/pkg/config"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrUnsupportedType = errors.New("File type not supported")

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, contentType string, r io.Reader) (string, error)
}

// ObjectName picks a fresh object name for an image of the given type. It
// fails with ErrUnsupportedType for anything but JPEG and PNG.
func ObjectName(contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}
	return uuid.NewString() + "." + ext, nil
}

// FirebaseUploader writes images to the project's default storage bucket.
type FirebaseUploader struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseUploader(bucket *gcs.BucketHandle, bucketName string) *FirebaseUploader {
	return &FirebaseUploader{bucket: bucket, bucketName: bucketName}
}

func (u *FirebaseUploader) Upload(ctx context.Context, contentType string, r io.Reader) (string, error) {
	name, err := ObjectName(contentType)
	if err != nil {
		return "", err
	}

	w := u.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrapf(err, "write object %s", name)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "finish object %s", name)
	}
	return config.PublicImageURL(u.bucketName, name), nil
}

// MemoryUploader keeps uploads in memory. It serves deployments without a
// bucket and tests.
type MemoryUploader struct {
	mu         sync.Mutex
	bucketName string
	objects    map[string][]byte
}

func NewMemoryUploader(bucketName string) *MemoryUploader {
	return &MemoryUploader{bucketName: bucketName, objects: make(map[string][]byte)}
}

func (u *MemoryUploader) Upload(_ context.Context, contentType string, r io.Reader) (string, error) {
	name, err := ObjectName(contentType)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", errors.Wrap(err, "read upload")
	}

	u.mu.Lock()
	u.objects[name] = buf.Bytes()
	u.mu.Unlock()
	return config.PublicImageURL(u.bucketName, name), nil
}

// Len reports how many objects were uploaded.
func (u *MemoryUploader) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.objects)
}
