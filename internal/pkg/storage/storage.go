package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wanpass/wanpass/internal/pkg/env"
)

// UploadResult is the location of a stored blob: the opaque key used for
// later deletion and the URL handed to clients.
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Blob persists generated and original images. Delete errors are non-fatal
// to callers; records outlive their blobs, not the other way round.
type Blob interface {
	Put(ctx context.Context, data []byte, key, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// New builds the configured blob backend. STORAGE_DRIVER selects between
// local disk (dev) and S3 or an S3-compatible service.
func New() (Blob, error) {
	switch driver := env.GetEnv("STORAGE_DRIVER", "local"); driver {
	case "local":
		return NewLocal(
			env.GetEnv("STORAGE_PATH", "storage"),
			env.GetEnv("PUBLIC_BASE_URL", "http://localhost:4000"),
		), nil
	case "s3":
		cfg, err := LoadS3Config()
		if err != nil {
			return nil, err
		}
		return NewS3(cfg)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER: %s", driver)
	}
}

// LicenseKey builds the object key for a generated certificate image.
// Format: events/<code>/licenses/<timestamp>_<random>.png
func LicenseKey(eventCode string) string {
	return fmt.Sprintf("events/%s/licenses/%s_%s.png", eventCode, timestamp(), shortID())
}

// OriginalKey builds the object key for an uploaded source photo.
func OriginalKey(eventCode string) string {
	return fmt.Sprintf("events/%s/originals/%s_%s.jpg", eventCode, timestamp(), shortID())
}

func timestamp() string {
	return time.Now().Format("20060102_150405")
}

func shortID() string {
	return uuid.New().String()[:8]
}
