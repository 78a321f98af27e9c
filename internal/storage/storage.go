// Package storage abstracts where product images live. The driver is
// picked by configuration; handlers only ever see the Driver interface.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/paulokalleby/api-vendas/internal/config"
)

type Driver interface {
	// Upload stores the file under path and returns the public URL.
	Upload(ctx context.Context, file io.Reader, path string) (string, error)

	// Delete removes a stored file. Deleting a missing file is not an
	// error.
	Delete(ctx context.Context, path string) error

	// PublicURL resolves a stored path to the URL clients fetch it from.
	PublicURL(path string) string
}

func NewDriver(cfg *config.StorageConfig) (Driver, error) {
	switch cfg.Driver {
	case "local", "":
		path := cfg.UploadsPath
		if path == "" {
			path = "./uploads"
		}
		return NewLocalDriver(path), nil
	case "s3":
		return NewS3Driver(cfg)
	case "r2":
		return NewR2Driver(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func contentType(path string) string {
	switch {
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".webp"):
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
