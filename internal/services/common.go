package services

import (
	"context"
	"errors"

	"recycle-backend/internal/apperror"

	"github.com/rs/zerolog/log"
)

// Page limits shared by every listing endpoint
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var errImageStoreMissing = errors.New("image storage is not configured")

// ImageFile is an uploaded image held in memory
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageStore hosts images and returns their public URLs
type ImageStore interface {
	Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// validatePage rejects a negative skip or a limit outside 1..MaxLimit
func validatePage(skip, limit int) error {
	if skip < 0 {
		return apperror.Invalid("skip must not be negative")
	}
	if limit < 1 || limit > MaxLimit {
		return apperror.Invalid("limit must be between 1 and %d", MaxLimit)
	}
	return nil
}

// uploadAll uploads every file before anything is written. If one upload fails
// the files already uploaded are removed and nothing is returned.
func uploadAll(ctx context.Context, store ImageStore, folder string, files []ImageFile) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := store.Upload(ctx, folder, f.Filename, f.ContentType, f.Data)
		if err != nil {
			deleteAll(ctx, store, urls)
			return nil, apperror.Upstream("upload image", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// deleteAll removes hosted images, logging failures
func deleteAll(ctx context.Context, store ImageStore, urls []string) {
	if store == nil {
		return
	}
	for _, url := range urls {
		if err := store.Delete(ctx, url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to delete image")
		}
	}
}
