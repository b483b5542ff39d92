// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"blogd/internal/imaging"
	"blogd/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed image upload size (10 MB).
	maxUploadSize = 10 << 20

	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbPrefix marks the thumbnail stored beside each original.
	thumbPrefix = "thumb_"
)

// allowedImageTypes maps accepted MIME types (detected from content, not
// the client-supplied header) to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var (
	errImageTooLarge    = errors.New("image exceeds the upload size limit")
	errUnsupportedImage = errors.New("unsupported image type")
)

// Uploads stores featured images and their thumbnails on the configured
// backend. Only the generated filename is ever persisted against a post.
type Uploads struct {
	backend storage.Backend
}

// NewUploads creates an upload helper over the given storage backend.
func NewUploads(backend storage.Backend) *Uploads {
	return &Uploads{backend: backend}
}

// SaveImage validates and stores an uploaded image under a random
// filename, generating a thumbnail beside it. Returns the filename.
func (u *Uploads) SaveImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxUploadSize {
		return "", errImageTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxUploadSize {
		return "", errImageTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", errUnsupportedImage
	}

	name := uuid.NewString() + ext
	if err := u.backend.Save(ctx, name, contentType, data); err != nil {
		return "", err
	}

	// A failed thumbnail keeps the upload usable; the original is already
	// stored.
	if thumb, err := imaging.Thumbnail(data, thumbMaxWidth); err != nil {
		slog.Warn("thumbnail generation failed", "file", name, "error", err)
	} else if err := u.backend.Save(ctx, thumbPrefix+name, "image/jpeg", thumb); err != nil {
		slog.Warn("thumbnail store failed", "file", name, "error", err)
	}

	return name, nil
}

// Remove deletes a stored image and its thumbnail, best effort.
func (u *Uploads) Remove(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := u.backend.Delete(ctx, name); err != nil {
		slog.Warn("upload delete failed", "file", name, "error", err)
	}
	if err := u.backend.Delete(ctx, thumbPrefix+name); err != nil {
		slog.Warn("thumbnail delete failed", "file", name, "error", err)
	}
}
