package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/templui/fliptrack/internal/capture"
	"github.com/templui/fliptrack/internal/imaging"
	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/storage"
)

// PhotoService persists staged attachments and their thumbnails.
type PhotoService struct {
	storage       storage.Storage
	thumbnailSize int
}

func NewPhotoService(storage storage.Storage) *PhotoService {
	return &PhotoService{
		storage:       storage,
		thumbnailSize: imaging.DefaultThumbnailSize,
	}
}

// Store uploads every attachment and returns the persisted photos in order.
// Note: attachments are expected to be compressed already (the capture pipeline does that)
func (s *PhotoService) Store(ctx context.Context, projectID int, attachments []capture.Attachment) ([]model.Photo, error) {
	photos := make([]model.Photo, 0, len(attachments))

	for _, a := range attachments {
		id := uuid.New().String()
		storagePath := path.Join("photos", fmt.Sprint(projectID), id+".jpg")

		err := s.storage.Save(ctx, storagePath, bytes.NewReader(a.Image.Data), a.Image.MimeType)
		if err != nil {
			s.Delete(ctx, photos)
			return nil, fmt.Errorf("failed to save photo: %w", err)
		}

		photo := model.Photo{
			ID:          id,
			URL:         s.storage.URL(storagePath),
			StoragePath: storagePath,
			Caption:     strings.TrimSpace(a.Caption),
			TakenAt:     a.TakenAt,
		}

		// Thumbnails are best effort, the full photo is what matters
		thumb, err := imaging.Thumbnail(a.Image, s.thumbnailSize)
		if err != nil {
			slog.Warn("failed to create thumbnail", "error", err, "photo_id", id)
		} else {
			err = s.storage.Save(ctx, thumbnailPath(storagePath), bytes.NewReader(thumb.Data), thumb.MimeType)
			if err != nil {
				slog.Warn("failed to save thumbnail", "error", err, "photo_id", id)
			} else {
				photo.ThumbnailURL = s.storage.URL(thumbnailPath(storagePath))
			}
		}

		photos = append(photos, photo)
	}

	return photos, nil
}

// Delete removes stored photos (best effort). Photos without a storage path
// (seeded, externally hosted) are skipped.
func (s *PhotoService) Delete(ctx context.Context, photos []model.Photo) {
	for _, p := range photos {
		if p.StoragePath == "" {
			continue
		}

		err := s.storage.Delete(ctx, p.StoragePath)
		if err != nil {
			slog.Warn("failed to delete photo from storage", "storage_path", p.StoragePath, "error", err)
		}
		if p.ThumbnailURL != "" {
			err = s.storage.Delete(ctx, thumbnailPath(p.StoragePath))
			if err != nil {
				slog.Warn("failed to delete thumbnail from storage", "storage_path", p.StoragePath, "error", err)
			}
		}
	}
}

// SignedURL returns a short-lived URL for a stored photo when the storage supports it.
func (s *PhotoService) SignedURL(p model.Photo) string {
	if p.StoragePath == "" {
		return p.URL
	}

	s3Storage, ok := s.storage.(*storage.S3Storage)
	if ok {
		url, err := s3Storage.PresignedURL(p.StoragePath, s3Storage.PresignExpiryPrivate())
		if err != nil {
			return s3Storage.PublicURL(p.StoragePath)
		}
		return url
	}

	return s.storage.URL(p.StoragePath)
}

func thumbnailPath(storagePath string) string {
	dir, file := path.Split(storagePath)
	return path.Join(dir, "thumbs", file)
}
