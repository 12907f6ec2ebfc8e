package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/storage"
	"github.com/google/uuid"
)

const (
	MaxImagesPerUpload = 5
	MaxUploadSize      = 10 << 20
)

var (
	imageTypes    = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	documentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

	// Stored files are named after the detected type. The client's file
	// name never reaches the storage path.
	extensions = map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/gif":       ".gif",
		"image/webp":      ".webp",
		"application/pdf": ".pdf",
	}
)

// UploadFile is one file taken from a multipart request.
type UploadFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

type UploadService struct {
	storage storage.Storage
	maxSize int64
}

func NewUploadService(s storage.Storage) *UploadService {
	return &UploadService{storage: s, maxSize: MaxUploadSize}
}

// UploadImages stores listing photos and returns their public URLs in the
// order given.
func (s *UploadService) UploadImages(ctx context.Context, caller models.Session, files []UploadFile) ([]string, error) {
	if caller.Role != models.RoleLandlord {
		return nil, apperrors.Authorization("Only landlords can upload images")
	}
	if len(files) == 0 {
		return nil, apperrors.Validation("No images uploaded")
	}
	if len(files) > MaxImagesPerUpload {
		return nil, apperrors.Validation("You can upload at most %d images", MaxImagesPerUpload)
	}

	urls := make([]string, 0, len(files))
	saved := make([]string, 0, len(files))
	for _, f := range files {
		path, err := s.save(ctx, "images", f, imageTypes)
		if err != nil {
			s.discard(ctx, saved)
			return nil, err
		}
		saved = append(saved, path)
		urls = append(urls, s.storage.URL(path))
	}
	return urls, nil
}

// UploadDocument stores one ownership document for admin verification.
func (s *UploadService) UploadDocument(ctx context.Context, caller models.Session, f *UploadFile) (string, error) {
	if caller.Role != models.RoleLandlord {
		return "", apperrors.Authorization("Only landlords can upload documents")
	}
	if f == nil {
		return "", apperrors.Validation("No document uploaded")
	}
	path, err := s.save(ctx, "documents", *f, documentTypes)
	if err != nil {
		return "", err
	}
	return s.storage.URL(path), nil
}

func (s *UploadService) save(ctx context.Context, dir string, f UploadFile, allowed []string) (string, error) {
	if f.Size > s.maxSize {
		return "", apperrors.Validation("File %s exceeds the %d MB limit", f.Name, s.maxSize>>20)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f.Reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apperrors.Validation("Could not read file %s", f.Name)
	}
	head = head[:n]
	if n == 0 {
		return "", apperrors.Validation("File %s is empty", f.Name)
	}

	contentType := strings.SplitN(http.DetectContentType(head), ";", 2)[0]
	if !slices.Contains(allowed, contentType) {
		return "", apperrors.Validation("File type %s is not allowed", contentType)
	}

	path := fmt.Sprintf("%s/%s%s", dir, uuid.NewString(), extensions[contentType])
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), f.Reader), s.maxSize+1)
	if err := s.storage.Save(ctx, path, body, contentType); err != nil {
		return "", apperrors.Store(err, "Error uploading file")
	}

	logger.FromContext(ctx).Debug("file stored", "path", path, "content_type", contentType)
	return path, nil
}

// discard removes files already stored for a request that failed part way.
func (s *UploadService) discard(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.storage.Delete(ctx, p); err != nil {
			logger.FromContext(ctx).Warn("failed to remove partial upload", "path", p, "error", err)
		}
	}
}
