package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"car-rental-service/internal/storage"
)

const defaultContentType = "application/octet-stream"

// UploadService forwards uploaded files to the object store.
type UploadService struct {
	store   storage.ObjectStore
	newName func() string
}

func NewUploadService(store storage.ObjectStore) *UploadService {
	return &UploadService{store: store, newName: uuid.NewString}
}

// Upload stores files one after another and returns their URLs in input order. On the
// first failure it returns the URLs stored so far together with the error.
func (s *UploadService) Upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.put(ctx, fh)
		if err != nil {
			return urls, fmt.Errorf("UploadService.Upload %q: %w", fh.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *UploadService) put(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return s.store.Put(ctx, s.objectName(fh.Filename), contentType, f, fh.Size)
}

// objectName keeps the original extension and replaces the rest with a random id.
func (s *UploadService) objectName(original string) string {
	return s.newName() + strings.ToLower(filepath.Ext(original))
}
