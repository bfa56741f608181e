package authUtils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// EvidenceStorage accepts an uploaded image and returns a durable URL. The
// lifecycle engines only ever see the returned URL string.
type EvidenceStorage interface {
	Save(file *multipart.FileHeader) (string, error)
}

// LocalEvidenceStore writes uploads to a directory served statically under
// /uploads.
type LocalEvidenceStore struct {
	dir string
}

func NewLocalEvidenceStore(dir string) (*LocalEvidenceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalEvidenceStore{dir: dir}, nil
}

func (s *LocalEvidenceStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
