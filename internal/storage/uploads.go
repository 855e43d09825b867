// Package storage содержит временное хранилище загруженных изображений.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const fallbackFilename = "upload"

// UploadStorage сохраняет загрузки в отдельный каталог на каждый запрос.
// Одинаковые имена файлов в параллельных запросах не пересекаются.
type UploadStorage struct {
	baseDir string
}

// StoredUpload описывает сохраненный файл одного запроса
type StoredUpload struct {
	ID   string // Уникальный идентификатор загрузки
	Path string // Полный путь к файлу
	Size int64  // Размер в байтах

	dir string
}

// NewUploadStorage создает хранилище и базовый каталог, если его нет.
func NewUploadStorage(baseDir string) (*UploadStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &UploadStorage{baseDir: baseDir}, nil
}

// Save записывает содержимое r в <baseDir>/<uuid>/<имя файла>.
// Из исходного имени берется только базовая часть.
func (s *UploadStorage) Save(filename string, r io.Reader) (*StoredUpload, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.baseDir, id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create request dir: %w", err)
	}

	path := filepath.Join(dir, SanitizeFilename(filename))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	return &StoredUpload{ID: id, Path: path, Size: n, dir: dir}, nil
}

// Remove удаляет каталог загрузки вместе с файлом.
func (u *StoredUpload) Remove() error {
	if u == nil || u.dir == "" {
		return nil
	}
	return os.RemoveAll(u.dir)
}

// SanitizeFilename оставляет от имени только базовую часть без разделителей пути.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	switch name {
	case "", ".", "..", "/":
		return fallbackFilename
	}
	return name
}
