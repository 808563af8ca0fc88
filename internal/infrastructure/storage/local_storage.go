// Package storage guarda las imágenes subidas en disco y las publica bajo una URL base.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jhoicas/snacks-api/internal/application/usecase"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/pkg/config"
)

var _ usecase.FileStorage = (*LocalStorage)(nil)

// LocalStorage escribe en Dir; el router sirve Dir en BaseURL.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage crea el directorio si no existe.
func NewLocalStorage(cfg config.UploadConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", cfg.Dir, err)
	}
	return &LocalStorage{dir: cfg.Dir, baseURL: strings.TrimRight(cfg.BaseURL, "/")}, nil
}

// Dir directorio raíz.
func (s *LocalStorage) Dir() string { return s.dir }

// Save escribe a un temporal y renombra; un archivo a medio escribir nunca queda publicado.
func (s *LocalStorage) Save(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", domain.NewValidationError("file", "invalid file name")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: temporal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: escribir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: cerrar: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("storage: publicar: %w", err)
	}
	return path.Join(s.baseURL, name), nil
}
