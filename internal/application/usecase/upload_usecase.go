package usecase

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// MaxUploadSize tamaño máximo de una imagen subida.
const MaxUploadSize = 5 << 20

var allowedImageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// FileStorage puerto de almacenamiento de archivos públicos.
type FileStorage interface {
	// Save guarda el contenido bajo name y devuelve su URL pública.
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// UploadUseCase subida de imágenes de productos y marcas (ADMIN).
type UploadUseCase struct {
	storage FileStorage
}

// NewUploadUseCase construye el caso de uso.
func NewUploadUseCase(storage FileStorage) *UploadUseCase {
	return &UploadUseCase{storage: storage}
}

// UploadImage valida extensión y tamaño y guarda el archivo con un nombre único.
func (uc *UploadUseCase) UploadImage(ctx context.Context, auth authz.Context, filename string, size int64, r io.Reader) (*dto.UploadResponse, error) {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedImageExt[ext]
	if !ok {
		return nil, domain.NewValidationError("file", "only jpg, png, webp and gif images are allowed")
	}
	if size <= 0 || size > MaxUploadSize {
		return nil, domain.NewValidationError("file", "image must be between 1 byte and 5 MB")
	}
	url, err := uc.storage.Save(ctx, uuid.New().String()+ext, contentType, io.LimitReader(r, MaxUploadSize))
	if err != nil {
		return nil, err
	}
	return &dto.UploadResponse{URL: url}, nil
}
