package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/snacks-api/internal/application/usecase"
	"github.com/jhoicas/snacks-api/internal/domain"
)

// UploadHandler subida de imágenes (multipart, campo "file").
type UploadHandler struct {
	uc *usecase.UploadUseCase
}

func NewUploadHandler(uc *usecase.UploadUseCase) *UploadHandler {
	return &UploadHandler{uc: uc}
}

// Upload godoc
// @Summary      Subir imagen de producto o marca
// @Tags         uploads
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "jpg, png, webp o gif (máx. 5 MB)"
// @Success      201   {object}  dto.UploadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/uploads [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("file", "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	out, err := h.uc.UploadImage(c.UserContext(), GetAuth(c), fh.Filename, fh.Size, f)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
