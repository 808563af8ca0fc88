package dto

import "time"

// CategoryRequest entrada para crear/actualizar una categoría.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompanyRequest entrada para crear/actualizar una marca.
type CompanyRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// CompanyResponse salida de una marca.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UploadResponse URL pública del archivo subido.
type UploadResponse struct {
	URL string `json:"url"`
}
