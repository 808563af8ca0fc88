package entity

import "time"

// Company representa una marca/fabricante de los productos del catálogo.
type Company struct {
	ID        string
	Name      string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
