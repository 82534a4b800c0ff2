package dto

import "time"

// CreateCategoryRequest entrada para crear una categoría (raíz o hija).
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Image       string `json:"image" validate:"max=500"`
	ParentID    string `json:"parent_id"`
	Order       int    `json:"order"`
}

// UpdateCategoryRequest parche parcial. Campos nil (o ParentID sin Set) no se tocan.
// ParentID presente con null o "" mueve la categoría a la raíz.
type UpdateCategoryRequest struct {
	Name        *string        `json:"name" validate:"omitempty,max=120"`
	Slug        *string        `json:"slug"`
	Description *string        `json:"description" validate:"omitempty,max=2000"`
	Image       *string        `json:"image" validate:"omitempty,max=500"`
	ParentID    OptionalString `json:"parent_id,omitzero" swaggertype:"string"`
	Active      *bool          `json:"active"`
	Order       *int           `json:"order"`
}

// MoveCategoryRequest reubica una categoría; ParentID "" o null la deja como raíz.
type MoveCategoryRequest struct {
	ParentID string `json:"parent_id"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	ParentID    string    `json:"parent_id,omitempty"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Active      bool      `json:"active"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryNodeResponse categoría con sus subcategorías.
type CategoryNodeResponse struct {
	CategoryResponse
	Subcategorias []CategoryNodeResponse `json:"subcategorias"`
}

// PathItemResponse elemento del breadcrumb.
type PathItemResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryDetailResponse categoría con contadores derivados (calculados en cada lectura).
type CategoryDetailResponse struct {
	CategoryResponse
	ProductCount     int                `json:"product_count"`
	SubcategoryCount int                `json:"subcategory_count"`
	Depth            int                `json:"depth"`
	Path             []PathItemResponse `json:"path"`
}

// CategoryListResponse lista plana de categorías del proveedor.
type CategoryListResponse struct {
	Items []CategoryResponse `json:"items"`
	Total int                `json:"total"`
}

// DependentsDetails contadores que bloquean un borrado sin force.
type DependentsDetails struct {
	Products      int `json:"products"`
	Subcategories int `json:"subcategories"`
}
