package entity

import "time"

// Category representa una categoría de productos de un proveedor (jerárquica).
// ParentID es una referencia débil: clave de búsqueda, nunca un puntero de propiedad.
type Category struct {
	ID          string
	OwnerID     string // proveedor (tenant) dueño de la categoría
	ParentID    string // vacío si es raíz
	Name        string
	Slug        string // único por proveedor
	Description string
	Image       string
	Active      bool
	Order       int // solo para ordenar hermanos
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRoot indica si la categoría no tiene padre.
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}

// CategoryNode es una categoría con sus subcategorías ya ensambladas.
type CategoryNode struct {
	Category
	Subcategorias []*CategoryNode
}

// PathItem elemento del breadcrumb (raíz -> nodo).
type PathItem struct {
	ID   string
	Name string
	Slug string
}

// CategoryDetail agrega los contadores derivados (nunca persistidos) de una categoría.
type CategoryDetail struct {
	Category
	ProductCount     int
	SubcategoryCount int
	Depth            int
	Path             []PathItem
}
