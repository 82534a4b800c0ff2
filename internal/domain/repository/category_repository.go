package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
// Toda lectura está acotada al proveedor; GetByID/GetBySlug devuelven (nil, nil) si no existe
// o pertenece a otro proveedor.
//
// Conflictos detectados por el almacenamiento se reportan con los errores de dominio:
// domain.ErrSlugConflict (unique owner+slug), domain.ErrCycleDetected (revalidación al confirmar),
// domain.ErrNotFound (fila ausente) y domain.ErrHasDependents (borrado sin cascade con hijos nuevos).
type CategoryRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Category, error)
	GetByID(ctx context.Context, id, ownerID string) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug, ownerID string) (*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	// Delete elimina la categoría. Con cascade elimina el subárbol y desvincula productos.
	Delete(ctx context.Context, id, ownerID string, cascade bool) error
	CountProducts(ctx context.Context, categoryID string) (int, error)
	CountSubcategories(ctx context.Context, categoryID string) (int, error)
}
