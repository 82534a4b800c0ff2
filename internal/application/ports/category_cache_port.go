package ports

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
)

// CategoryTreeCache puerto de salida para cachear el árbol de lectura de un proveedor.
// Es solo una optimización de lectura: las validaciones nunca leen de aquí.
// Un fallo del adaptador no debe romper la operación que lo invoca.
//
// Cada proveedor tiene una generación que avanza con cada invalidación. El árbol se
// guarda bajo la generación leída antes de consultar el almacenamiento, así una
// escritura confirmada en medio deja ese árbol fuera de lectura.
type CategoryTreeCache interface {
	// GetTree devuelve la generación vigente y, en un acierto, el árbol guardado en ella.
	// Sin entrada responde (nil, generación, false, nil).
	GetTree(ctx context.Context, ownerID string) (tree []dto.CategoryNodeResponse, generation int64, ok bool, err error)
	// SetTree guarda el árbol solo si generation sigue vigente. Devuelve si lo guardó.
	SetTree(ctx context.Context, ownerID string, generation int64, tree []dto.CategoryNodeResponse) (bool, error)
	// InvalidateTree avanza la generación del proveedor.
	InvalidateTree(ctx context.Context, ownerID string) error
}
