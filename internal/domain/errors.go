package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrParentNotFound = errors.New("categoría padre no encontrada")
	ErrCycleDetected  = errors.New("la jerarquía resultante tendría un ciclo")
	ErrSlugConflict   = errors.New("el slug ya está en uso")
	ErrHasDependents  = errors.New("la categoría tiene dependientes")
)

// HasDependentsError bloquea un borrado sin force; lleva los contadores para que el cliente pida confirmación.
type HasDependentsError struct {
	Products      int
	Subcategories int
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("%s: %d subcategorías, %d productos", ErrHasDependents.Error(), e.Subcategories, e.Products)
}

// Is permite errors.Is(err, ErrHasDependents).
func (e *HasDependentsError) Is(target error) bool {
	return target == ErrHasDependents
}

// ValidationError entrada malformada, detectada antes de tocar el almacenamiento.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
