package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// DefaultSlugRetries intentos de asignación de slug ante una carrera con otra escritura.
const DefaultSlugRetries = 3

const (
	invalidateAttempts = 3
	invalidateTimeout  = 2 * time.Second
)

// CategoryUseCase orquesta la jerarquía de categorías de un proveedor.
// Cada operación valida contra un snapshot tomado al inicio; el almacenamiento resuelve
// las carreras (slug único por proveedor, revalidación de ciclos al confirmar).
// ownerID debe venir ya autorizado por la capa de transporte.
type CategoryUseCase struct {
	repo        repository.CategoryRepository
	slugs       *catalog.SlugAllocator
	cache       ports.CategoryTreeCache
	slugRetries int
	now         func() time.Time
}

// CategoryOption configura opciones del caso de uso.
type CategoryOption func(*CategoryUseCase)

// WithTreeCache habilita la caché de lectura del árbol.
func WithTreeCache(cache ports.CategoryTreeCache) CategoryOption {
	return func(uc *CategoryUseCase) { uc.cache = cache }
}

// WithSlugRetries cambia el número de intentos ante conflictos de slug (mínimo 1).
func WithSlugRetries(n int) CategoryOption {
	return func(uc *CategoryUseCase) {
		if n > 0 {
			uc.slugRetries = n
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) CategoryOption {
	return func(uc *CategoryUseCase) { uc.now = now }
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, opts ...CategoryOption) *CategoryUseCase {
	uc := &CategoryUseCase{
		repo:        repo,
		slugs:       catalog.NewSlugAllocator(),
		slugRetries: DefaultSlugRetries,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

// List lista las categorías del proveedor tal como las entrega el almacenamiento.
func (uc *CategoryUseCase) List(ctx context.Context, ownerID string) (*dto.CategoryListResponse, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	items := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCategoryResponse(c))
	}
	return &dto.CategoryListResponse{Items: items, Total: len(items)}, nil
}

// Tree devuelve el bosque del proveedor. Usa la caché de lectura si está configurada.
func (uc *CategoryUseCase) Tree(ctx context.Context, ownerID string) ([]dto.CategoryNodeResponse, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	// La generación se lee antes del snapshot: si una escritura la avanza en medio,
	// SetTree no guarda este árbol.
	var generation int64
	cacheable := false
	if uc.cache != nil {
		tree, gen, ok, err := uc.cache.GetTree(ctx, ownerID)
		if err == nil && ok {
			return tree, nil
		}
		generation, cacheable = gen, err == nil
	}
	list, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("category tree: %w", err)
	}
	tree := toNodeResponses(catalog.BuildForest(list))
	if cacheable {
		_, _ = uc.cache.SetTree(ctx, ownerID, generation, tree)
	}
	return tree, nil
}

// GetByID obtiene una categoría del proveedor. ErrNotFound si no existe o es de otro proveedor.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id, ownerID string) (*dto.CategoryResponse, error) {
	c, err := uc.load(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// GetBySlug obtiene una categoría del proveedor por su slug.
func (uc *CategoryUseCase) GetBySlug(ctx context.Context, slug, ownerID string) (*dto.CategoryResponse, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, &domain.ValidationError{Field: "slug", Reason: "es requerido"}
	}
	c, err := uc.repo.GetBySlug(ctx, slug, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	if c == nil || c.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(c), nil
}

// GetPath devuelve el breadcrumb raíz -> categoría.
func (uc *CategoryUseCase) GetPath(ctx context.Context, id, ownerID string) ([]dto.PathItemResponse, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("category path: %w", err)
	}
	path := catalog.GetPath(id, list)
	if len(path) == 0 {
		return nil, domain.ErrNotFound
	}
	return toPathResponse(path), nil
}

// GetDetail devuelve la categoría con sus contadores derivados, recalculados en cada llamada.
func (uc *CategoryUseCase) GetDetail(ctx context.Context, id, ownerID string) (*dto.CategoryDetailResponse, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("category detail: %w", err)
	}
	var target *entity.Category
	for _, c := range list {
		if c.ID == id {
			target = c
			break
		}
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}
	products, err := uc.repo.CountProducts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	subcategories, err := uc.repo.CountSubcategories(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count subcategories: %w", err)
	}
	return &dto.CategoryDetailResponse{
		CategoryResponse: *toCategoryResponse(target),
		ProductCount:     products,
		SubcategoryCount: subcategories,
		Depth:            catalog.GetDepth(id, list),
		Path:             toPathResponse(catalog.GetPath(id, list)),
	}, nil
}

// Descendants IDs de todas las subcategorías (directas e indirectas), en preorden.
func (uc *CategoryUseCase) Descendants(ctx context.Context, id, ownerID string) ([]string, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("category descendants: %w", err)
	}
	if catalog.GetDepth(id, list) < 0 {
		return nil, domain.ErrNotFound
	}
	return catalog.GetDescendantIDs(id, list), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Escrituras
// ──────────────────────────────────────────────────────────────────────────────

// Create crea una categoría raíz o hija. El slug se deriva del nombre y se reintenta
// si otra escritura concurrente ganó la carrera por el mismo slug.
func (uc *CategoryUseCase) Create(ctx context.Context, ownerID string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.ParentID = strings.TrimSpace(in.ParentID)
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.ParentID != "" {
		if err := uc.requireParent(ctx, in.ParentID, ownerID); err != nil {
			return nil, err
		}
	}

	for attempt := 0; attempt < uc.slugRetries; attempt++ {
		snapshot, err := uc.repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		now := uc.now()
		category := &entity.Category{
			ID:          uuid.New().String(),
			OwnerID:     ownerID,
			ParentID:    in.ParentID,
			Name:        in.Name,
			Slug:        uc.slugs.Allocate(in.Name, ownerID, "", snapshot),
			Description: in.Description,
			Image:       in.Image,
			Active:      true,
			Order:       in.Order,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err = uc.repo.Create(ctx, category)
		if errors.Is(err, domain.ErrSlugConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		uc.invalidate(ctx, ownerID)
		return toCategoryResponse(category), nil
	}
	return nil, domain.ErrSlugConflict
}

// Update aplica un parche parcial. Si cambia el nombre sin slug explícito, recalcula el slug;
// si trae parent_id, valida el padre y que no se forme un ciclo.
func (uc *CategoryUseCase) Update(ctx context.Context, id, ownerID string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		in.Name = &name
	}
	if in.ParentID.Set {
		in.ParentID.Value = strings.TrimSpace(in.ParentID.Value)
	}
	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		if !catalog.IsValidSlug(slug) {
			return nil, &domain.ValidationError{Field: "slug", Reason: "debe contener solo a-z, 0-9 y guiones simples"}
		}
		in.Slug = &slug
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	existing, err := uc.load(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	updated := *existing
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.Image != nil {
		updated.Image = *in.Image
	}
	if in.Active != nil {
		updated.Active = *in.Active
	}
	if in.Order != nil {
		updated.Order = *in.Order
	}
	if in.ParentID.Set {
		if err := uc.checkParent(ctx, id, in.ParentID.Value, ownerID); err != nil {
			return nil, err
		}
		updated.ParentID = in.ParentID.Value
	}

	nameChanged := in.Name != nil && *in.Name != existing.Name
	if in.Name != nil {
		updated.Name = *in.Name
	}

	if in.Slug != nil {
		if *in.Slug != existing.Slug {
			other, err := uc.repo.GetBySlug(ctx, *in.Slug, ownerID)
			if err != nil {
				return nil, fmt.Errorf("update category: %w", err)
			}
			if other != nil && other.ID != id {
				return nil, domain.ErrSlugConflict
			}
		}
		updated.Slug = *in.Slug
		return uc.persist(ctx, &updated)
	}
	if !nameChanged {
		return uc.persist(ctx, &updated)
	}

	for attempt := 0; attempt < uc.slugRetries; attempt++ {
		snapshot, err := uc.repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("update category: %w", err)
		}
		candidate := updated
		candidate.Slug = uc.slugs.Allocate(candidate.Name, ownerID, id, snapshot)
		out, err := uc.persist(ctx, &candidate)
		if errors.Is(err, domain.ErrSlugConflict) {
			continue
		}
		return out, err
	}
	return nil, domain.ErrSlugConflict
}

// Move reubica la categoría bajo newParentID ("" = raíz). Mismas validaciones que Update.
func (uc *CategoryUseCase) Move(ctx context.Context, id, ownerID, newParentID string) (*dto.CategoryResponse, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	newParentID = strings.TrimSpace(newParentID)
	existing, err := uc.load(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkParent(ctx, id, newParentID, ownerID); err != nil {
		return nil, err
	}
	updated := *existing
	updated.ParentID = newParentID
	return uc.persist(ctx, &updated)
}

// Delete elimina la categoría. Con subcategorías o productos y sin force falla con
// *domain.HasDependentsError; con force elimina el subárbol y desvincula los productos.
func (uc *CategoryUseCase) Delete(ctx context.Context, id, ownerID string, force bool) error {
	if _, err := uc.load(ctx, id, ownerID); err != nil {
		return err
	}
	dependents, err := uc.countDependents(ctx, id)
	if err != nil {
		return err
	}
	if (dependents.Products > 0 || dependents.Subcategories > 0) && !force {
		return dependents
	}
	err = uc.repo.Delete(ctx, id, ownerID, force)
	if errors.Is(err, domain.ErrHasDependents) {
		// apareció un dependiente entre el conteo y el borrado
		if fresh, cerr := uc.countDependents(ctx, id); cerr == nil {
			return fresh
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	uc.invalidate(ctx, ownerID)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func (uc *CategoryUseCase) load(ctx context.Context, id, ownerID string) (*entity.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Field: "id", Reason: "es requerido"}
	}
	c, err := uc.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c == nil || c.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (uc *CategoryUseCase) requireParent(ctx context.Context, parentID, ownerID string) error {
	parent, err := uc.repo.GetByID(ctx, parentID, ownerID)
	if err != nil {
		return fmt.Errorf("get parent category: %w", err)
	}
	if parent == nil || parent.OwnerID != ownerID {
		return domain.ErrParentNotFound
	}
	return nil
}

// checkParent valida que newParentID exista en el proveedor y que colgar id de él no forme un ciclo.
func (uc *CategoryUseCase) checkParent(ctx context.Context, id, newParentID, ownerID string) error {
	if newParentID == "" {
		return nil
	}
	if newParentID == id {
		return domain.ErrCycleDetected
	}
	if err := uc.requireParent(ctx, newParentID, ownerID); err != nil {
		return err
	}
	snapshot, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load category snapshot: %w", err)
	}
	if catalog.WouldCreateCycle(id, newParentID, snapshot) {
		return domain.ErrCycleDetected
	}
	return nil
}

func (uc *CategoryUseCase) persist(ctx context.Context, c *entity.Category) (*dto.CategoryResponse, error) {
	c.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	uc.invalidate(ctx, c.OwnerID)
	return toCategoryResponse(c), nil
}

func (uc *CategoryUseCase) countDependents(ctx context.Context, id string) (*domain.HasDependentsError, error) {
	products, err := uc.repo.CountProducts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	subcategories, err := uc.repo.CountSubcategories(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count subcategories: %w", err)
	}
	return &domain.HasDependentsError{Products: products, Subcategories: subcategories}, nil
}

// invalidate avanza la generación del árbol tras una escritura confirmada.
// No depende de la cancelación del request: la escritura ya ocurrió.
// El adaptador registra cada fallo.
func (uc *CategoryUseCase) invalidate(ctx context.Context, ownerID string) {
	if uc.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	for attempt := 0; attempt < invalidateAttempts; attempt++ {
		if err := uc.cache.InvalidateTree(ctx, ownerID); err == nil {
			return
		}
	}
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return &domain.ValidationError{Field: "owner_id", Reason: "es requerido"}
	}
	return nil
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		ParentID:    c.ParentID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       c.Image,
		Active:      c.Active,
		Order:       c.Order,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toNodeResponses(nodes []*entity.CategoryNode) []dto.CategoryNodeResponse {
	out := make([]dto.CategoryNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, dto.CategoryNodeResponse{
			CategoryResponse: *toCategoryResponse(&n.Category),
			Subcategorias:    toNodeResponses(n.Subcategorias),
		})
	}
	return out
}

func toPathResponse(path []entity.PathItem) []dto.PathItemResponse {
	out := make([]dto.PathItemResponse, 0, len(path))
	for _, p := range path {
		out = append(out, dto.PathItemResponse{ID: p.ID, Name: p.Name, Slug: p.Slug})
	}
	return out
}
