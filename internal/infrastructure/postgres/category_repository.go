package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `id::text, owner_id::text, parent_id::text, name, slug, description, image, active, sort_order, created_at, updated_at`

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL (usable con pool o tx).
// La unicidad (owner_id, slug) y el padre del mismo proveedor los garantiza el esquema; la ausencia
// de ciclos se revalida dentro de la tx bajo un lock por proveedor.
type CategoryRepo struct {
	db DB
	tx *TxRunner
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx.
func NewCategoryRepository(db DB) *CategoryRepo {
	return &CategoryRepo{db: db, tx: NewTxRunner(db)}
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	var parentID *string
	err := row.Scan(
		&c.ID, &c.OwnerID, &parentID, &c.Name, &c.Slug, &c.Description, &c.Image,
		&c.Active, &c.Order, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		c.ParentID = *parentID
	}
	return &c, nil
}

// ListByOwner lista todas las categorías del proveedor, ordenadas para mostrar.
func (r *CategoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories WHERE owner_id = $1 ORDER BY sort_order, name, id`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		if isInvalidText(err) {
			return []*entity.Category{}, nil
		}
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetByID obtiene una categoría del proveedor. (nil, nil) si no existe.
func (r *CategoryRepo) GetByID(ctx context.Context, id, ownerID string) (*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND owner_id = $2`
	c, err := scanCategory(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetBySlug obtiene una categoría del proveedor por slug. (nil, nil) si no existe.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug, ownerID string) (*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = $1 AND slug = $2`
	c, err := scanCategory(r.db.QueryRow(ctx, query, ownerID, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return c, nil
}

// Create persiste una nueva categoría.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	query := `
		INSERT INTO categories (id, owner_id, parent_id, name, slug, description, image, active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.OwnerID, nullIfEmpty(c.ParentID), c.Name, c.Slug, c.Description, c.Image,
		c.Active, c.Order, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert category", err)
	}
	return nil
}

// Update reemplaza los campos editables. Si hay padre, revalida en la misma tx que
// la categoría no esté entre sus ancestros (otra tx pudo mover nodos desde el snapshot).
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	return r.tx.RunForOwner(ctx, c.OwnerID, func(tx pgx.Tx) error {
		if c.ParentID != "" {
			cyclic, err := isAncestorOf(ctx, tx, c.ID, c.ParentID, c.OwnerID)
			if err != nil {
				return err
			}
			if cyclic {
				return domain.ErrCycleDetected
			}
		}
		query := `
			UPDATE categories SET parent_id = $3, name = $4, slug = $5, description = $6, image = $7,
				active = $8, sort_order = $9, updated_at = $10
			WHERE id = $1 AND owner_id = $2`
		cmd, err := tx.Exec(ctx, query,
			c.ID, c.OwnerID, nullIfEmpty(c.ParentID), c.Name, c.Slug, c.Description, c.Image,
			c.Active, c.Order, c.UpdatedAt,
		)
		if err != nil {
			if isInvalidText(err) {
				return domain.ErrNotFound
			}
			return mapWriteError("update category", err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Delete elimina la categoría. Sin cascade falla con ErrHasDependents si tiene hijos o productos;
// con cascade elimina el subárbol completo y deja sus productos sin categoría.
func (r *CategoryRepo) Delete(ctx context.Context, id, ownerID string, cascade bool) error {
	return r.tx.RunForOwner(ctx, ownerID, func(tx pgx.Tx) error {
		if !cascade {
			return deleteLeaf(ctx, tx, id, ownerID)
		}
		ids, err := subtreeIDs(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET category_id = NULL WHERE category_id = ANY($1::uuid[])`, ids); err != nil {
			return fmt.Errorf("detach products: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE owner_id = $1 AND id = ANY($2::uuid[])`, ownerID, ids); err != nil {
			return fmt.Errorf("delete category subtree: %w", err)
		}
		return nil
	})
}

// CountProducts productos que referencian la categoría.
func (r *CategoryRepo) CountProducts(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&n)
	if err != nil {
		if isInvalidText(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// CountSubcategories hijos directos de la categoría.
func (r *CategoryRepo) CountSubcategories(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, categoryID).Scan(&n)
	if err != nil {
		if isInvalidText(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count subcategories: %w", err)
	}
	return n, nil
}

func deleteLeaf(ctx context.Context, tx pgx.Tx, id, ownerID string) error {
	query := `
		DELETE FROM categories
		WHERE id = $1 AND owner_id = $2
		  AND NOT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1)
		  AND NOT EXISTS (SELECT 1 FROM products WHERE category_id = $1)`
	cmd, err := tx.Exec(ctx, query, id, ownerID)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return domain.ErrHasDependents
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND owner_id = $2)`, id, ownerID).Scan(&exists); err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if exists {
		return domain.ErrHasDependents
	}
	return domain.ErrNotFound
}

// isAncestorOf indica si categoryID aparece en la cadena de ancestros de parentID (incluido).
// UNION descarta filas repetidas, así que termina aunque ya existiera un ciclo.
func isAncestorOf(ctx context.Context, q Querier, categoryID, parentID, ownerID string) (bool, error) {
	query := `
		WITH RECURSIVE ancestors(id, parent_id) AS (
			SELECT id, parent_id FROM categories WHERE id = $1 AND owner_id = $2
			UNION
			SELECT c.id, c.parent_id FROM categories c JOIN ancestors a ON c.id = a.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM ancestors WHERE id = $3)`
	var found bool
	if err := q.QueryRow(ctx, query, parentID, ownerID, categoryID).Scan(&found); err != nil {
		if isInvalidText(err) {
			return false, nil
		}
		return false, fmt.Errorf("check ancestors: %w", err)
	}
	return found, nil
}

func subtreeIDs(ctx context.Context, q Querier, id, ownerID string) ([]string, error) {
	query := `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM categories WHERE id = $1 AND owner_id = $2
			UNION
			SELECT c.id FROM categories c JOIN subtree s ON c.parent_id = s.id
		)
		SELECT id::text FROM subtree`
	rows, err := q.Query(ctx, query, id, ownerID)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load subtree: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan subtree: %w", err)
	}
	return ids, nil
}

func mapWriteError(op string, err error) error {
	switch {
	case isSlugViolation(err):
		return domain.ErrSlugConflict
	case isForeignKeyViolation(err):
		return domain.ErrParentNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%s: registro duplicado: %w", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
