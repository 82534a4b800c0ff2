package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool abre la base de pruebas y aplica migraciones. Se omite si no hay PostgreSQL.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido; se omite la prueba de integración")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("no se pudo abrir la DB: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("DB no disponible: %v", err)
	}
	require.NoError(t, MigrateUp(context.Background(), pool, zerolog.Nop()))
	t.Cleanup(pool.Close)
	return pool
}

func newOwner(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	owner := uuid.NewString()
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM products WHERE owner_id = $1`, owner)
		_, _ = pool.Exec(ctx, `UPDATE categories SET parent_id = NULL WHERE owner_id = $1`, owner)
		_, _ = pool.Exec(ctx, `DELETE FROM categories WHERE owner_id = $1`, owner)
	})
	return owner
}

func newCategory(owner, parentID, name, slug string) *entity.Category {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entity.Category{
		ID: uuid.NewString(), OwnerID: owner, ParentID: parentID,
		Name: name, Slug: slug, Active: true, CreatedAt: now, UpdatedAt: now,
	}
}

func addProduct(t *testing.T, pool *pgxpool.Pool, owner, categoryID string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, owner_id, name, category_id) VALUES ($1, $2, 'producto', $3)`, id, owner, categoryID)
	require.NoError(t, err)
	return id
}

func TestCategoryRepo_CreateGetList(t *testing.T) {
	pool := testPool(t)
	repo := NewCategoryRepository(pool)
	ctx := context.Background()
	owner := newOwner(t, pool)

	root := newCategory(owner, "", "Ropa", "ropa")
	require.NoError(t, repo.Create(ctx, root))
	child := newCategory(owner, root.ID, "Camisas", "camisas")
	require.NoError(t, repo.Create(ctx, child))

	got, err := repo.GetByID(ctx, child.ID, owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, root.ID, got.ParentID)
	assert.Equal(t, "camisas", got.Slug)

	bySlug, err := repo.GetBySlug(ctx, "ropa", owner)
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.True(t, bySlug.IsRoot())

	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Otro proveedor no ve las categorías.
	other, err := repo.GetByID(ctx, child.ID, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, other)

	invalid, err := repo.GetByID(ctx, "no-es-uuid", owner)
	require.NoError(t, err)
	assert.Nil(t, invalid)
}

func TestCategoryRepo_SlugDuplicado(t *testing.T) {
	pool := testPool(t)
	repo := NewCategoryRepository(pool)
	ctx := context.Background()
	owner := newOwner(t, pool)

	require.NoError(t, repo.Create(ctx, newCategory(owner, "", "Ropa", "ropa")))
	err := repo.Create(ctx, newCategory(owner, "", "Ropa", "ropa"))
	assert.ErrorIs(t, err, domain.ErrSlugConflict)

	// El mismo slug en otro proveedor es válido.
	otherOwner := newOwner(t, pool)
	assert.NoError(t, repo.Create(ctx, newCategory(otherOwner, "", "Ropa", "ropa")))
}

func TestCategoryRepo_PadreDeOtroProveedor(t *testing.T) {
	pool := testPool(t)
	repo := NewCategoryRepository(pool)
	ctx := context.Background()
	owner := newOwner(t, pool)
	otherOwner := newOwner(t, pool)

	foreign := newCategory(otherOwner, "", "Ajena", "ajena")
	require.NoError(t, repo.Create(ctx, foreign))

	err := repo.Create(ctx, newCategory(owner, foreign.ID, "Hija", "hija"))
	assert.ErrorIs(t, err, domain.ErrParentNotFound)
}

func TestCategoryRepo_UpdateRechazaCiclo(t *testing.T) {
	pool := testPool(t)
	repo := NewCategoryRepository(pool)
	ctx := context.Background()
	owner := newOwner(t, pool)

	a := newCategory(owner, "", "A", "a")
	require.NoError(t, repo.Create(ctx, a))
	b := newCategory(owner, a.ID, "B", "b")
	require.NoError(t, repo.Create(ctx, b))
	c := newCategory(owner, b.ID, "C", "c")
	require.NoError(t, repo.Create(ctx, c))

	a.ParentID = c.ID
	err := repo.Update(ctx, a)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	// Mover C a raíz sí es válido.
	c.ParentID = ""
	c.Name = "C raíz"
	require.NoError(t, repo.Update(ctx, c))
	got, err := repo.GetByID(ctx, c.ID, owner)
	require.NoError(t, err)
	assert.True(t, got.IsRoot())
	assert.Equal(t, "C raíz", got.Name)
}

func TestCategoryRepo_UpdateInexistente(t *testing.T) {
	pool := testPool(t)
	repo := NewCategoryRepository(pool)
	owner := newOwner(t, pool)

	err := repo.Update(context.Background(), newCategory(owner, "", "X", "x"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryRepo_DeleteConDependientes(t *testing.T) {
	pool := testPool(t)
	repo := NewCategoryRepository(pool)
	ctx := context.Background()
	owner := newOwner(t, pool)

	root := newCategory(owner, "", "Ropa", "ropa")
	require.NoError(t, repo.Create(ctx, root))
	child := newCategory(owner, root.ID, "Camisas", "camisas")
	require.NoError(t, repo.Create(ctx, child))
	addProduct(t, pool, owner, child.ID)

	n, err := repo.CountSubcategories(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = repo.CountProducts(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, repo.Delete(ctx, root.ID, owner, false), domain.ErrHasDependents)
	assert.ErrorIs(t, repo.Delete(ctx, child.ID, owner, false), domain.ErrHasDependents)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.NewString(), owner, false), domain.ErrNotFound)
}

func TestCategoryRepo_DeleteCascade(t *testing.T) {
	pool := testPool(t)
	repo := NewCategoryRepository(pool)
	ctx := context.Background()
	owner := newOwner(t, pool)

	root := newCategory(owner, "", "Ropa", "ropa")
	require.NoError(t, repo.Create(ctx, root))
	child := newCategory(owner, root.ID, "Camisas", "camisas")
	require.NoError(t, repo.Create(ctx, child))
	grandchild := newCategory(owner, child.ID, "Manga larga", "manga-larga")
	require.NoError(t, repo.Create(ctx, grandchild))
	productID := addProduct(t, pool, owner, grandchild.ID)

	require.NoError(t, repo.Delete(ctx, root.ID, owner, true))

	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	var categoryID *string
	require.NoError(t, pool.QueryRow(ctx, `SELECT category_id::text FROM products WHERE id = $1`, productID).Scan(&categoryID))
	assert.Nil(t, categoryID)

	assert.ErrorIs(t, repo.Delete(ctx, root.ID, owner, true), domain.ErrNotFound)
}

func TestCategoryRepo_DeleteHoja(t *testing.T) {
	pool := testPool(t)
	repo := NewCategoryRepository(pool)
	ctx := context.Background()
	owner := newOwner(t, pool)

	leaf := newCategory(owner, "", "Hoja", "hoja")
	require.NoError(t, repo.Create(ctx, leaf))
	require.NoError(t, repo.Delete(ctx, leaf.ID, owner, false))

	got, err := repo.GetByID(ctx, leaf.ID, owner)
	require.NoError(t, err)
	assert.Nil(t, got)
}
