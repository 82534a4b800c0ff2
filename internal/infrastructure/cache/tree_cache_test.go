package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRedis cliente sobre la DB 15. Se omite si no hay Redis disponible.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := Connect(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"), 15)
	if err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func sampleTree() []dto.CategoryNodeResponse {
	return []dto.CategoryNodeResponse{
		{
			CategoryResponse: dto.CategoryResponse{ID: "a", Name: "Ropa", Slug: "ropa", Active: true},
			Subcategorias: []dto.CategoryNodeResponse{
				{CategoryResponse: dto.CategoryResponse{ID: "b", ParentID: "a", Name: "Camisas", Slug: "camisas", Active: true}},
			},
		},
	}
}

// cleanupOwner borra la generación y los árboles de las primeras generaciones del proveedor.
func cleanupOwner(t *testing.T, client *redis.Client, owner string) {
	t.Cleanup(func() {
		keys := []string{generationKey(owner)}
		for g := int64(0); g < 5; g++ {
			keys = append(keys, treeKey(owner, g))
		}
		_ = client.Del(context.Background(), keys...).Err()
	})
}

func TestTreeCache_SetGetInvalidate(t *testing.T) {
	client := testRedis(t)
	c := NewTreeCache(client, time.Minute, zerolog.Nop())
	ctx := context.Background()
	owner := uuid.NewString()
	cleanupOwner(t, client, owner)

	_, gen, ok, err := c.GetTree(ctx, owner)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, gen)

	stored, err := c.SetTree(ctx, owner, gen, sampleTree())
	require.NoError(t, err)
	assert.True(t, stored)
	got, _, ok, err := c.GetTree(ctx, owner)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleTree(), got)

	ttl, err := client.TTL(ctx, treeKey(owner, gen)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.InvalidateTree(ctx, owner))
	_, next, ok, err := c.GetTree(ctx, owner)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, gen+1, next)

	exists, err := client.Exists(ctx, treeKey(owner, gen)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "el árbol de la generación anterior se borra")
}

// Una invalidación entre la lectura de la generación y SetTree descarta el árbol viejo.
func TestTreeCache_SetConGeneracionVencidaNoEscribe(t *testing.T) {
	client := testRedis(t)
	c := NewTreeCache(client, time.Minute, zerolog.Nop())
	ctx := context.Background()
	owner := uuid.NewString()
	cleanupOwner(t, client, owner)

	_, gen, _, err := c.GetTree(ctx, owner)
	require.NoError(t, err)

	require.NoError(t, c.InvalidateTree(ctx, owner))

	stored, err := c.SetTree(ctx, owner, gen, sampleTree())
	require.NoError(t, err)
	assert.False(t, stored)

	_, _, ok, err := c.GetTree(ctx, owner)
	require.NoError(t, err)
	assert.False(t, ok, "no debe servirse el árbol anterior a la escritura")
}

func TestTreeCache_EntradaCorruptaSeDescarta(t *testing.T) {
	client := testRedis(t)
	c := NewTreeCache(client, time.Minute, zerolog.Nop())
	ctx := context.Background()
	owner := uuid.NewString()
	cleanupOwner(t, client, owner)

	require.NoError(t, client.Set(ctx, treeKey(owner, 0), "{no-json", time.Minute).Err())
	_, gen, ok, err := c.GetTree(ctx, owner)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, gen)

	exists, err := client.Exists(ctx, treeKey(owner, 0)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestNewTreeCache_TTLPorDefecto(t *testing.T) {
	c := NewTreeCache(nil, 0, zerolog.Nop())
	assert.Equal(t, DefaultTreeTTL, c.ttl)
}

func TestTreeKeys(t *testing.T) {
	assert.Equal(t, "categories:tree:{abc}:gen", generationKey("abc"))
	assert.Equal(t, "categories:tree:{abc}:3", treeKey("abc", 3))
}
