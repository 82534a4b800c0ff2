package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	treeKeyPrefix = "categories:tree:"

	// DefaultTreeTTL tiempo de vida del árbol cacheado si no se configura otro.
	DefaultTreeTTL = 5 * time.Minute
)

var _ ports.CategoryTreeCache = (*TreeCache)(nil)

var treeCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_tree_cache_requests_total",
	Help: "Lecturas del árbol de categorías en cache por resultado",
}, []string{"result"})

// setIfGeneration escribe el árbol solo si la generación del proveedor no cambió.
// KEYS[1] generación, KEYS[2] árbol; ARGV[1] generación esperada, ARGV[2] JSON, ARGV[3] TTL en ms.
var setIfGeneration = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current ~= tonumber(ARGV[1]) then
  return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Connect crea el cliente Redis y verifica la conexión con un ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// TreeCache guarda en Redis el árbol de categorías serializado por proveedor y generación.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewTreeCache ttl 0 usa DefaultTreeTTL.
func NewTreeCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *TreeCache {
	if ttl <= 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl, log: log}
}

// Las llaves de un proveedor comparten hash tag para caer en el mismo slot en cluster.
func generationKey(ownerID string) string {
	return treeKeyPrefix + "{" + ownerID + "}:gen"
}

func treeKey(ownerID string, generation int64) string {
	return treeKeyPrefix + "{" + ownerID + "}:" + strconv.FormatInt(generation, 10)
}

func (c *TreeCache) generation(ctx context.Context, ownerID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetTree lee la generación vigente y el árbol guardado bajo ella.
// Una entrada corrupta se borra y cuenta como fallo de cache.
func (c *TreeCache) GetTree(ctx context.Context, ownerID string) ([]dto.CategoryNodeResponse, int64, bool, error) {
	gen, err := c.generation(ctx, ownerID)
	if err != nil {
		treeCacheRequests.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("owner_id", ownerID).Msg("tree cache generation")
		return nil, 0, false, err
	}
	key := treeKey(ownerID, gen)
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		treeCacheRequests.WithLabelValues("miss").Inc()
		return nil, gen, false, nil
	}
	if err != nil {
		treeCacheRequests.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("owner_id", ownerID).Msg("tree cache get")
		return nil, 0, false, err
	}
	var tree []dto.CategoryNodeResponse
	if err := json.Unmarshal(raw, &tree); err != nil {
		treeCacheRequests.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("owner_id", ownerID).Msg("tree cache decode")
		_ = c.client.Del(ctx, key).Err()
		return nil, gen, false, nil
	}
	treeCacheRequests.WithLabelValues("hit").Inc()
	return tree, gen, true, nil
}

// SetTree guarda el árbol con el TTL configurado si generation sigue vigente.
func (c *TreeCache) SetTree(ctx context.Context, ownerID string, generation int64, tree []dto.CategoryNodeResponse) (bool, error) {
	raw, err := json.Marshal(tree)
	if err != nil {
		return false, fmt.Errorf("encode tree: %w", err)
	}
	keys := []string{generationKey(ownerID), treeKey(ownerID, generation)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys, generation, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.Warn().Err(err).Str("owner_id", ownerID).Msg("tree cache set")
		return false, err
	}
	if stored == 0 {
		c.log.Debug().Str("owner_id", ownerID).Int64("generation", generation).Msg("tree cache set skipped, generation changed")
	}
	return stored == 1, nil
}

// InvalidateTree avanza la generación y borra el árbol de la generación anterior.
func (c *TreeCache) InvalidateTree(ctx context.Context, ownerID string) error {
	gen, err := c.client.Incr(ctx, generationKey(ownerID)).Result()
	if err != nil {
		c.log.Warn().Err(err).Str("owner_id", ownerID).Msg("tree cache invalidate")
		return err
	}
	// La generación nueva ya deja el árbol anterior fuera de lectura; el borrado solo libera memoria.
	_ = c.client.Del(ctx, treeKey(ownerID, gen-1)).Err()
	c.log.Debug().Str("owner_id", ownerID).Int64("generation", gen).Msg("tree cache invalidated")
	return nil
}
