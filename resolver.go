package esclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Route is the placement of a tenant's index as reported by the routing service.
type Route struct {
	ClusterName string `json:"cluster_name"`
	ClusterID   int    `json:"cluster_id"`
	IndexName   string `json:"index_name"`
}

// errCacheMiss marks a route that is not cached.
var errCacheMiss = errors.New("cache miss")

// Resolver resolves cluster and index for a tenant using Redis cache and routing service.
type Resolver struct {
	registry    *Registry
	redis       *redis.Client
	routingURL  string
	cacheTTL    time.Duration
	cachePrefix string
	httpClient  *http.Client
	log         Logger
}

// ResolverConfig configures the resolver.
type ResolverConfig struct {
	Registry    *Registry     // Registry with pre-created clients
	Redis       *redis.Client // Redis client for caching
	RoutingURL  string        // Routing service URL (e.g., "http://routing-service:8080")
	CacheTTL    time.Duration // Cache TTL (default: 24h)
	CachePrefix string        // Cache key prefix (default: "es_settings_")
	HTTPClient  *http.Client  // HTTP client for routing calls (optional)
	Logger      Logger        // Optional debug logger
}

// NewResolver creates a new resolver with Redis caching.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.RoutingURL == "" {
		return nil, errors.New("routing service URL is required")
	}

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.CachePrefix == "" {
		cfg.CachePrefix = "es_settings_"
	}

	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout: 5 * time.Second,
		}
	}

	return &Resolver{
		registry:    cfg.Registry,
		redis:       cfg.Redis,
		routingURL:  strings.TrimRight(cfg.RoutingURL, "/"),
		cacheTTL:    cfg.CacheTTL,
		cachePrefix: cfg.CachePrefix,
		httpClient:  cfg.HTTPClient,
		log:         safeLogger(cfg.Logger),
	}, nil
}

// Resolve resolves cluster and index for tenant and index type.
// Returns typed client and index name.
func (r *Resolver) Resolve(ctx context.Context, tenantID, indexType string) (*Client, string, error) {
	route, err := r.ResolveRoute(ctx, tenantID, indexType)
	if err != nil {
		return nil, "", err
	}

	client, err := r.registry.Client(route.ClusterName)
	if err != nil {
		return nil, "", errors.Wrapf(err, "cluster %q of tenant %q", route.ClusterName, tenantID)
	}
	return client, route.IndexName, nil
}

// ResolveRoute resolves the route without creating client.
// Useful when you need just the cluster name and index.
func (r *Resolver) ResolveRoute(ctx context.Context, tenantID, indexType string) (*Route, error) {
	if tenantID == "" {
		return nil, errors.New("tenant ID is required")
	}
	if indexType == "" {
		return nil, errors.New("index type is required")
	}

	route, err := r.getFromCache(ctx, tenantID, indexType)
	if err == nil {
		return route, nil
	}
	if !errors.Is(err, errCacheMiss) {
		r.log.DebugWithCtx(ctx, "route cache read failed", "tenant_id", tenantID, "type", indexType, "error", err)
	}

	route, err = r.fetchRoute(ctx, tenantID, indexType)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch from routing service")
	}

	// The caller does not wait for the cache write.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.saveToCache(ctx, tenantID, indexType, route); err != nil {
			r.log.Debug("route cache write failed", "tenant_id", tenantID, "type", indexType, "error", err)
		}
	}()

	return route, nil
}

func (r *Resolver) cacheKey(tenantID, indexType string) string {
	return r.cachePrefix + tenantID + "_" + indexType
}

// getFromCache retrieves the route from Redis.
func (r *Resolver) getFromCache(ctx context.Context, tenantID, indexType string) (*Route, error) {
	val, err := r.redis.Get(ctx, r.cacheKey(tenantID, indexType)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errCacheMiss
		}
		return nil, errors.Wrap(err, "redis get failed")
	}

	var route Route
	if err := json.Unmarshal([]byte(val), &route); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal cached route")
	}

	return &route, nil
}

// saveToCache saves the route to Redis.
func (r *Resolver) saveToCache(ctx context.Context, tenantID, indexType string, route *Route) error {
	data, err := json.Marshal(route)
	if err != nil {
		return errors.Wrap(err, "failed to marshal route")
	}

	if err := r.redis.Set(ctx, r.cacheKey(tenantID, indexType), data, r.cacheTTL).Err(); err != nil {
		return errors.Wrap(err, "redis set failed")
	}

	return nil
}

// fetchRoute calls the routing service.
func (r *Resolver) fetchRoute(ctx context.Context, tenantID, indexType string) (*Route, error) {
	bodyReader, err := jsonBody(map[string]string{
		"tenant_id": tenantID,
		"type":      indexType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.routingURL+"/v1/tenant/es-route", bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}
	contentTypeJSON(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "HTTP request to routing service failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("routing service returned status %d: %s", resp.StatusCode, string(body))
	}

	var route Route
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		return nil, errors.Wrap(err, "failed to decode routing response")
	}
	if route.ClusterName == "" || route.IndexName == "" {
		return nil, errors.Errorf("routing service returned incomplete route for tenant %q", tenantID)
	}

	return &route, nil
}

// InvalidateCache removes the cached route for tenant and index type.
func (r *Resolver) InvalidateCache(ctx context.Context, tenantID, indexType string) error {
	return r.redis.Del(ctx, r.cacheKey(tenantID, indexType)).Err()
}

// InvalidateTenantCache removes all cached routes of a tenant.
func (r *Resolver) InvalidateTenantCache(ctx context.Context, tenantID string) error {
	pattern := r.cachePrefix + tenantID + "_*"

	iter := r.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrapf(err, "failed to delete key %s", iter.Val())
		}
	}

	return iter.Err()
}
