//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	esclient "github.com/billz-2/elasticsearch-dsl"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var (
	ctx context.Context

	// ES v9 (tier-gold) resources
	esV9Container *elasticsearch.ElasticsearchContainer
	esV9Addr      string

	// ES v8 (tier-silver) resources - for multi-cluster tests
	esV8Container *elasticsearch.ElasticsearchContainer
	esV8Addr      string

	// Redis resources
	redisContainer *rediscontainer.RedisContainer
	redisClient    *redis.Client

	// Routing service stub used by the resolver
	routing *routingService

	// Registry with both clusters
	registry *esclient.Registry

	// Resolver
	resolver *esclient.Resolver
)

// routingService answers POST /v1/tenant/es-route from an in-memory table.
type routingService struct {
	mu     sync.Mutex
	routes map[string]esclient.Route
	calls  int
	server *httptest.Server
}

func newRoutingService() *routingService {
	s := &routingService{routes: make(map[string]esclient.Route)}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TenantID string `json:"tenant_id"`
			Type     string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.calls++
		route, ok := s.routes[req.TenantID+"/"+req.Type]
		s.mu.Unlock()

		if !ok {
			http.Error(w, "no route", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(route)
	}))
	return s
}

func (s *routingService) set(tenantID, indexType string, route esclient.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[tenantID+"/"+indexType] = route
}

func (s *routingService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func runElasticsearch(image string) (*elasticsearch.ElasticsearchContainer, string) {
	container, err := elasticsearch.Run(ctx,
		image,
		elasticsearch.WithPassword("changeme"),
		testcontainers.WithEnv(map[string]string{
			"discovery.type":         "single-node",
			"xpack.security.enabled": "false",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("started").
				WithStartupTimeout(2*time.Minute).
				WithPollInterval(1*time.Second),
		),
	)
	if err != nil {
		panic(err)
	}

	addr, err := container.Endpoint(ctx, "http")
	if err != nil {
		panic(err)
	}
	return container, addr
}

func TestMain(m *testing.M) {
	ctx = context.Background()

	esV9Container, esV9Addr = runElasticsearch("docker.elastic.co/elasticsearch/elasticsearch:9.0.0")
	esV8Container, esV8Addr = runElasticsearch("docker.elastic.co/elasticsearch/elasticsearch:8.11.0")

	var err error
	redisContainer, err = rediscontainer.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second).
				WithPollInterval(500*time.Millisecond),
		),
	)
	if err != nil {
		panic(err)
	}

	redisURL, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		panic(err)
	}
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		panic(err)
	}
	redisClient = redis.NewClient(options)

	routing = newRoutingService()

	// Loaded through ParseConfig so the YAML surface is exercised too.
	cfg, err := esclient.ParseConfig([]byte(strings.NewReplacer(
		"$V9", esV9Addr,
		"$V8", esV8Addr,
	).Replace(`
default_cluster: tier-gold
clusters:
  tier-gold:
    version: 9
    addresses: ["$V9"]
    username: elastic
    password: changeme
    max_retries: 2
  tier-silver:
    version: 8
    addresses: ["$V8"]
    username: elastic
    password: changeme
`)))
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewDevelopment()
	registry, err = esclient.NewRegistryFromConfig(cfg,
		esclient.WithLogger(esclient.NewZapLogger(logger)),
		esclient.WithTenantFilter("company_id"),
	)
	if err != nil {
		panic(err)
	}

	resolver, err = esclient.NewResolver(esclient.ResolverConfig{
		Registry:   registry,
		Redis:      redisClient,
		RoutingURL: routing.server.URL,
		CacheTTL:   time.Minute,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()

	routing.server.Close()
	if redisClient != nil {
		_ = redisClient.FlushAll(ctx).Err()
		_ = redisClient.Close()
	}
	if redisContainer != nil {
		_ = redisContainer.Terminate(ctx)
	}
	if esV9Container != nil {
		_ = esV9Container.Terminate(ctx)
	}
	if esV8Container != nil {
		_ = esV8Container.Terminate(ctx)
	}
	_ = logger.Sync()

	os.Exit(code)
}

// product is the document stored by the e2e suites.
type product struct {
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	CompanyID string  `json:"company_id"`
}

// clientFor returns the typed client of a registered cluster.
func clientFor(t *testing.T, clusterName string) *esclient.Client {
	t.Helper()

	client, err := registry.Client(clusterName)
	if err != nil {
		t.Fatalf("failed to get typed client: %v", err)
	}
	return client
}

// createTestIndex creates indexName with the product mapping and drops it when the test ends.
func createTestIndex(t *testing.T, client *esclient.Client, indexName string) {
	t.Helper()

	exists, err := client.IndexExists(ctx, indexName)
	if err != nil {
		t.Fatalf("failed to check index existence: %v", err)
	}
	if !exists {
		err = client.CreateIndex(ctx, &esclient.CreateIndexRequest{
			Index: indexName,
			Body: strings.NewReader(`{
				"mappings": {
					"properties": {
						"title":      {"type": "text"},
						"price":      {"type": "float"},
						"company_id": {"type": "keyword"}
					}
				}
			}`),
		})
		if err != nil {
			t.Fatalf("failed to create index: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = client.DeleteIndex(ctx, indexName)
	})
}

// seedProducts bulk-indexes docs keyed by id and refreshes the index.
func seedProducts(t *testing.T, client *esclient.Client, indexName string, docs map[string]product) {
	t.Helper()

	ops := make([]esclient.BulkOperation, 0, len(docs))
	for id, doc := range docs {
		ops = append(ops, esclient.BulkOperation{ID: id, Document: doc})
	}

	resp, err := client.Bulk(ctx, &esclient.BulkRequest{
		Index:      indexName,
		Operations: ops,
		Refresh:    esclient.RefreshWaitFor,
	})
	if err != nil {
		t.Fatalf("bulk failed: %v", err)
	}
	if resp.Errors {
		t.Fatalf("bulk items failed: %+v", resp.Failed())
	}
}
