package esclient

import (
	"net/url"
	"sort"

	elasticV8 "github.com/elastic/go-elasticsearch/v8"
	elasticV9 "github.com/elastic/go-elasticsearch/v9"
	"github.com/pkg/errors"
)

// Entry represents a registered Elasticsearch cluster with pre-created client.
type Entry struct {
	Name    string   // Cluster name
	Version int      // Elasticsearch version (8 or 9)
	BaseURL string   // Base URL for the cluster
	ES      ESClient // Pre-created ES client
}

// Registry manages multiple Elasticsearch clusters.
// All clients are created once during initialization.
type Registry struct {
	defaultName string
	byName      map[string]Entry
	clientOpts  []Option
}

// NewRegistry creates a new empty registry.
// opts are applied to every typed client returned by Client.
func NewRegistry(defaultName string, opts ...Option) *Registry {
	if defaultName == "" {
		defaultName = "default"
	}
	return &Registry{
		defaultName: defaultName,
		byName:      make(map[string]Entry),
		clientOpts:  opts,
	}
}

// NewRegistryFromConfig creates registry from configuration.
// All ES clients are created during initialization (one-time setup).
func NewRegistryFromConfig(cfg *Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	reg := NewRegistry(cfg.DefaultCluster, opts...)

	for name, clusterCfg := range cfg.Clusters {
		entry, err := newEntry(name, clusterCfg)
		if err != nil {
			return nil, err
		}
		reg.byName[name] = entry
	}

	return reg, nil
}

func newEntry(name string, cfg ClusterConfig) (Entry, error) {
	// The first address is the base URL of typed requests; the transport
	// still balances over all addresses.
	baseURL := cfg.Addresses[0]
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Entry{}, ErrInvalidBaseURL(name, baseURL)
	}

	var client ESClient

	switch cfg.Version {
	case 9:
		cl, err := elasticV9.NewClient(elasticV9.Config{
			Addresses:           cfg.Addresses,
			Username:            cfg.Username,
			Password:            cfg.Password,
			APIKey:              cfg.APIKey,
			MaxRetries:          cfg.MaxRetries,
			RetryOnStatus:       cfg.RetryOnStatus,
			DisableRetry:        cfg.DisableRetry,
			CompressRequestBody: cfg.CompressRequestBody,
		})
		if err != nil {
			return Entry{}, errors.Wrapf(err, "failed to create ES v9 client for %q", name)
		}
		client = NewESClientV9(cl, u)

	case 8:
		cl, err := elasticV8.NewClient(elasticV8.Config{
			Addresses:           cfg.Addresses,
			Username:            cfg.Username,
			Password:            cfg.Password,
			APIKey:              cfg.APIKey,
			MaxRetries:          cfg.MaxRetries,
			RetryOnStatus:       cfg.RetryOnStatus,
			DisableRetry:        cfg.DisableRetry,
			CompressRequestBody: cfg.CompressRequestBody,
		})
		if err != nil {
			return Entry{}, errors.Wrapf(err, "failed to create ES v8 client for %q", name)
		}
		client = NewESClientV8(cl, u)

	default:
		// This should never happen after Validate()
		return Entry{}, ErrInvalidESVersion(name, cfg.Version)
	}

	return Entry{
		Name:    name,
		Version: cfg.Version,
		BaseURL: baseURL,
		ES:      client,
	}, nil
}

// Register adds or replaces a cluster entry.
func (r *Registry) Register(entry Entry) error {
	if entry.Name == "" {
		return ErrEmptyClusterName
	}
	if _, err := parseBaseURL(entry.BaseURL); err != nil {
		return ErrInvalidBaseURL(entry.Name, entry.BaseURL)
	}
	if entry.ES == nil {
		return errors.Errorf("cluster %q has no ES client", entry.Name)
	}
	r.byName[entry.Name] = entry
	return nil
}

// GetClient returns pre-created ES client by cluster name.
// Returns error if cluster not found.
func (r *Registry) GetClient(clusterName string) (ESClient, error) {
	entry, err := r.GetEntry(clusterName)
	if err != nil {
		return nil, err
	}
	return entry.ES, nil
}

// GetEntry returns full entry (client + metadata) by cluster name.
func (r *Registry) GetEntry(clusterName string) (Entry, error) {
	if clusterName == "" {
		clusterName = r.defaultName
	}

	entry, ok := r.byName[clusterName]
	if !ok {
		return Entry{}, ErrClusterNotFound(clusterName)
	}

	return entry, nil
}

// Client returns a typed client for the cluster. Empty name selects the default cluster.
func (r *Registry) Client(clusterName string) (*Client, error) {
	entry, err := r.GetEntry(clusterName)
	if err != nil {
		return nil, err
	}
	return NewClient(entry.ES, entry.BaseURL, r.clientOpts...)
}

// Default returns the default cluster client.
func (r *Registry) Default() (ESClient, error) {
	return r.GetClient(r.defaultName)
}

// ListClusters returns sorted list of all registered cluster names.
func (r *Registry) ListClusters() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
