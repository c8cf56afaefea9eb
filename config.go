package esclient

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ClusterConfig defines configuration for a single Elasticsearch cluster.
type ClusterConfig struct {
	Name      string   `yaml:"name"`      // Cluster name (e.g., "tier-gold", "tier-silver")
	Version   int      `yaml:"version"`   // Elasticsearch version: 8 or 9
	Addresses []string `yaml:"addresses"` // Cluster addresses (e.g., ["http://es-1:9200", "http://es-2:9200"])
	Username  string   `yaml:"username"`  // Authentication username
	Password  string   `yaml:"password"`  // Authentication password
	APIKey    string   `yaml:"api_key"`   // Base64 API key, used instead of username/password

	// Retries are performed by the go-elasticsearch transport, not by this package.
	MaxRetries          int   `yaml:"max_retries"`           // 0 keeps the transport default
	RetryOnStatus       []int `yaml:"retry_on_status"`       // e.g. [502, 503, 504]
	DisableRetry        bool  `yaml:"disable_retry"`         // Turn transport retries off
	CompressRequestBody bool  `yaml:"compress_request_body"` // Gzip request bodies
}

// Config defines configuration for multiple Elasticsearch clusters.
type Config struct {
	DefaultCluster string                   `yaml:"default_cluster"` // Name of the default cluster
	Clusters       map[string]ClusterConfig `yaml:"clusters"`        // Map of cluster_name -> ClusterConfig
}

// LoadConfig reads a YAML configuration file. ${VAR} and ${VAR:-default}
// references are replaced with environment values before parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg, err := ParseConfig(expandEnvVars(data))
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// ParseConfig parses YAML configuration and validates it.
// Cluster names default to their map keys.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	for name, cluster := range cfg.Clusters {
		if cluster.Name == "" {
			cluster.Name = name
			cfg.Clusters[name] = cluster
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, fallback, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = fallback
		}
		return []byte(val)
	})
}

// Validate checks if configuration is valid.
func (c *Config) Validate() error {
	if len(c.Clusters) == 0 {
		return ErrEmptyClusters
	}

	if c.DefaultCluster == "" {
		return ErrNoDefaultCluster
	}

	if _, ok := c.Clusters[c.DefaultCluster]; !ok {
		return ErrDefaultClusterNotFound
	}

	for name, cluster := range c.Clusters {
		if name == "" {
			return ErrEmptyClusterName
		}
		if len(cluster.Addresses) == 0 {
			return ErrEmptyClusterAddresses(name)
		}
		if cluster.Version != 8 && cluster.Version != 9 {
			return ErrInvalidESVersion(name, cluster.Version)
		}
	}

	return nil
}
