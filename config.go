package hzcloud

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"
	"github.com/source-c/go-hzcloud/internal/secrets"
)

const envPrefix = "HZCLOUD_"

// ConnectionConfig holds everything needed to reach a managed cluster. Values are usually read from
// HZCLOUD_* environment variables by [LoadConfig]; see the field tags for the variable names.
type ConnectionConfig struct {
	KeyStorePath       string        `env:"KEYSTORE_PATH"`
	KeyStorePassword   string        `env:"KEYSTORE_PASSWORD"`
	TrustStorePath     string        `env:"TRUSTSTORE_PATH"`
	TrustStorePassword string        `env:"TRUSTSTORE_PASSWORD"`
	TLSEnabled         bool          `env:"TLS_ENABLED"        envDefault:"true"`
	TLSServerName      string        `env:"TLS_SERVER_NAME"    envDefault:"hazelcast.cloud"`
	StatisticsEnabled  bool          `env:"STATISTICS_ENABLED" envDefault:"true"`
	DiscoveryToken     string        `env:"DISCOVERY_TOKEN"`
	DiscoveryURL       string        `env:"DISCOVERY_URL"`
	ClusterName        string        `env:"CLUSTER_NAME"`
	Addresses          []string      `env:"ADDRESSES"          envSeparator:","`
	ConnectTimeout     time.Duration `env:"CONNECT_TIMEOUT"    envDefault:"2m"`
	ClientName         string        `env:"CLIENT_NAME"`
	LogLevel           string        `env:"LOG_LEVEL"          envDefault:"info"`
}

type loadOptions struct {
	envFiles    []string
	environment map[string]string
	resolver    secrets.Resolver
}

type LoadOption func(opts *loadOptions) error

// WithEnvFile returns [LoadOption] that loads dotenv files before parsing the environment.
// Variables already present in the process environment are not overridden.
func WithEnvFile(paths ...string) LoadOption {
	return func(opts *loadOptions) error {
		for _, path := range paths {
			path = strings.TrimSpace(path)
			if len(path) != 0 {
				opts.envFiles = append(opts.envFiles, path)
			}
		}
		return nil
	}
}

// WithEnvironment returns [LoadOption] that parses the given variables instead of the process environment.
func WithEnvironment(environment map[string]string) LoadOption {
	return func(opts *loadOptions) error {
		if environment == nil {
			return errors.New("nil environment")
		}
		opts.environment = environment
		return nil
	}
}

// WithSecretResolver returns [LoadOption] that sets the resolver of secret references such as
// "vault:secret/data/hz#token". A Vault backed resolver is used by default.
func WithSecretResolver(resolver secrets.Resolver) LoadOption {
	return func(opts *loadOptions) error {
		if resolver == nil {
			return errors.New("nil secret resolver")
		}
		opts.resolver = resolver
		return nil
	}
}

// LoadConfig reads a [ConnectionConfig] from the environment, resolves secret references and validates the result.
func LoadConfig(ctx context.Context, opts ...LoadOption) (*ConnectionConfig, error) {
	lo := loadOptions{}
	for _, opt := range opts {
		if err := opt(&lo); err != nil {
			return nil, createConfigurationError("invalid load option", err)
		}
	}
	if len(lo.envFiles) > 0 {
		if err := godotenv.Load(lo.envFiles...); err != nil {
			return nil, createConfigurationError(fmt.Sprintf("failed to load env files %v", lo.envFiles), err)
		}
	}
	cfg := ConnectionConfig{}
	envOpts := env.Options{Prefix: envPrefix}
	if lo.environment != nil {
		envOpts.Environment = lo.environment
	}
	if err := env.Parse(&cfg, envOpts); err != nil {
		return nil, createConfigurationError("failed to parse environment", err)
	}
	if lo.resolver == nil {
		lo.resolver = secrets.NewVaultResolver(nil)
	}
	if err := cfg.resolveSecrets(ctx, lo.resolver); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *ConnectionConfig) resolveSecrets(ctx context.Context, resolver secrets.Resolver) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"key store password", &cfg.KeyStorePassword},
		{"trust store password", &cfg.TrustStorePassword},
		{"discovery token", &cfg.DiscoveryToken},
	}
	for _, f := range fields {
		if !secrets.IsReference(*f.value) {
			continue
		}
		val, err := resolver.Resolve(ctx, *f.value)
		if err != nil {
			return createConfigurationError(fmt.Sprintf("failed to resolve %s", f.name), err)
		}
		*f.value = val
	}
	return nil
}

// Validate checks the configuration without touching the network. TLS stores must be readable files when
// TLS is enabled. The returned error is always a [*ConfigurationError].
func (cfg *ConnectionConfig) Validate() error {
	if len(strings.TrimSpace(cfg.ClusterName)) == 0 {
		return createConfigurationError("cluster name is empty", nil)
	}
	hasToken := len(strings.TrimSpace(cfg.DiscoveryToken)) != 0
	hasAddrs := len(cfg.Addresses) != 0
	if !hasToken && !hasAddrs {
		return createConfigurationError("either discovery token or member addresses must be set", nil)
	}
	if hasToken && hasAddrs {
		return createConfigurationError("discovery token and member addresses are mutually exclusive", nil)
	}
	if len(cfg.DiscoveryURL) != 0 {
		u, err := url.Parse(cfg.DiscoveryURL)
		if err != nil {
			return createConfigurationError("invalid discovery url", err)
		}
		if !u.IsAbs() || (u.Scheme != "https" && u.Scheme != "http") || len(u.Host) == 0 {
			return createConfigurationError(fmt.Sprintf("discovery url %q must be an absolute http(s) url", cfg.DiscoveryURL), nil)
		}
	}
	if cfg.TLSEnabled {
		if err := checkReadableFile("key store", cfg.KeyStorePath); err != nil {
			return err
		}
		if err := checkReadableFile("trust store", cfg.TrustStorePath); err != nil {
			return err
		}
	}
	return nil
}

func checkReadableFile(name string, path string) error {
	if len(strings.TrimSpace(path)) == 0 {
		return createConfigurationError(fmt.Sprintf("%s path is empty", name), nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return createConfigurationError(fmt.Sprintf("%s %s is not accessible", name, path), err)
	}
	if !info.Mode().IsRegular() {
		return createConfigurationError(fmt.Sprintf("%s %s is not a regular file", name, path), nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return createConfigurationError(fmt.Sprintf("%s %s is not readable", name, path), err)
	}
	_ = f.Close()
	return nil
}
