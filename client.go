package hzcloud

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	hazelcast "github.com/hazelcast/hazelcast-go-client"
	hzlogger "github.com/hazelcast/hazelcast-go-client/logger"
	"github.com/hazelcast/hazelcast-go-client/sql"
	"github.com/hazelcast/hazelcast-go-client/types"
	"github.com/source-c/go-hzcloud/logger"
)

const (
	clientLabel      = "go-hzcloud"
	clientNamePrefix = "hzcloud-"
)

type hazelcastClient interface {
	GetMap(ctx context.Context, name string) (*hazelcast.Map, error)
	SQL() sql.Service
	Shutdown(ctx context.Context) error
}

type starter func(ctx context.Context, config hazelcast.Config) (hazelcastClient, error)

func startHazelcast(ctx context.Context, config hazelcast.Config) (hazelcastClient, error) {
	cli, err := hazelcast.StartNewClientWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	return cli, nil
}

// Client is a handle to an established cluster connection. It is safe for concurrent use
// by multiple goroutines and must be released with [Client.Close].
type Client struct {
	name   string
	hz     hazelcastClient
	log    *logger.Logger
	closed atomic.Bool
}

type clientOptions struct {
	logger *logger.Logger
	start  starter
}

type ClientOption func(opts *clientOptions) error

// WithLoggingSink returns [ClientOption] that routes client and library messages to sink.
func WithLoggingSink(sink logger.Sink) ClientOption {
	return func(opts *clientOptions) error {
		if sink == nil {
			return nil
		}
		opts.logger = &logger.Logger{Sink: sink}
		return nil
	}
}

func withStarter(start starter) ClientOption {
	return func(opts *clientOptions) error {
		if start == nil {
			return errors.New("nil starter")
		}
		opts.start = start
		return nil
	}
}

// Connect validates cfg, loads the TLS material and starts a client connected to the cluster.
// Configuration problems are reported as [*ConfigurationError] before any connection attempt,
// failures of the client library as [*ConnectionError]. Nothing is retried here.
func Connect(ctx context.Context, cfg *ConnectionConfig, opts ...ClientOption) (*Client, error) {
	co := clientOptions{start: startHazelcast}
	for _, opt := range opts {
		if err := opt(&co); err != nil {
			return nil, createConfigurationError("invalid client option", err)
		}
	}
	if co.logger == nil {
		co.logger = logger.Discard()
	}
	log := co.logger
	if cfg == nil {
		return nil, createConfigurationError("nil connection config", nil)
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("%s", err)
		return nil, err
	}
	var tlsCfg *tls.Config
	if cfg.TLSEnabled {
		var err error
		if tlsCfg, err = loadTLSConfig(cfg); err != nil {
			log.Errorf("%s", err)
			return nil, err
		}
	}
	hzCfg := newHazelcastConfig(cfg, tlsCfg, log)
	failures := &failureRecorder{next: hzCfg.Logger.CustomLogger}
	hzCfg.Logger.CustomLogger = failures

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	log.Infof("connecting to cluster %s as %s (tls=%t, discovery=%s)", cfg.ClusterName, hzCfg.ClientName, cfg.TLSEnabled, discoveryMode(cfg))

	hz, err := co.start(ctx, hzCfg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		connErr := createConnectionError(err, cfg.ClusterName, failures.last())
		log.Errorf("%s", connErr)
		return nil, connErr
	}
	log.Infof("connected to cluster %s", cfg.ClusterName)
	return &Client{name: hzCfg.ClientName, hz: hz, log: log}, nil
}

// failureRecorder keeps the last error reported by the hazelcast client. The client retries
// rejected connection attempts until its deadline and returns only the deadline error.
type failureRecorder struct {
	next hzlogger.Logger
	mu   sync.Mutex
	msg  string
}

func (r *failureRecorder) Log(weight hzlogger.Weight, f func() string) {
	if weight > hzlogger.WeightOff && weight <= hzlogger.WeightError {
		msg := f()
		r.mu.Lock()
		r.msg = msg
		r.mu.Unlock()
		f = func() string { return msg }
	}
	r.next.Log(weight, f)
}

func (r *failureRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msg
}

func newHazelcastConfig(cfg *ConnectionConfig, tlsCfg *tls.Config, log *logger.Logger) hazelcast.Config {
	config := hazelcast.NewConfig()
	config.ClientName = strings.TrimSpace(cfg.ClientName)
	if len(config.ClientName) == 0 {
		config.ClientName = clientNamePrefix + uuid.NewString()[:8]
	}
	config.Labels = []string{clientLabel}
	config.Cluster.Name = cfg.ClusterName
	if token := strings.TrimSpace(cfg.DiscoveryToken); len(token) != 0 {
		config.Cluster.Cloud.Enabled = true
		config.Cluster.Cloud.Token = token
		config.Cluster.Cloud.ExperimentalAPIBaseURL = strings.TrimRight(cfg.DiscoveryURL, "/")
	} else {
		config.Cluster.Network.Addresses = append([]string(nil), cfg.Addresses...)
	}
	if tlsCfg != nil {
		config.Cluster.Network.SSL.Enabled = true
		config.Cluster.Network.SSL.SetTLSConfig(tlsCfg)
	}
	if cfg.ConnectTimeout > 0 {
		config.Cluster.ConnectionStrategy.Timeout = types.Duration(cfg.ConnectTimeout)
	}
	config.Stats.Enabled = cfg.StatisticsEnabled
	config.Logger.CustomLogger = log.Hazelcast()
	return config
}

func discoveryMode(cfg *ConnectionConfig) string {
	if len(strings.TrimSpace(cfg.DiscoveryToken)) != 0 {
		if len(cfg.DiscoveryURL) != 0 {
			return "cloud " + cfg.DiscoveryURL
		}
		return "cloud"
	}
	return "static " + strings.Join(cfg.Addresses, ",")
}

// Name returns the client name announced to the cluster.
func (cli *Client) Name() string {
	return cli.name
}

// Map returns the named distributed map. The map is created by the cluster on first use.
func (cli *Client) Map(ctx context.Context, name string) (KeyValueStore, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return nil, errors.New("map name is empty")
	}
	if cli.closed.Load() {
		return nil, createOperationError("get map", "", errors.New("client is closed"))
	}
	m, err := cli.hz.GetMap(ctx, name)
	if err != nil {
		return nil, createOperationError("get map "+name, "", err)
	}
	return newMap(name, m, cli.log), nil
}

// Query executes statement with positional params. The returned [RowSet] must be closed.
func (cli *Client) Query(ctx context.Context, statement string, params ...interface{}) (RowSet, error) {
	if cli.closed.Load() {
		return nil, createQueryError("client is closed", statement, nil)
	}
	cli.log.Trace(func() string {
		return fmt.Sprintf("executing %q with %d params", statement, len(params))
	})
	res, err := cli.hz.SQL().Execute(ctx, statement, params...)
	if err != nil {
		return nil, createQueryError("", statement, err)
	}
	rows, err := newRows(statement, res)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Close shuts the client down. Calling it more than once is a no-op.
func (cli *Client) Close(ctx context.Context) error {
	if !cli.closed.CompareAndSwap(false, true) {
		return nil
	}
	cli.log.Infof("closing client %s", cli.name)
	if err := cli.hz.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down client %s: %w", cli.name, err)
	}
	return nil
}
