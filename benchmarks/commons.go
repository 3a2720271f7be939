//go:build testing

package benchmarks

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	hzcloud "github.com/source-c/go-hzcloud"
	testing2 "github.com/source-c/go-hzcloud/internal/testing"
)

const (
	EnvWarmupCount    = "WARMUPS"
	EnvHazelcastHosts = "HAZELCAST_HOSTS"
	EnvClusterName    = "HAZELCAST_CLUSTER_NAME"
	EnvBenchImageTag  = "BENCH_IMAGE_TAG"
	defaultWarmupCnt  = 3
	defaultCluster    = "dev"
)

func MapBenchmarker(b *testing.B, cliCreate func() (*hzcloud.Client, hzcloud.KeyValueStore), fixture func(m hzcloud.KeyValueStore), f func(b *testing.B, m hzcloud.KeyValueStore)) {
	warmups := warmupCount()
	if warmups > 0 {
		b.Logf("Warmups: %d", warmups)
	}
	runner := func(b *testing.B) {
		cli, m := cliCreate()
		defer func() {
			if err := cli.Close(context.Background()); err != nil {
				b.Log("Test warning, client not shutdown", err)
			}
		}()
		if fixture != nil {
			fixture(m)
		}
		b.ResetTimer()
		f(b, m)
	}
	warmUp := func() {
		client, m := cliCreate()
		defer func() {
			_ = client.Close(context.Background())
		}()
		for i := 0; i < warmups; i++ {
			f(b, m)
		}
	}
	warmUp()
	runner(b)
}

// Cluster returns the configuration of the cluster to benchmark. Without HAZELCAST_HOSTS a member is started
// in docker and the returned func removes it.
func Cluster(b *testing.B) (*hzcloud.ConnectionConfig, func()) {
	cfg := &hzcloud.ConnectionConfig{
		ClusterName:    defaultCluster,
		ConnectTimeout: 30 * time.Second,
	}
	if s := getEnv(EnvClusterName); len(s) > 0 {
		cfg.ClusterName = s
	}
	if s := getEnv(EnvHazelcastHosts); len(s) > 0 {
		cfg.Addresses = strings.Split(s, ";")
		return cfg, func() {}
	}
	// BENCH_IMAGE_TAG compares member versions without touching the tag used by the integration tests.
	member, err := testing2.StartHazelcast(testing2.WithClusterName(cfg.ClusterName), testing2.WithImageTag(getEnv(EnvBenchImageTag)))
	if err != nil {
		b.Fatal("failed to start hazelcast member", err)
	}
	b.Logf("started member %s at %s", member.Name(), member.Address())
	cfg.Addresses = []string{member.Address()}
	return cfg, func() {
		_ = member.Kill()
	}
}

func warmupCount() int {
	if s := getEnv(EnvWarmupCount); len(s) > 0 {
		if i, err := strconv.ParseInt(s, 10, 32); err != nil {
			panic(err)
		} else {
			return int(i)
		}
	}
	return defaultWarmupCnt
}

func getEnv(name string) string {
	if s := os.Getenv(name); len(s) > 0 {
		s = strings.TrimSpace(s)
		return s
	}
	return ""
}
