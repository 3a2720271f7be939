//go:build testing

package testing

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	HazelcastStartTimeout = "HAZELCAST_START_TIMEOUT"
	HazelcastImageTag     = "HAZELCAST_IMAGE_TAG"

	hazelcastRepository = "hazelcast/hazelcast"
	defaultImageTag     = "5.3.6"
	memberPort          = "5701/tcp"
	containerExpiry     = 600
	logPollInterval     = 500 * time.Millisecond
)

var memberStarted = regexp.MustCompile(`\bis STARTED\b`)

type MemberParams struct {
	Index       int
	ClusterName string
	ImageTag    string
}

type MemberOption func(params *MemberParams)

// HazelcastInstance is a member running in a docker container, reachable from the host at Address.
type HazelcastInstance interface {
	Kill() error
	Name() string
	Address() string
	ClusterName() string
}

type member struct {
	pool     *dockertest.Pool
	resource *dockertest.Resource
	params   MemberParams
	name     string
	address  string
}

func (m *member) Name() string {
	return m.name
}

func (m *member) Address() string {
	return m.address
}

func (m *member) ClusterName() string {
	return m.params.ClusterName
}

func (m *member) Kill() error {
	if m.pool == nil || m.resource == nil {
		return fmt.Errorf("member %s is not running", m.name)
	}
	return m.pool.Purge(m.resource)
}

// logs returns everything the member has written to stdout and stderr so far.
func (m *member) logs() (string, error) {
	buf := bytes.Buffer{}
	err := m.pool.Client.Logs(docker.LogsOptions{
		Container:    m.resource.Container.ID,
		OutputStream: &buf,
		ErrorStream:  &buf,
		Stdout:       true,
		Stderr:       true,
	})
	return buf.String(), err
}

func WithIndex(idx int) MemberOption {
	return func(params *MemberParams) {
		params.Index = idx
	}
}

func WithClusterName(name string) MemberOption {
	return func(params *MemberParams) {
		params.ClusterName = name
	}
}

// WithImageTag selects the hazelcast/hazelcast image tag. It overrides HAZELCAST_IMAGE_TAG.
func WithImageTag(tag string) MemberOption {
	return func(params *MemberParams) {
		if tag = strings.TrimSpace(tag); len(tag) != 0 {
			params.ImageTag = tag
		}
	}
}

// StartHazelcast runs a single Hazelcast member with SQL enabled in a docker container and waits until the
// member reports it has started.
func StartHazelcast(opts ...MemberOption) (HazelcastInstance, error) {
	params := &MemberParams{
		ClusterName: "dev",
		ImageTag:    imageTag(),
	}
	for _, opt := range opts {
		opt(params)
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to docker: %w", err)
	}
	if err = pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("docker is not available: %w", err)
	}

	name := fmt.Sprintf("hzcloud-%s-%d-%s", params.ClusterName, params.Index, strings.ToLower(MakeRandomString(6)))
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       name,
		Repository: hazelcastRepository,
		Tag:        params.ImageTag,
		Env: []string{
			"HZ_CLUSTERNAME=" + params.ClusterName,
			"HZ_JET_ENABLED=true",
			"JAVA_OPTS=-Dhazelcast.phone.home.enabled=false",
		},
		ExposedPorts: []string{memberPort},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start member %s: %w", name, err)
	}
	_ = resource.Expire(containerExpiry)

	m := &member{
		pool:     pool,
		resource: resource,
		params:   *params,
		name:     name,
		address:  resource.GetHostPort(memberPort),
	}
	var logErr error
	started := WaitForCondition(func() bool {
		var out string
		out, logErr = m.logs()
		return logErr == nil && memberStarted.MatchString(out)
	}, waitTimeout())
	if !started {
		_ = m.Kill()
		if logErr != nil {
			return nil, fmt.Errorf("failed to read logs of member %s: %w", name, logErr)
		}
		return nil, fmt.Errorf("member %s did not start within %s", name, waitTimeout())
	}
	return m, nil
}

func imageTag() string {
	if tag := strings.TrimSpace(os.Getenv(HazelcastImageTag)); len(tag) != 0 {
		return tag
	}
	return defaultImageTag
}

func waitTimeout() time.Duration {
	if s := os.Getenv(HazelcastStartTimeout); s != "" {
		if i, err := strconv.ParseInt(s, 10, 32); err != nil {
			panic(err)
		} else {
			return time.Duration(i) * time.Second
		}
	}
	return 2 * time.Minute
}

// WaitForCondition polls condition until it holds or timeout elapses and reports whether it held.
// A panicking condition counts as not held.
func WaitForCondition(condition func() bool, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(logPollInterval)
	defer ticker.Stop()

	check := func() (res bool) {
		defer func() {
			if r := recover(); r != nil {
				res = false
			}
		}()
		return condition()
	}
	for {
		if check() {
			return true
		}
		select {
		case <-deadline.C:
			return check()
		case <-ticker.C:
		}
	}
}

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func MakeRandomString(n int) string {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rnd.Intn(len(letterRunes))]
	}
	return string(b)
}
