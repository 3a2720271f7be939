package hzcloud

import (
	"context"
	"fmt"

	"github.com/source-c/go-hzcloud/logger"
)

// KeyValueStore is a named flat string-to-string collection hosted by the cluster.
type KeyValueStore interface {
	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value string) error
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Size returns the number of entries.
	Size(ctx context.Context) (int, error)
}

// KeyValue is a single string entry.
type KeyValue struct {
	Key   string
	Value string
}

type hazelcastMap interface {
	Set(ctx context.Context, key interface{}, value interface{}) error
	Get(ctx context.Context, key interface{}) (interface{}, error)
	Size(ctx context.Context) (int, error)
}

// Map is a [KeyValueStore] backed by a hazelcast map.
type Map struct {
	name string
	m    hazelcastMap
	log  *logger.Logger
}

func newMap(name string, m hazelcastMap, log *logger.Logger) *Map {
	return &Map{name: name, m: m, log: log}
}

// Name returns the map name.
func (m *Map) Name() string {
	return m.name
}

func (m *Map) Put(ctx context.Context, key string, value string) error {
	m.log.Trace(func() string {
		return fmt.Sprintf("put %s[%s]", m.name, key)
	})
	if err := m.m.Set(ctx, key, value); err != nil {
		return createOperationError("put", key, err)
	}
	return nil
}

func (m *Map) Get(ctx context.Context, key string) (string, bool, error) {
	m.log.Trace(func() string {
		return fmt.Sprintf("get %s[%s]", m.name, key)
	})
	val, err := m.m.Get(ctx, key)
	if err != nil {
		return "", false, createOperationError("get", key, err)
	}
	if val == nil {
		return "", false, nil
	}
	str, ok := val.(string)
	if !ok {
		return "", false, &OperationError{
			ClientError: ClientError{fmt.Sprintf("value is %T, not a string", val)},
			Op:          "get",
			Key:         key,
		}
	}
	return str, true, nil
}

func (m *Map) Size(ctx context.Context) (int, error) {
	size, err := m.m.Size(ctx)
	if err != nil {
		return 0, createOperationError("size", "", err)
	}
	return size, nil
}
