package hzcloud

import (
	"context"
	"math/rand"
	"time"

	"github.com/source-c/go-hzcloud/logger"
)

// Grid is the part of the cluster client the demo workloads run against. [*Client] implements it.
type Grid interface {
	Map(ctx context.Context, name string) (KeyValueStore, error)
	Query(ctx context.Context, statement string, params ...interface{}) (RowSet, error)
}

type workloadOptions struct {
	iterations int
	rnd        *rand.Rand
	log        *logger.Logger
}

type WorkloadOption func(opts *workloadOptions)

// WithIterations returns [WorkloadOption] that stops the map demo after n iterations. Zero or negative n
// means run until the context is cancelled.
func WithIterations(n int) WorkloadOption {
	return func(opts *workloadOptions) {
		if n < 0 {
			n = 0
		}
		opts.iterations = n
	}
}

// WithRand returns [WorkloadOption] that sets the source of random keys.
func WithRand(rnd *rand.Rand) WorkloadOption {
	return func(opts *workloadOptions) {
		if rnd != nil {
			opts.rnd = rnd
		}
	}
}

// WithWorkloadLogger returns [WorkloadOption] that sets the logger for recovered and fatal workload errors.
func WithWorkloadLogger(log *logger.Logger) WorkloadOption {
	return func(opts *workloadOptions) {
		if log != nil {
			opts.log = log
		}
	}
}

func newWorkloadOptions(opts []WorkloadOption) *workloadOptions {
	wo := &workloadOptions{}
	for _, opt := range opts {
		opt(wo)
	}
	if wo.rnd == nil {
		wo.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if wo.log == nil {
		wo.log = logger.Discard()
	}
	return wo
}
