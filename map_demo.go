package hzcloud

import (
	"context"
	"fmt"
	"io"
	"strconv"
)

const (
	demoMapName        = "map"
	demoKeySpace       = 100_000
	sizeReportInterval = 10
)

// RunMapDemo fills the map named "map" with random entries. Each iteration puts one random entry,
// reads another random key and every tenth iteration prints the map size to out.
//
// The loop runs until ctx is cancelled, or for a fixed number of iterations set with [WithIterations].
// Failed map calls are logged and the loop goes on; only failing to obtain the map is returned.
func RunMapDemo(ctx context.Context, grid Grid, out io.Writer, opts ...WorkloadOption) error {
	wo := newWorkloadOptions(opts)
	log := wo.log
	_, _ = fmt.Fprintln(out, "Now the map named 'map' will be filled with random entries.")

	m, err := grid.Map(ctx, demoMapName)
	if err != nil {
		log.Errorf("failed to obtain map %s: %w", demoMapName, err)
		return err
	}
	iterationCounter := 0
	for i := 0; wo.iterations == 0 || i < wo.iterations; i++ {
		if ctx.Err() != nil {
			log.Infof("map demo stopped after %d iterations", i)
			return nil
		}
		randomKey := strconv.Itoa(wo.rnd.Intn(demoKeySpace))
		if err = m.Put(ctx, "key-"+randomKey, "value-"+randomKey); err != nil && ctx.Err() == nil {
			log.Warnf("%s", err)
		}
		// The looked up entry is unrelated to the one just written and its value is not used.
		if _, _, err = m.Get(ctx, "key-"+strconv.Itoa(wo.rnd.Intn(demoKeySpace))); err != nil && ctx.Err() == nil {
			log.Warnf("%s", err)
		}
		if iterationCounter++; iterationCounter == sizeReportInterval {
			iterationCounter = 0
			size, err := m.Size(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Warnf("%s", err)
				}
				continue
			}
			_, _ = fmt.Fprintf(out, "Current map size: %d\n", size)
		}
	}
	return nil
}
