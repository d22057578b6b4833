package snowapi

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// computeWorkers clamps the worker count to
// ceil(partitionCount/scaleFactor), floored at 1 and capped at
// maxThreadsPerQuery. partitionCount is the total length of the
// Service's partitionInfo array, including partition 0.
func computeWorkers(partitionCount, scaleFactor, maxThreadsPerQuery int) int {
	if scaleFactor <= 0 {
		scaleFactor = 1
	}
	workers := int(math.Ceil(float64(partitionCount) / float64(scaleFactor)))
	if workers < 1 {
		workers = 1
	}
	if workers > maxThreadsPerQuery {
		workers = maxThreadsPerQuery
	}
	return workers
}

// fetchRemainingSequential fetches partitions 1..count-1 one at a time,
// used by the single-thread in-memory strategy.
func fetchRemainingSequential(ctx context.Context, count int, fetch partitionFetchFunc) ([][][]*string, error) {
	if count <= 1 {
		return nil, nil
	}
	out := make([][][]*string, count-1)
	for i := 1; i < count; i++ {
		rows, err := fetch(ctx, i)
		if err != nil {
			return nil, err
		}
		out[i-1] = rows
	}
	return out, nil
}

// fetchRemainingThreaded fans partitions 1..count-1 out across at most
// workers concurrent fetches, using an errgroup so the first terminal
// error cancels the group's context and stops further dispatch. Results
// are assembled in partition order regardless of completion order.
func fetchRemainingThreaded(ctx context.Context, count, workers int, fetch partitionFetchFunc) ([][][]*string, error) {
	if count <= 1 {
		return nil, nil
	}

	out := make([][][]*string, count-1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 1; i < count; i++ {
		i := i
		g.Go(func() error {
			rows, err := fetch(gctx, i)
			if err != nil {
				return err
			}
			out[i-1] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
