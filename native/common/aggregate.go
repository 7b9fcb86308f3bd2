package common

import (
	"context"

	"golang.org/x/sync/errgroup"

	"launchpad/crypto"
)

// MaxParallelReads bounds the number of in-flight delegate reads per fan-out.
const MaxParallelReads = 4

// Gather calls fn once per delegate with bounded concurrency. fn stores its
// result by index, so the outcome never depends on completion order. When
// several reads fail the error of the lowest index is returned.
func Gather(ctx context.Context, delegates []crypto.Address, fn func(ctx context.Context, i int, delegate crypto.Address) error) error {
	errs := make([]error, len(delegates))
	var g errgroup.Group
	g.SetLimit(MaxParallelReads)
	for i, delegate := range delegates {
		i, delegate := i, delegate
		g.Go(func() error {
			errs[i] = fn(ctx, i, delegate)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// AnyOf reports whether pred holds at any of the delegates, together with the
// per-delegate results. An empty list yields false.
func AnyOf(ctx context.Context, q Querier, pred Predicate, delegates []crypto.Address, subject crypto.Address) (bool, []bool, error) {
	results := make([]bool, len(delegates))
	err := Gather(ctx, delegates, func(ctx context.Context, i int, delegate crypto.Address) error {
		ok, err := pred.Eval(ctx, q, delegate, subject)
		if err != nil {
			return err
		}
		results[i] = ok
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	for _, ok := range results {
		if ok {
			return true, results, nil
		}
	}
	return false, results, nil
}
