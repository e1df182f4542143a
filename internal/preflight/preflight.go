package preflight

import (
	"context"

	"golang.org/x/sync/errgroup"

	"vidgen/internal/config"
	"vidgen/internal/narration"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Pinger is satisfied by the queue client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunAll executes every applicable check concurrently and returns the
// results in a stable order.
func RunAll(ctx context.Context, cfg *config.Config, queue Pinger, catalog narration.Catalog) []Result {
	if cfg == nil {
		return nil
	}

	checks := []func(context.Context) Result{
		func(context.Context) Result { return CheckDirectoryAccess("Backgrounds directory", cfg.Paths.BackgroundsDir) },
		func(context.Context) Result { return CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir) },
		func(context.Context) Result { return CheckDirectoryAccess("Render directory", cfg.Paths.RenderDir) },
		func(context.Context) Result { return CheckDirectoryAccess("State directory", cfg.Paths.StateDir) },
	}
	if queue != nil {
		checks = append(checks, func(ctx context.Context) Result { return CheckQueue(ctx, queue) })
	}
	if catalog != nil {
		checks = append(checks, func(ctx context.Context) Result { return CheckCatalog(ctx, catalog) })
	}
	if cfg.Storage.Enabled {
		checks = append(checks, func(context.Context) Result { return CheckStorageFromConfig(cfg) })
	}

	results := make([]Result, len(checks))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, check := range checks {
		group.Go(func() error {
			results[i] = check(groupCtx)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

// Failures filters results down to the checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
