package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// PreloadReport lists which files made it into the cache.
type PreloadReport struct {
	Loaded []string
	Failed map[string]error
}

// OK reports whether every file loaded.
func (r PreloadReport) OK() bool { return len(r.Failed) == 0 }

// Preload loads each path through GetOrLoadStructuredTTL, several at a time.
// A failing file is logged and recorded in the report; it never stops the
// remaining files from loading.
func (c *Cache) Preload(ctx context.Context, paths []string, ttl time.Duration) PreloadReport {
	start := time.Now()
	defer c.logger.LogPerformance("cache preload", start)

	report := PreloadReport{Failed: make(map[string]error)}
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(c.preloadWorkers)

	for _, path := range paths {
		g.Go(func() error {
			_, err := c.GetOrLoadStructuredTTL(ctx, path, ttl)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Warn("Preload failed, skipping file", "path", path, "error", err)
				report.Failed[path] = err
				return nil
			}
			report.Loaded = append(report.Loaded, path)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Loaded)
	c.logger.Info("Cache preload completed",
		"loaded", len(report.Loaded),
		"failed", len(report.Failed),
	)

	return report
}
