// Package cache provides the resource cache behind the knowledge base.
//
// A Cache maps string keys to string content with get-or-load semantics. Each
// entry carries an absolute expiry time and a last-access time; expired
// entries are never returned. Inserting into a full cache first reaps every
// expired entry and only then, if still full, evicts the single least
// recently accessed entry.
//
// # Concurrency
//
// One mutex guards the whole entry map, including the last-access touch on
// a hit, so the check-size, evict, insert sequence is atomic. Loaders run
// without the lock held: a slow loader blocks only its own caller. Two
// concurrent misses on the same key may both run their loader unless the
// cache was built WithSingleFlight(true).
//
// # Errors
//
// Loader errors are returned unchanged and never cached. The structured JSON
// helpers report a missing file as ErrNotFound and malformed content as a
// *ParseError (matching ErrParse with errors.Is).
//
// # Usage
//
//	c := cache.New(cache.WithMaxEntries(50), cache.WithDefaultTTL(30*time.Minute))
//	text, err := c.GetOrLoad(ctx, "controls:all", func(ctx context.Context) (string, error) {
//	    return render(ctx)
//	})
package cache
