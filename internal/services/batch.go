package services

import (
	"context"
	"strings"
	"sync"
)

// defaultFetchConcurrency caps simultaneous upstream calls per batch to stay
// under the free-tier rate limits of both price providers.
const defaultFetchConcurrency = 3

// dedupeKeys drops blank and duplicate keys, preserving first-seen order.
// Callers normalize case before batching.
func dedupeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// fetchBatch runs fetchOne for every key with at most limit calls in flight,
// collecting one quote per key. Each call is isolated: a failure is recorded
// as an unavailable quote for that key and the rest of the batch proceeds.
// Cancelling ctx marks all keys not yet started as unavailable.
func fetchBatch(ctx context.Context, keys []string, limit int, fetchOne func(ctx context.Context, key string) Quote) map[string]Quote {
	out := make(map[string]Quote, len(keys))
	if len(keys) == 0 {
		return out
	}
	if limit <= 0 {
		limit = defaultFetchConcurrency
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, limit)
	)

	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				out[key] = quoteUnavailable("batch cancelled: " + ctx.Err().Error())
				mu.Unlock()
				return
			}

			q := fetchOne(ctx, key)

			mu.Lock()
			out[key] = q
			mu.Unlock()
		}(key)
	}

	wg.Wait()
	return out
}
