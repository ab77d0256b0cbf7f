// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relcache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/kinpath/internal/provider"
	"github.com/pdiddy/kinpath/pkg/types"
)

// DefaultFetchTimeout bounds one shared upstream lookup.
const DefaultFetchTimeout = time.Minute

// Provider serves lookups from a Cache and forwards misses upstream.
// Concurrent misses for the same id share one upstream call, which is not
// tied to any single caller's cancellation.
type Provider struct {
	upstream     provider.Provider
	cache        *Cache
	group        singleflight.Group
	fetchTimeout time.Duration
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithFetchTimeout bounds each shared upstream lookup.
func WithFetchTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// NewProvider wraps upstream with cache.
func NewProvider(upstream provider.Provider, cache *Cache, opts ...ProviderOption) *Provider {
	p := &Provider{upstream: upstream, cache: cache, fetchTimeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the upstream provider's name.
func (p *Provider) Name() string { return p.upstream.Name() }

// Cache returns the underlying cache.
func (p *Provider) Cache() *Cache { return p.cache }

// FetchRelatives returns the cached record or fetches and caches it. The
// upstream call keeps the caller's values but not its cancellation, so a
// caller that gives up does not fail the others waiting on the same id; it
// gets a failed record of its own. A lookup that hits the fetch timeout is
// returned but not cached.
func (p *Provider) FetchRelatives(ctx context.Context, id types.PersonID) types.RelativesRecord {
	if rec, ok := p.cache.Get(id); ok {
		return rec
	}
	if ctx.Err() != nil {
		return types.FailedRecord(id)
	}

	ch := p.group.DoChan(string(id), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
		defer cancel()
		rec := p.upstream.FetchRelatives(fetchCtx, id)
		if fetchCtx.Err() == nil {
			p.cache.Put(id, rec)
		}
		return rec, nil
	})
	select {
	case res := <-ch:
		return res.Val.(types.RelativesRecord)
	case <-ctx.Done():
		return types.FailedRecord(id)
	}
}
