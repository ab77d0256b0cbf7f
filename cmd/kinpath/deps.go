// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/kinpath/internal/graphdb"
	"github.com/pdiddy/kinpath/internal/kinship"
	"github.com/pdiddy/kinpath/internal/metrics"
	"github.com/pdiddy/kinpath/internal/provider"
	"github.com/pdiddy/kinpath/internal/provider/familysearch"
	"github.com/pdiddy/kinpath/internal/relcache"
	"github.com/pdiddy/kinpath/internal/secrets"
	"github.com/pdiddy/kinpath/pkg/types"
)

// searchDeps is everything a find run needs.
type searchDeps struct {
	finder  *kinship.Finder
	cache   *relcache.Cache
	metrics *metrics.Metrics
	close   func()
}

// newSearchDeps builds the upstream provider for c, wraps it with metrics
// and the relative cache, and returns a Finder over the result.
func newSearchDeps(ctx context.Context, c types.Config, log *zap.Logger) (*searchDeps, error) {
	upstream, remote, closeFn, err := newUpstream(ctx, c, log)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	cache := relcache.New(c.Cache.Capacity, c.Cache.TTL)
	m.ObserveCache(cache)
	// A shared lookup may retry, so allow the HTTP timeout once per attempt.
	fetchTimeout := c.HTTP.Timeout * time.Duration(c.Provider.MaxRetries+1)
	cached := relcache.NewProvider(m.InstrumentProvider(upstream), cache, relcache.WithFetchTimeout(fetchTimeout))

	opts := []kinship.FinderOption{
		kinship.WithFinderLogger(log),
		kinship.WithObserver(m.ObserveResult),
	}
	if c.Search.RemoteFinder {
		if remote == nil {
			log.Warn("remote relationship finder requested but not supported by provider",
				zap.String("provider", upstream.Name()))
		} else {
			opts = append(opts, kinship.WithRemoteFinder(remote))
		}
	}

	return &searchDeps{
		finder:  kinship.NewFinder(cached, c.Search, opts...),
		cache:   cache,
		metrics: m,
		close:   closeFn,
	}, nil
}

// newUpstream returns the configured provider, its remote relationship
// finder when it has one, and a function releasing its resources.
func newUpstream(ctx context.Context, c types.Config, log *zap.Logger) (provider.Provider, kinship.RemoteFinder, func(), error) {
	noop := func() {}
	switch c.Provider.Kind {
	case types.ProviderFamilySearch:
		client, err := familysearch.New(c.Provider, c.HTTP, familysearch.WithLogger(log))
		if err != nil {
			return nil, nil, nil, err
		}
		if c.Provider.AccessToken == "" && c.Provider.AppKey == "" {
			return nil, nil, nil, fmt.Errorf("%w: add %s or %s to the secrets directory",
				familysearch.ErrNoToken, secrets.FamilySearchAccessToken, secrets.FamilySearchAppKey)
		}
		return client, client, noop, nil

	case types.ProviderTree:
		if c.Provider.TreeFile == "" {
			return nil, nil, nil, fmt.Errorf("tree provider needs a tree file (--tree or provider.tree_file)")
		}
		tree, err := provider.LoadTree(c.Provider.TreeFile)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Debug("loaded tree", zap.String("file", c.Provider.TreeFile), zap.Int("persons", tree.Len()))
		return tree, nil, noop, nil

	case types.ProviderNeo4j:
		client, err := graphdb.Open(ctx, c.Graph)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { _ = client.Close(context.Background()) }
		return provider.NewGraphProvider(client, log), nil, closeFn, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown provider %q", c.Provider.Kind)
	}
}

// normalizeID applies provider-specific id clean-up. FamilySearch ids are
// upper-cased; ids that do not look like tree ids only produce a warning.
func normalizeID(c types.Config, raw string, log *zap.Logger) types.PersonID {
	if c.Provider.Kind != types.ProviderFamilySearch {
		return types.PersonID(raw)
	}
	id := familysearch.NormalizeID(raw)
	if !familysearch.ValidID(id) {
		log.Warn("person id does not look like a FamilySearch tree id", zap.String("id", string(id)))
	}
	return id
}
