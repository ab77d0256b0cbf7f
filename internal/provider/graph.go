// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/kinpath/internal/graphdb"
	"github.com/pdiddy/kinpath/pkg/types"
)

// GraphProvider answers lookups from a tree previously imported into Neo4j.
type GraphProvider struct {
	client graphdb.Client
	log    *zap.Logger
}

// NewGraphProvider wraps a graph client. A nil logger disables logging.
func NewGraphProvider(client graphdb.Client, log *zap.Logger) *GraphProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &GraphProvider{client: client, log: log}
}

// Name returns "neo4j".
func (g *GraphProvider) Name() string { return string(types.ProviderNeo4j) }

// FetchRelatives reads the person's neighborhood. Query errors and unknown
// ids produce a failed record.
func (g *GraphProvider) FetchRelatives(ctx context.Context, id types.PersonID) types.RelativesRecord {
	rec, found, err := graphdb.Relatives(ctx, g.client, id)
	if err != nil {
		g.log.Warn("graph lookup failed", zap.String("person_id", string(id)), zap.Error(err))
		return types.FailedRecord(id)
	}
	if !found {
		g.log.Debug("person not in graph", zap.String("person_id", string(id)))
	}
	return rec
}
