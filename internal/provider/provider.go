// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider defines where kinship searches look up relatives and
// ships the offline implementations: a YAML tree and a Neo4j graph. The
// FamilySearch client lives in the familysearch subpackage.
package provider

import (
	"context"

	"github.com/pdiddy/kinpath/pkg/types"
)

// Provider returns the immediate relatives of one person.
//
// FetchRelatives never fails for ordinary problems such as an unknown id, a
// timeout or a bad response: it returns a record with FetchedOK=false and
// empty relative lists, and the search treats that person as a dead branch.
// Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	FetchRelatives(ctx context.Context, id types.PersonID) types.RelativesRecord
}

// Func adapts a plain function to the Provider interface.
type Func func(ctx context.Context, id types.PersonID) types.RelativesRecord

// Name returns "func".
func (f Func) Name() string { return "func" }

// FetchRelatives calls f.
func (f Func) FetchRelatives(ctx context.Context, id types.PersonID) types.RelativesRecord {
	return f(ctx, id)
}
