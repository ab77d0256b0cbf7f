// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinship

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/kinpath/internal/provider"
	"github.com/pdiddy/kinpath/pkg/types"
)

// Search defaults.
const (
	DefaultMaxDepth      = 8
	DefaultMaxNodes      = 10000
	DefaultMaxCandidates = 50
	DefaultConcurrency   = 8
)

// SearchOutcome is the raw result of a bidirectional search.
type SearchOutcome struct {
	Candidates []types.PathCandidate
	Rounds     int
	Expanded   int
	Truncated  bool
	Reason     string
}

// SearchOption configures a Searcher.
type SearchOption func(*Searcher)

// WithMaxNodes bounds how many partial paths may be enqueued in total.
func WithMaxNodes(n int) SearchOption { return func(s *Searcher) { s.maxNodes = n } }

// WithMaxCandidates bounds how many raw candidates are collected.
func WithMaxCandidates(n int) SearchOption { return func(s *Searcher) { s.maxCandidates = n } }

// WithVariantsPerNode sets K, the partial paths kept per person per side.
func WithVariantsPerNode(k int) SearchOption { return func(s *Searcher) { s.variants = k } }

// WithConcurrency bounds parallel lookups within one frontier level.
func WithConcurrency(n int) SearchOption { return func(s *Searcher) { s.concurrency = n } }

// WithTimeout bounds the wall-clock time of one search.
func WithTimeout(d time.Duration) SearchOption { return func(s *Searcher) { s.timeout = d } }

// WithLogger sets the logger for round-level debug output.
func WithLogger(log *zap.Logger) SearchOption { return func(s *Searcher) { s.log = log } }

// Searcher grows two ancestor frontiers, one from each person, until they
// meet. Only parent links are followed, so every path found goes up from
// the start person to a shared ancestor and back down to the end person.
type Searcher struct {
	provider      provider.Provider
	maxNodes      int
	maxCandidates int
	variants      int
	concurrency   int
	timeout       time.Duration
	log           *zap.Logger
}

// NewSearcher returns a Searcher reading relatives from p, which should be
// cache-backed.
func NewSearcher(p provider.Provider, opts ...SearchOption) *Searcher {
	s := &Searcher{
		provider:      p,
		maxNodes:      DefaultMaxNodes,
		maxCandidates: DefaultMaxCandidates,
		variants:      DefaultVariantsPerNode,
		concurrency:   DefaultConcurrency,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxNodes <= 0 {
		s.maxNodes = DefaultMaxNodes
	}
	if s.maxCandidates <= 0 {
		s.maxCandidates = DefaultMaxCandidates
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	return s
}

type queued struct {
	id   types.PersonID
	path []types.PersonID
}

// frontier is one side of the search.
type frontier struct {
	side    int
	queue   []queued
	visited *variantTracker
}

// searchRun holds the mutable state of one FindPaths call.
type searchRun struct {
	s          *Searcher
	sides      [2]*frontier
	candidates []types.PathCandidate
	expanded   int
	reason     string
	met        bool
}

// FindPaths runs the search. It never fails: budgets, timeouts and provider
// failures shorten the result and are reported through the outcome.
func (s *Searcher) FindPaths(ctx context.Context, start, end types.PersonID, maxDepth int) SearchOutcome {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if start == end {
		return SearchOutcome{Candidates: []types.PathCandidate{{Path: types.PathOf(start)}}}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	run := &searchRun{s: s}
	for i, seed := range []types.PersonID{start, end} {
		f := &frontier{side: i + 1, visited: newVariantTracker(s.variants)}
		trivial := []types.PersonID{seed}
		f.visited.TryAdd(seed, trivial)
		f.queue = []queued{{id: seed, path: trivial}}
		run.sides[i] = f
	}

	rounds := 0
	for rounds < maxDepth && run.reason == "" && !run.met {
		if len(run.sides[0].queue) == 0 && len(run.sides[1].queue) == 0 {
			break
		}
		rounds++
		for i, f := range run.sides {
			if run.reason != "" {
				break
			}
			run.expandLevel(ctx, f, run.sides[1-i])
		}
		s.log.Debug("search round",
			zap.Int("round", rounds),
			zap.Int("frontier1", len(run.sides[0].queue)),
			zap.Int("frontier2", len(run.sides[1].queue)),
			zap.Int("expanded", run.expanded),
			zap.Int("candidates", len(run.candidates)),
		)
	}

	if run.reason == "" && !run.met && rounds >= maxDepth &&
		(len(run.sides[0].queue) > 0 || len(run.sides[1].queue) > 0) {
		run.reason = types.ReasonMaxDepth
	}

	return SearchOutcome{
		Candidates: run.candidates,
		Rounds:     rounds,
		Expanded:   run.expanded,
		Truncated:  run.reason != "",
		Reason:     run.reason,
	}
}

// expandLevel processes every node currently queued on f. Lookups for the
// whole level run concurrently; the nodes are then handled in queue order
// so results do not depend on scheduling.
func (r *searchRun) expandLevel(ctx context.Context, f, other *frontier) {
	level := f.queue
	f.queue = nil
	if len(level) == 0 {
		return
	}

	parents := r.fetchParents(ctx, level)
	if ctx.Err() != nil {
		r.reason = types.ReasonDeadline
		return
	}

	for i, q := range level {
		if other.visited.Seen(q.id) {
			r.met = true
			for _, otherPath := range other.visited.Paths(q.id) {
				if !r.addCandidate(f.side, q.path, otherPath) {
					return
				}
			}
		}

		for _, p := range parents[i] {
			if slices.Contains(q.path, p) {
				continue
			}
			next := append(slices.Clip(q.path), p)
			if !f.visited.TryAdd(p, next) {
				continue
			}
			f.queue = append(f.queue, queued{id: p, path: next})
			r.expanded++
			if r.expanded >= r.s.maxNodes {
				r.reason = types.ReasonMaxNodes
				return
			}
		}
	}
}

// fetchParents looks up the parents of every queued node, in parallel.
func (r *searchRun) fetchParents(ctx context.Context, level []queued) [][]types.PersonID {
	out := make([][]types.PersonID, len(level))
	var g errgroup.Group
	g.SetLimit(r.s.concurrency)
	for i, q := range level {
		i, q := i, q
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			rec := r.s.provider.FetchRelatives(ctx, q.id)
			if rec.FetchedOK {
				out[i] = rec.Parents
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// addCandidate joins a path from this side with a path from the other side
// that ends at the same person. Joins that would visit someone twice are
// dropped. It returns false once the candidate budget is used up.
func (r *searchRun) addCandidate(side int, own, other []types.PersonID) bool {
	left, right := own, other
	if side == 2 {
		left, right = other, own
	}
	ids := make([]types.PersonID, 0, len(left)+len(right)-1)
	ids = append(ids, left...)
	for i := len(right) - 2; i >= 0; i-- {
		ids = append(ids, right[i])
	}
	path := types.PathOf(ids...)
	if !path.IsAcyclic() {
		return true
	}
	r.candidates = append(r.candidates, types.PathCandidate{
		Path:         path,
		MeetingIndex: len(left) - 1,
	})
	if len(r.candidates) >= r.s.maxCandidates {
		r.reason = types.ReasonMaxCandidates
		return false
	}
	return true
}
