// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kinship finds and labels the relationship between two people by
// searching their ancestries from both ends.
package kinship

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/kinpath/internal/provider"
	"github.com/pdiddy/kinpath/pkg/types"
)

// ErrInvalidInput is returned when a start or end id is missing.
var ErrInvalidInput = errors.New("invalid input")

// RemoteFinder is a provider-side relationship service that can answer a
// whole query in one call. It returns the ids along the path and the
// common ancestor.
type RemoteFinder interface {
	FindRelationship(ctx context.Context, start, end types.PersonID) ([]types.PersonID, types.PersonID, error)
}

// Finder runs a complete kinship query: search, post-processing and
// labeling.
type Finder struct {
	provider provider.Provider
	searcher *Searcher
	post     *PostProcessor
	maxDepth int
	locale   string
	remote   RemoteFinder
	observe  func(types.Result)
	log      *zap.Logger
	now      func() time.Time
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithRemoteFinder tries rf before the bidirectional search.
func WithRemoteFinder(rf RemoteFinder) FinderOption {
	return func(f *Finder) { f.remote = rf }
}

// WithObserver calls fn with every result, e.g. to record metrics.
func WithObserver(fn func(types.Result)) FinderOption {
	return func(f *Finder) { f.observe = fn }
}

// WithFinderLogger sets the logger for the Finder and its Searcher.
func WithFinderLogger(log *zap.Logger) FinderOption {
	return func(f *Finder) { f.log = log }
}

// NewFinder builds a Finder over p, which should already be cache-backed,
// using the budgets in cfg.
func NewFinder(p provider.Provider, cfg types.SearchConfig, opts ...FinderOption) *Finder {
	f := &Finder{
		provider: p,
		maxDepth: cfg.MaxDepth,
		locale:   cfg.Locale,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxDepth <= 0 {
		f.maxDepth = DefaultMaxDepth
	}
	if f.locale == "" {
		f.locale = LocaleEnglish
	}
	f.searcher = NewSearcher(p,
		WithMaxNodes(cfg.MaxNodes),
		WithMaxCandidates(cfg.MaxCandidates),
		WithVariantsPerNode(cfg.VariantsPerNode),
		WithConcurrency(cfg.Concurrency),
		WithTimeout(cfg.Timeout),
		WithLogger(f.log),
	)
	f.post = NewPostProcessor(p, cfg.KeepWithin, cfg.MaxPaths)
	return f
}

// FindKinshipPaths returns the labeled relationship paths between start and
// end. A non-positive maxDepth selects the configured depth. The only error
// is ErrInvalidInput; budget exhaustion and provider failures are reported
// through Result.Truncated or an empty Paths.
func (f *Finder) FindKinshipPaths(ctx context.Context, start, end types.PersonID, maxDepth int) (types.Result, error) {
	start = types.PersonID(strings.TrimSpace(string(start)))
	end = types.PersonID(strings.TrimSpace(string(end)))
	if start == "" || end == "" {
		return types.Result{}, fmt.Errorf("%w: start and end ids are required", ErrInvalidInput)
	}
	if maxDepth <= 0 {
		maxDepth = f.maxDepth
	}

	began := f.now()
	res := types.Result{StartID: start, EndID: end, MaxDepth: maxDepth}

	if start == end {
		res.Method = types.MethodIdentity
		res.Paths = []types.KinshipPath{f.label(types.PathCandidate{Path: types.PathOf(start)})}
	} else if !f.tryRemote(ctx, &res) {
		f.search(ctx, &res)
	}

	res.Names = f.names(ctx, res.Paths)
	res.Stats.Elapsed = f.now().Sub(began)

	f.log.Info("kinship search finished",
		zap.String("start", string(start)),
		zap.String("end", string(end)),
		zap.String("method", res.Method),
		zap.Int("paths", len(res.Paths)),
		zap.Bool("truncated", res.Truncated),
		zap.String("reason", res.TruncationReason),
		zap.Int("rounds", res.Stats.Rounds),
		zap.Int("expanded", res.Stats.Expanded),
		zap.Duration("elapsed", res.Stats.Elapsed),
	)
	if f.observe != nil {
		f.observe(res)
	}
	return res, nil
}

func (f *Finder) search(ctx context.Context, res *types.Result) {
	out := f.searcher.FindPaths(ctx, res.StartID, res.EndID, res.MaxDepth)
	res.Method = types.MethodBidirectional
	res.Truncated = out.Truncated
	res.TruncationReason = out.Reason
	res.Stats.Rounds = out.Rounds
	res.Stats.Expanded = out.Expanded
	res.Stats.RawCandidates = len(out.Candidates)

	for _, c := range f.post.Process(ctx, out.Candidates) {
		res.Paths = append(res.Paths, f.label(c))
	}
}

// tryRemote asks the remote finder first. It reports whether res was
// filled; any failure falls back to the local search.
func (f *Finder) tryRemote(ctx context.Context, res *types.Result) bool {
	if f.remote == nil {
		return false
	}
	ids, common, err := f.remote.FindRelationship(ctx, res.StartID, res.EndID)
	if err != nil {
		f.log.Debug("remote relationship finder unavailable, searching locally", zap.Error(err))
		return false
	}
	path := types.PathOf(ids...)
	meeting := slices.Index(ids, common)
	if meeting < 0 || !path.IsAcyclic() {
		f.log.Debug("remote relationship finder returned an unusable path", zap.Stringer("path", path))
		return false
	}
	res.Method = types.MethodRemoteFinder
	res.Stats.RawCandidates = 1
	res.Paths = []types.KinshipPath{f.label(types.PathCandidate{Path: path, MeetingIndex: meeting})}
	return true
}

func (f *Finder) label(c types.PathCandidate) types.KinshipPath {
	views := make([]types.PathNodeView, len(c.Path))
	for i, n := range c.Path {
		views[i] = n.View()
	}
	deg := LabelPath(len(c.Path), c.MeetingIndex)
	return types.KinshipPath{
		Nodes:        views,
		MeetingIndex: c.MeetingIndex,
		DegreeLabel:  Label(deg, f.locale),
		Degree:       deg,
	}
}

// names collects display names for everyone on the returned paths. Lookups
// go through the cache-backed provider, so they are usually free.
func (f *Finder) names(ctx context.Context, paths []types.KinshipPath) map[string]string {
	names := make(map[string]string)
	for _, p := range paths {
		for _, v := range p.Nodes {
			for _, id := range v.Members() {
				if _, done := names[id]; done {
					continue
				}
				names[id] = f.provider.FetchRelatives(ctx, types.PersonID(id)).Name
			}
		}
	}
	for id, n := range names {
		if n == "" {
			delete(names, id)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

// FillDegreeLabels sets the degree and label of every path that lacks one,
// using its meeting index. Results saved by older versions carry no labels.
func FillDegreeLabels(paths []types.KinshipPath, locale string) {
	for i := range paths {
		p := &paths[i]
		if p.DegreeLabel != "" || len(p.Nodes) == 0 {
			continue
		}
		if p.MeetingIndex < 0 || p.MeetingIndex >= len(p.Nodes) {
			continue
		}
		p.Degree = LabelPath(len(p.Nodes), p.MeetingIndex)
		p.DegreeLabel = Label(p.Degree, locale)
	}
}
