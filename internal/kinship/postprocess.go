// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinship

import (
	"context"
	"sort"

	"github.com/pdiddy/kinpath/internal/provider"
	"github.com/pdiddy/kinpath/pkg/types"
)

// Post-processing defaults.
const (
	DefaultKeepWithin = 3
	DefaultMaxPaths   = 8
)

// PostProcessor turns raw search candidates into the short list shown to a
// user: no cycles, no two paths over the same people, spouses merged into
// couples, only near-shortest paths, and varied shapes.
type PostProcessor struct {
	provider   provider.Provider
	keepWithin int
	maxPaths   int
}

// NewPostProcessor returns a PostProcessor that checks marriages through p.
// A negative keepWithin or non-positive maxPaths selects the default.
func NewPostProcessor(p provider.Provider, keepWithin, maxPaths int) *PostProcessor {
	if keepWithin < 0 {
		keepWithin = DefaultKeepWithin
	}
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	return &PostProcessor{provider: p, keepWithin: keepWithin, maxPaths: maxPaths}
}

// Process runs the pipeline. The returned paths are acyclic and have
// pairwise distinct node-sets.
func (pp *PostProcessor) Process(ctx context.Context, candidates []types.PathCandidate) []types.PathCandidate {
	valid := dedupeByNodeSet(candidates)
	if len(valid) == 0 {
		return nil
	}

	merged := dedupeByNodeSet(pp.consolidateCouples(ctx, valid))

	sort.SliceStable(merged, func(i, j int) bool {
		return len(merged[i].Path) < len(merged[j].Path)
	})
	limit := len(merged[0].Path) + pp.keepWithin
	var near []types.PathCandidate
	for _, c := range merged {
		if len(c.Path) <= limit {
			near = append(near, c)
		}
	}

	return pp.selectDiverse(near)
}

// dedupeByNodeSet drops cyclic paths and every path whose set of people
// was already seen, keeping the first occurrence.
func dedupeByNodeSet(candidates []types.PathCandidate) []types.PathCandidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]types.PathCandidate, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Path) == 0 || !c.Path.IsAcyclic() {
			continue
		}
		key := c.Path.NodeSetKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// consolidateCouples merges pairs of equal-length paths that differ in one
// position where the two people are married. The merged path keeps the
// meeting index of the earlier path; each path takes part in at most one
// merge.
func (pp *PostProcessor) consolidateCouples(ctx context.Context, paths []types.PathCandidate) []types.PathCandidate {
	used := make([]bool, len(paths))
	out := make([]types.PathCandidate, 0, len(paths))

	for i := range paths {
		if used[i] {
			continue
		}
		merged := false
		for j := i + 1; j < len(paths); j++ {
			if used[j] {
				continue
			}
			pos, ok := singleDifference(paths[i].Path, paths[j].Path)
			if !ok {
				continue
			}
			a, b := paths[i].Path[pos], paths[j].Path[pos]
			if a.IsCouple() || b.IsCouple() || !pp.spouses(ctx, a.ID(), b.ID()) {
				continue
			}
			path := paths[i].Path.Clone()
			path[pos] = types.CoupleNode(a.ID(), b.ID())
			out = append(out, types.PathCandidate{Path: path, MeetingIndex: paths[i].MeetingIndex})
			used[i], used[j] = true, true
			merged = true
			break
		}
		if !merged {
			out = append(out, paths[i])
		}
	}
	return out
}

// singleDifference returns the only index where a and b differ.
func singleDifference(a, b types.Path) (int, bool) {
	if len(a) != len(b) {
		return 0, false
	}
	pos, diffs := -1, 0
	for k := range a {
		if a[k] != b[k] {
			pos = k
			diffs++
			if diffs > 1 {
				return 0, false
			}
		}
	}
	return pos, diffs == 1
}

// spouses reports whether either person's record lists the other as a
// spouse.
func (pp *PostProcessor) spouses(ctx context.Context, a, b types.PersonID) bool {
	if pp.provider.FetchRelatives(ctx, a).HasSpouse(b) {
		return true
	}
	return pp.provider.FetchRelatives(ctx, b).HasSpouse(a)
}

// shape is the diversity key of a path: its first couple and the single
// person right after it.
type shape struct {
	couple types.PathNode
	next   types.PersonID
}

func shapeOf(p types.Path) shape {
	for i, n := range p {
		if !n.IsCouple() {
			continue
		}
		s := shape{couple: n}
		if i+1 < len(p) && !p[i+1].IsCouple() {
			s.next = p[i+1].ID()
		}
		return s
	}
	return shape{}
}

// selectDiverse keeps the first path of each shape, up to maxPaths. When
// that leaves at most one path out of several, the shortest maxPaths are
// returned instead.
func (pp *PostProcessor) selectDiverse(candidates []types.PathCandidate) []types.PathCandidate {
	seen := make(map[shape]struct{})
	var selected []types.PathCandidate
	for _, c := range candidates {
		sh := shapeOf(c.Path)
		if _, dup := seen[sh]; dup {
			continue
		}
		seen[sh] = struct{}{}
		selected = append(selected, c)
		if len(selected) >= pp.maxPaths {
			break
		}
	}

	if len(selected) <= 1 && len(candidates) > 1 {
		return candidates[:min(pp.maxPaths, len(candidates))]
	}
	return selected
}
