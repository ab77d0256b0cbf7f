// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinship

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kinpath/internal/provider"
	"github.com/pdiddy/kinpath/pkg/types"
)

func TestFindPathsIdentity(t *testing.T) {
	s := NewSearcher(failing())
	out := s.FindPaths(context.Background(), "A", "A", 4)

	require.Len(t, out.Candidates, 1)
	assert.Equal(t, types.PathOf("A"), out.Candidates[0].Path)
	assert.Equal(t, 0, out.Candidates[0].MeetingIndex)
	assert.False(t, out.Truncated)
}

func TestFindPathsParentIsEnd(t *testing.T) {
	s := NewSearcher(tree(person("S", []string{"E"})))
	out := s.FindPaths(context.Background(), "S", "E", 8)

	require.Len(t, out.Candidates, 1)
	assert.Equal(t, []string{"S", "E"}, ids(out.Candidates[0].Path))
	assert.Equal(t, 1, out.Candidates[0].MeetingIndex)
	assert.Equal(t, 1, out.Rounds)
	assert.False(t, out.Truncated)
}

func TestFindPathsEndIsDescendant(t *testing.T) {
	s := NewSearcher(tree(person("E", []string{"S"})))
	out := s.FindPaths(context.Background(), "S", "E", 8)

	require.NotEmpty(t, out.Candidates)
	assert.Equal(t, []string{"S", "E"}, ids(out.Candidates[0].Path))
	assert.Equal(t, 0, out.Candidates[0].MeetingIndex)
}

func TestFindPathsSiblings(t *testing.T) {
	s := NewSearcher(tree(
		person("A", []string{"P"}),
		person("B", []string{"P"}),
	))
	out := s.FindPaths(context.Background(), "A", "B", 8)

	require.NotEmpty(t, out.Candidates)
	for _, c := range out.Candidates {
		assert.Equal(t, []string{"A", "P", "B"}, ids(c.Path))
		assert.Equal(t, 1, c.MeetingIndex)
		assert.Equal(t, "P", c.MeetingPoint().String())
	}
	assert.Equal(t, 2, out.Rounds, "search stops after the round with an intersection")
}

func TestFindPathsUnevenDepths(t *testing.T) {
	// A's grandparent G is B's parent: aunt/uncle shape.
	s := NewSearcher(tree(
		person("A", []string{"M"}),
		person("M", []string{"G"}),
		person("B", []string{"G"}),
	))
	out := s.FindPaths(context.Background(), "A", "B", 8)

	require.NotEmpty(t, out.Candidates)
	c := out.Candidates[0]
	assert.Equal(t, []string{"A", "M", "G", "B"}, ids(c.Path))
	assert.Equal(t, 2, c.MeetingIndex)
}

func TestFindPathsDoubleCousins(t *testing.T) {
	s := NewSearcher(doubleCousins(false))
	out := s.FindPaths(context.Background(), "X", "Y", 8)

	got := map[string]int{}
	for _, c := range out.Candidates {
		assert.True(t, c.Path.IsAcyclic())
		assert.Equal(t, 2, c.MeetingIndex)
		got[c.Path.String()]++
	}
	assert.Contains(t, got, "X -> XF -> GF -> YF -> Y")
	assert.Contains(t, got, "X -> XF -> GM -> YF -> Y")
	assert.Contains(t, got, "X -> XM -> HF -> YM -> Y")
	assert.Contains(t, got, "X -> XM -> HM -> YM -> Y")
	assert.Equal(t, 3, out.Rounds)
}

func TestFindPathsAllLookupsFail(t *testing.T) {
	s := NewSearcher(failing())
	out := s.FindPaths(context.Background(), "A", "B", 8)

	assert.Empty(t, out.Candidates)
	assert.False(t, out.Truncated, "exhausted frontiers are not a truncation")
	assert.Equal(t, 1, out.Rounds)
}

func TestFindPathsDepthBudget(t *testing.T) {
	persons := append(chain("A", 20), chain("B", 20)...)
	s := NewSearcher(tree(persons...))
	out := s.FindPaths(context.Background(), "A0", "B0", 3)

	assert.Empty(t, out.Candidates)
	assert.True(t, out.Truncated)
	assert.Equal(t, types.ReasonMaxDepth, out.Reason)
	assert.Equal(t, 3, out.Rounds)
}

func TestFindPathsDefaultDepth(t *testing.T) {
	persons := append(chain("A", 20), chain("B", 20)...)
	s := NewSearcher(tree(persons...))
	out := s.FindPaths(context.Background(), "A0", "B0", 0)
	assert.Equal(t, DefaultMaxDepth, out.Rounds)
}

func TestFindPathsNodeBudget(t *testing.T) {
	s := NewSearcher(binaryAncestry(), WithMaxNodes(10))
	out := s.FindPaths(context.Background(), "A", "B", 20)

	assert.True(t, out.Truncated)
	assert.Equal(t, types.ReasonMaxNodes, out.Reason)
	assert.Equal(t, 10, out.Expanded)
	assert.Empty(t, out.Candidates)
}

func TestFindPathsCandidateBudget(t *testing.T) {
	s := NewSearcher(doubleCousins(false), WithMaxCandidates(2))
	out := s.FindPaths(context.Background(), "X", "Y", 8)

	assert.Len(t, out.Candidates, 2)
	assert.True(t, out.Truncated)
	assert.Equal(t, types.ReasonMaxCandidates, out.Reason)
}

func TestFindPathsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSearcher(binaryAncestry())
	out := s.FindPaths(ctx, "A", "B", 8)

	assert.True(t, out.Truncated)
	assert.Equal(t, types.ReasonDeadline, out.Reason)
	assert.Empty(t, out.Candidates)
}

// stallingOn answers from p but blocks on the given id until the lookup's
// context is done.
func stallingOn(p provider.Provider, slow types.PersonID) provider.Provider {
	return provider.Func(func(ctx context.Context, id types.PersonID) types.RelativesRecord {
		if id == slow {
			<-ctx.Done()
			return types.FailedRecord(id)
		}
		return p.FetchRelatives(ctx, id)
	})
}

func TestFindPathsTimeoutKeepsCandidates(t *testing.T) {
	// A and B share parent P; B's other parent Q never answers. Frontier 1
	// meets P in round 2, then frontier 2 stalls on Q in the same round.
	family := tree(
		person("A", []string{"P"}),
		person("B", []string{"P", "Q"}),
	)
	s := NewSearcher(stallingOn(family, "Q"), WithTimeout(50*time.Millisecond))
	out := s.FindPaths(context.Background(), "A", "B", 8)

	assert.True(t, out.Truncated)
	assert.Equal(t, types.ReasonDeadline, out.Reason)
	assert.Equal(t, 2, out.Rounds)
	require.Len(t, out.Candidates, 1, "candidates found before the deadline are kept")
	assert.Equal(t, []string{"A", "P", "B"}, ids(out.Candidates[0].Path))
	assert.Equal(t, 1, out.Candidates[0].MeetingIndex)
}

func TestFindPathsTimeoutBeforeAnyCandidate(t *testing.T) {
	s := NewSearcher(stallingOn(binaryAncestry(), "A"), WithTimeout(20*time.Millisecond))
	out := s.FindPaths(context.Background(), "A", "B", 8)

	assert.True(t, out.Truncated)
	assert.Equal(t, types.ReasonDeadline, out.Reason)
	assert.Equal(t, 1, out.Rounds)
	assert.Empty(t, out.Candidates)
}

func TestFindPathsDeterministic(t *testing.T) {
	s := NewSearcher(doubleCousins(false), WithConcurrency(4))
	first := s.FindPaths(context.Background(), "X", "Y", 8)
	for i := 0; i < 5; i++ {
		again := s.FindPaths(context.Background(), "X", "Y", 8)
		require.Equal(t, len(first.Candidates), len(again.Candidates))
		for j := range first.Candidates {
			assert.True(t, first.Candidates[j].Path.Equal(again.Candidates[j].Path))
		}
	}
}

func TestFindPathsSkipsParentCycles(t *testing.T) {
	// Bad data: A and P list each other as parents.
	s := NewSearcher(tree(
		person("A", []string{"P"}),
		person("P", []string{"A", "G"}),
		person("B", []string{"G"}),
	))
	out := s.FindPaths(context.Background(), "A", "B", 8)

	require.NotEmpty(t, out.Candidates)
	for _, c := range out.Candidates {
		assert.True(t, c.Path.IsAcyclic(), c.Path.String())
	}
}
