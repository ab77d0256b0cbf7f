// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinship

import "github.com/pdiddy/kinpath/pkg/types"

// DefaultVariantsPerNode caps the partial paths kept per person per side.
const DefaultVariantsPerNode = 16

// signatureLen is how many trailing ids identify a path variant.
const signatureLen = 3

type signature [signatureLen]types.PersonID

// pathSignature returns the last up-to-three ids of path, padded with "".
func pathSignature(path []types.PersonID) signature {
	var sig signature
	start := max(len(path)-signatureLen, 0)
	copy(sig[:], path[start:])
	return sig
}

// variantTracker records, for one side of the search, the partial paths
// that reached each person. A person keeps at most k paths, and two paths
// with the same final three ids count as one.
type variantTracker struct {
	k     int
	paths map[types.PersonID][][]types.PersonID
	sigs  map[types.PersonID]map[signature]struct{}
}

func newVariantTracker(k int) *variantTracker {
	if k <= 0 {
		k = DefaultVariantsPerNode
	}
	return &variantTracker{
		k:     k,
		paths: make(map[types.PersonID][][]types.PersonID),
		sigs:  make(map[types.PersonID]map[signature]struct{}),
	}
}

// TryAdd stores path as a way to reach node and reports whether it was
// accepted. Rejections are expected and silent.
func (v *variantTracker) TryAdd(node types.PersonID, path []types.PersonID) bool {
	sigs, seen := v.sigs[node]
	if !seen {
		v.sigs[node] = map[signature]struct{}{pathSignature(path): {}}
		v.paths[node] = [][]types.PersonID{path}
		return true
	}
	if len(v.paths[node]) >= v.k {
		return false
	}
	sig := pathSignature(path)
	if _, dup := sigs[sig]; dup {
		return false
	}
	sigs[sig] = struct{}{}
	v.paths[node] = append(v.paths[node], path)
	return true
}

// Paths returns the stored paths for node in insertion order.
func (v *variantTracker) Paths(node types.PersonID) [][]types.PersonID {
	return v.paths[node]
}

// Seen reports whether any path reached node.
func (v *variantTracker) Seen(node types.PersonID) bool {
	_, ok := v.paths[node]
	return ok
}
