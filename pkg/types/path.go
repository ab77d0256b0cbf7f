// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"strings"
)

// NodeKind distinguishes a single person from a consolidated couple.
type NodeKind int

const (
	NodePerson NodeKind = iota
	NodeCouple
)

func (k NodeKind) String() string {
	if k == NodeCouple {
		return "couple"
	}
	return "person"
}

// PathNode is one step of a kinship path: either a single person or a couple
// of spouses merged during post-processing. Couple ids are stored sorted so
// that two couples with the same members compare equal.
type PathNode struct {
	Kind NodeKind
	IDs  [2]PersonID
}

// PersonNode returns a single-person node.
func PersonNode(id PersonID) PathNode {
	return PathNode{Kind: NodePerson, IDs: [2]PersonID{id}}
}

// CoupleNode returns a couple node for two spouses, in either order.
func CoupleNode(a, b PersonID) PathNode {
	if b < a {
		a, b = b, a
	}
	return PathNode{Kind: NodeCouple, IDs: [2]PersonID{a, b}}
}

// IsCouple reports whether the node is a couple.
func (n PathNode) IsCouple() bool { return n.Kind == NodeCouple }

// ID returns the person id of a single-person node, or the first spouse of a
// couple.
func (n PathNode) ID() PersonID { return n.IDs[0] }

// Members returns the person ids the node stands for.
func (n PathNode) Members() []PersonID {
	if n.IsCouple() {
		return []PersonID{n.IDs[0], n.IDs[1]}
	}
	return []PersonID{n.IDs[0]}
}

// Contains reports whether id is one of the node's members.
func (n PathNode) Contains(id PersonID) bool {
	if n.IDs[0] == id {
		return true
	}
	return n.IsCouple() && n.IDs[1] == id
}

// String renders a person as its id and a couple as "a+b".
func (n PathNode) String() string {
	if n.IsCouple() {
		return string(n.IDs[0]) + "+" + string(n.IDs[1])
	}
	return string(n.IDs[0])
}

// View converts the node into its presentation form.
func (n PathNode) View() PathNodeView {
	if n.IsCouple() {
		return PathNodeView{IDs: []string{string(n.IDs[0]), string(n.IDs[1])}, IsCouple: true}
	}
	return PathNodeView{ID: string(n.IDs[0])}
}

// Path is an ordered sequence of nodes from the start person to the end
// person, both inclusive.
type Path []PathNode

// PathOf builds a path of single-person nodes.
func PathOf(ids ...PersonID) Path {
	p := make(Path, len(ids))
	for i, id := range ids {
		p[i] = PersonNode(id)
	}
	return p
}

// PersonIDs flattens the path into the person ids it covers, couples
// contributing both members.
func (p Path) PersonIDs() []PersonID {
	ids := make([]PersonID, 0, len(p)+1)
	for _, n := range p {
		ids = append(ids, n.Members()...)
	}
	return ids
}

// IsAcyclic reports whether no person id appears twice in the path.
func (p Path) IsAcyclic() bool {
	seen := make(map[PersonID]struct{}, len(p)+1)
	for _, id := range p.PersonIDs() {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

// NodeSetKey returns an order-independent signature of the person ids in the
// path. Two paths with the same key visit exactly the same people.
func (p Path) NodeSetKey() string {
	ids := p.PersonIDs()
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = string(id)
	}
	sort.Strings(strs)
	return strings.Join(strs, "\x1f")
}

// Equal reports whether two paths have the same nodes in the same order.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the path that shares no backing array.
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

// String renders the path as "a -> b -> c".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = n.String()
	}
	return strings.Join(parts, " -> ")
}

// PathCandidate is a complete path found by the search together with the
// index of the node where the two frontiers met.
type PathCandidate struct {
	Path         Path
	MeetingIndex int
}

// MeetingPoint returns the node at which the frontiers met.
func (c PathCandidate) MeetingPoint() PathNode {
	return c.Path[c.MeetingIndex]
}

// PathNodeView is the presentation form of a PathNode: {id, is_couple:false}
// or {ids:[a,b], is_couple:true}.
type PathNodeView struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	IDs      []string `json:"ids,omitempty" yaml:"ids,omitempty"`
	IsCouple bool     `json:"is_couple" yaml:"is_couple"`
}

// Members returns the person ids shown by the view.
func (v PathNodeView) Members() []string {
	if v.IsCouple {
		return v.IDs
	}
	return []string{v.ID}
}

// Key returns "a" for a person and "a+b" for a couple.
func (v PathNodeView) Key() string {
	return strings.Join(v.Members(), "+")
}
