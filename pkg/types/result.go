// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Search methods recorded on a Result.
const (
	MethodBidirectional = "bidirectional"
	MethodRemoteFinder  = "remote_finder"
	MethodIdentity      = "identity"
)

// Truncation reasons recorded when a search stops on a budget.
const (
	ReasonMaxDepth      = "max_depth"
	ReasonMaxNodes      = "max_nodes"
	ReasonMaxCandidates = "max_candidates"
	ReasonDeadline      = "deadline"
)

// DegreeKind classifies a relationship by the generation distances from the
// meeting point.
type DegreeKind string

const (
	DegreeSelf       DegreeKind = "self"
	DegreeAscendant  DegreeKind = "ascendant"
	DegreeDescendant DegreeKind = "descendant"
	DegreeSiblings   DegreeKind = "siblings"
	DegreeCousin     DegreeKind = "cousin"
	DegreeAuntUncle  DegreeKind = "aunt_uncle"
	DegreeCollateral DegreeKind = "collateral"
)

// Degree is the structured form of a relationship label.
type Degree struct {
	Kind DegreeKind `json:"kind" yaml:"kind"`

	// D1 and D2 are the generation counts from the start and end person to
	// the meeting point.
	D1 int `json:"d1" yaml:"d1"`
	D2 int `json:"d2" yaml:"d2"`

	// Generations is set for direct lines.
	Generations int `json:"generations,omitempty" yaml:"generations,omitempty"`

	// Cousin is the cousin degree (1 for first cousins).
	Cousin int `json:"cousin,omitempty" yaml:"cousin,omitempty"`

	// Removed is |d1-d2| for collateral relationships.
	Removed int `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// KinshipPath is one labeled path in a search result.
type KinshipPath struct {
	Nodes        []PathNodeView `json:"path" yaml:"path"`
	MeetingIndex int            `json:"meeting_index" yaml:"meeting_index"`
	DegreeLabel  string         `json:"degree_label" yaml:"degree_label"`
	Degree       Degree         `json:"degree" yaml:"degree"`
}

// MeetingPoint returns the view of the meeting node, or the zero view when
// the index is out of range.
func (k KinshipPath) MeetingPoint() PathNodeView {
	if k.MeetingIndex < 0 || k.MeetingIndex >= len(k.Nodes) {
		return PathNodeView{}
	}
	return k.Nodes[k.MeetingIndex]
}

// SearchStats summarizes the work done by one search.
type SearchStats struct {
	Rounds        int           `json:"rounds" yaml:"rounds"`
	Expanded      int           `json:"expanded" yaml:"expanded"`
	RawCandidates int           `json:"raw_candidates" yaml:"raw_candidates"`
	Elapsed       time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Result is the outcome of a kinship search between two people.
type Result struct {
	StartID  PersonID      `json:"start_id" yaml:"start_id"`
	EndID    PersonID      `json:"end_id" yaml:"end_id"`
	MaxDepth int           `json:"max_depth" yaml:"max_depth"`
	Paths    []KinshipPath `json:"paths" yaml:"paths"`

	// Truncated is true when a budget or timeout cut the search short, so
	// an empty Paths does not prove there is no relationship.
	Truncated        bool   `json:"truncated" yaml:"truncated"`
	TruncationReason string `json:"truncation_reason,omitempty" yaml:"truncation_reason,omitempty"`

	Method string      `json:"method" yaml:"method"`
	Stats  SearchStats `json:"stats" yaml:"stats"`

	// Names maps person ids to display names gathered during the search.
	Names map[string]string `json:"names,omitempty" yaml:"names,omitempty"`
}

// Found reports whether at least one path was returned.
func (r Result) Found() bool { return len(r.Paths) > 0 }
