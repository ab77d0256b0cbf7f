// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for kinpath: person
// identifiers, relative records, kinship paths, search results and
// configuration.
package types

import "strings"

// PersonID is the opaque identifier a relative provider assigns to a person
// (e.g. a FamilySearch tree id such as "KWCJ-RN4"). Only equality is
// meaningful.
type PersonID string

// String returns the identifier as a plain string.
func (id PersonID) String() string { return string(id) }

// IsZero reports whether the identifier is empty after trimming whitespace.
func (id PersonID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// RelativesRecord holds the immediate relatives of one person as returned by
// a provider. Records are treated as immutable once cached.
type RelativesRecord struct {
	// PersonID is the person the record describes.
	PersonID PersonID `json:"person_id" yaml:"person_id"`

	// Name is the provider's display name, when known.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Parents lists the person's parents in provider order.
	Parents []PersonID `json:"parents,omitempty" yaml:"parents,omitempty"`

	// Children lists the person's children in provider order.
	Children []PersonID `json:"children,omitempty" yaml:"children,omitempty"`

	// Spouses lists the person's spouses in provider order.
	Spouses []PersonID `json:"spouses,omitempty" yaml:"spouses,omitempty"`

	// FetchedOK is false when the lookup failed. Failed records carry no
	// relatives and are still cached so a failing id is not retried on every
	// visit.
	FetchedOK bool `json:"fetched_ok" yaml:"fetched_ok"`
}

// FailedRecord returns the record a provider reports when a lookup fails.
func FailedRecord(id PersonID) RelativesRecord {
	return RelativesRecord{PersonID: id}
}

// HasSpouse reports whether other is listed among the record's spouses.
func (r RelativesRecord) HasSpouse(other PersonID) bool {
	for _, s := range r.Spouses {
		if s == other {
			return true
		}
	}
	return false
}

// UniqueIDs returns ids with duplicates, empty ids and self removed,
// preserving first-seen order.
func UniqueIDs(self PersonID, ids []PersonID) []PersonID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[PersonID]struct{}, len(ids))
	out := make([]PersonID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || id == self {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
