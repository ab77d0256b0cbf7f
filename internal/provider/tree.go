// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kinpath/pkg/types"
)

// TreePerson is one entry of a tree file. Children are not listed; they are
// derived from the parents of every other entry.
type TreePerson struct {
	ID      types.PersonID   `yaml:"id"`
	Name    string           `yaml:"name,omitempty"`
	Parents []types.PersonID `yaml:"parents,omitempty"`
	Spouses []types.PersonID `yaml:"spouses,omitempty"`
}

// TreeFile is the on-disk YAML layout:
//
//	persons:
//	  - id: P1
//	    name: Ana
//	    parents: [P3, P4]
//	    spouses: [P2]
type TreeFile struct {
	Persons []TreePerson `yaml:"persons"`
}

// Tree is an in-memory family tree that serves lookups without any network
// access. It is used for offline runs, tests and as the source for graph
// imports.
type Tree struct {
	records map[types.PersonID]types.RelativesRecord
	order   []types.PersonID
}

// ReadTreeFile parses a YAML tree file without indexing it.
func ReadTreeFile(path string) (TreeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TreeFile{}, fmt.Errorf("reading tree file %s: %w", path, err)
	}
	var tf TreeFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return TreeFile{}, fmt.Errorf("parsing tree file %s: %w", path, err)
	}
	return tf, nil
}

// LoadTree reads and indexes a YAML tree file.
func LoadTree(path string) (*Tree, error) {
	tf, err := ReadTreeFile(path)
	if err != nil {
		return nil, err
	}
	return NewTree(tf), nil
}

// NewTree indexes a tree. Spouse links are made symmetric and children are
// derived from parent links. References to ids without their own entry still
// produce a record so that the search can walk through them.
func NewTree(tf TreeFile) *Tree {
	parents := make(map[types.PersonID][]types.PersonID)
	children := make(map[types.PersonID][]types.PersonID)
	spouses := make(map[types.PersonID][]types.PersonID)
	names := make(map[types.PersonID]string)
	var order []types.PersonID
	seen := make(map[types.PersonID]bool)

	note := func(id types.PersonID) {
		if id.IsZero() || seen[id] {
			return
		}
		seen[id] = true
		order = append(order, id)
	}

	for _, p := range tf.Persons {
		id := types.PersonID(strings.TrimSpace(string(p.ID)))
		note(id)
		if p.Name != "" {
			names[id] = p.Name
		}
		for _, par := range p.Parents {
			note(par)
			parents[id] = append(parents[id], par)
			children[par] = append(children[par], id)
		}
		for _, sp := range p.Spouses {
			note(sp)
			spouses[id] = append(spouses[id], sp)
			spouses[sp] = append(spouses[sp], id)
		}
	}

	t := &Tree{records: make(map[types.PersonID]types.RelativesRecord, len(order)), order: order}
	for _, id := range order {
		t.records[id] = types.RelativesRecord{
			PersonID:  id,
			Name:      names[id],
			Parents:   types.UniqueIDs(id, parents[id]),
			Children:  types.UniqueIDs(id, children[id]),
			Spouses:   types.UniqueIDs(id, spouses[id]),
			FetchedOK: true,
		}
	}
	return t
}

// Name returns "tree".
func (t *Tree) Name() string { return string(types.ProviderTree) }

// FetchRelatives returns the indexed record, or a failed record for an
// unknown id.
func (t *Tree) FetchRelatives(ctx context.Context, id types.PersonID) types.RelativesRecord {
	if ctx.Err() != nil {
		return types.FailedRecord(id)
	}
	rec, ok := t.records[id]
	if !ok {
		return types.FailedRecord(id)
	}
	return rec
}

// Len returns the number of people in the tree.
func (t *Tree) Len() int { return len(t.order) }

// Records returns every record in file order.
func (t *Tree) Records() []types.RelativesRecord {
	out := make([]types.RelativesRecord, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.records[id])
	}
	return out
}

// Check reports structural problems in a tree file: duplicate entries,
// people listed as their own parent or spouse, more than two parents, and
// parent cycles. An empty slice means the tree is usable.
func Check(tf TreeFile) []string {
	var problems []string
	declared := make(map[types.PersonID]int)
	for _, p := range tf.Persons {
		declared[p.ID]++
	}
	ids := make([]string, 0, len(declared))
	for id, n := range declared {
		if n > 1 {
			ids = append(ids, string(id))
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		problems = append(problems, fmt.Sprintf("%s: declared %d times", id, declared[types.PersonID(id)]))
	}

	for _, p := range tf.Persons {
		if p.ID.IsZero() {
			problems = append(problems, "entry with empty id")
			continue
		}
		for _, par := range p.Parents {
			if par == p.ID {
				problems = append(problems, fmt.Sprintf("%s: listed as own parent", p.ID))
			}
		}
		for _, sp := range p.Spouses {
			if sp == p.ID {
				problems = append(problems, fmt.Sprintf("%s: listed as own spouse", p.ID))
			}
		}
		if n := len(types.UniqueIDs(p.ID, p.Parents)); n > 2 {
			problems = append(problems, fmt.Sprintf("%s: has %d parents", p.ID, n))
		}
	}

	tree := NewTree(tf)
	if cyc := tree.findParentCycle(); len(cyc) > 0 {
		parts := make([]string, len(cyc))
		for i, id := range cyc {
			parts[i] = string(id)
		}
		problems = append(problems, "parent cycle: "+strings.Join(parts, " -> "))
	}
	return problems
}

// findParentCycle returns one cycle in the parent relation, or nil.
func (t *Tree) findParentCycle() []types.PersonID {
	const (
		white = iota
		grey
		black
	)
	color := make(map[types.PersonID]int, len(t.order))
	var stack []types.PersonID
	var cycle []types.PersonID

	var visit func(id types.PersonID) bool
	visit = func(id types.PersonID) bool {
		color[id] = grey
		stack = append(stack, id)
		for _, par := range t.records[id].Parents {
			switch color[par] {
			case grey:
				for i, s := range stack {
					if s == par {
						cycle = append(append(cycle, stack[i:]...), par)
						return true
					}
				}
			case white:
				if visit(par) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range t.order {
		if color[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}
