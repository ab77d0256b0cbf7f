// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinship

import (
	"context"
	"fmt"

	"github.com/pdiddy/kinpath/internal/provider"
	"github.com/pdiddy/kinpath/pkg/types"
)

// person is shorthand for a tree entry in tests.
func person(id string, parents []string, spouses ...string) provider.TreePerson {
	p := provider.TreePerson{ID: types.PersonID(id)}
	for _, par := range parents {
		p.Parents = append(p.Parents, types.PersonID(par))
	}
	for _, s := range spouses {
		p.Spouses = append(p.Spouses, types.PersonID(s))
	}
	return p
}

func tree(persons ...provider.TreePerson) *provider.Tree {
	return provider.NewTree(provider.TreeFile{Persons: persons})
}

// doubleCousins returns a tree where X and Y are first cousins twice over:
// their fathers are brothers (children of GF+GM) and their mothers are
// sisters (children of HF+HM).
func doubleCousins(withMarriages bool) *provider.Tree {
	var gSpouse, hSpouse []string
	if withMarriages {
		gSpouse, hSpouse = []string{"GM"}, []string{"HM"}
	}
	return tree(
		person("X", []string{"XF", "XM"}),
		person("Y", []string{"YF", "YM"}),
		person("XF", []string{"GF", "GM"}),
		person("YF", []string{"GF", "GM"}),
		person("XM", []string{"HF", "HM"}),
		person("YM", []string{"HF", "HM"}),
		person("GF", nil, gSpouse...),
		person("HF", nil, hSpouse...),
	)
}

// chain returns a tree where prefix0's parent is prefix1 and so on up to
// prefix<n>.
func chain(prefix string, n int) []provider.TreePerson {
	var out []provider.TreePerson
	for i := 0; i < n; i++ {
		out = append(out, person(fmt.Sprintf("%s%d", prefix, i), []string{fmt.Sprintf("%s%d", prefix, i+1)}))
	}
	return out
}

// binaryAncestry has every person X with parents X0 and X1, forever.
func binaryAncestry() provider.Provider {
	return provider.Func(func(_ context.Context, id types.PersonID) types.RelativesRecord {
		return types.RelativesRecord{
			PersonID:  id,
			Parents:   []types.PersonID{id + "0", id + "1"},
			FetchedOK: true,
		}
	})
}

// failing reports every lookup as failed.
func failing() provider.Provider {
	return provider.Func(func(_ context.Context, id types.PersonID) types.RelativesRecord {
		return types.FailedRecord(id)
	})
}

func ids(p types.Path) []string {
	out := make([]string, len(p))
	for i, n := range p {
		out[i] = n.String()
	}
	return out
}
