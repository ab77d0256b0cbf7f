// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphdb

import (
	"context"
	"fmt"

	"github.com/pdiddy/kinpath/pkg/types"
)

// Cypher used by kinpath. Persons are keyed by id; PARENT_OF points from
// parent to child and SPOUSE_OF is stored once per couple.
const (
	constraintCypher = `CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE`

	mergePersonsCypher = `UNWIND $rows AS row
MERGE (p:Person {id: row.id})
SET p.name = row.name`

	mergeParentsCypher = `UNWIND $rows AS row
MATCH (c:Person {id: row.child})
MERGE (p:Person {id: row.parent})
MERGE (p)-[:PARENT_OF]->(c)`

	mergeSpousesCypher = `UNWIND $rows AS row
MATCH (a:Person {id: row.a})
MERGE (b:Person {id: row.b})
MERGE (a)-[:SPOUSE_OF]-(b)`

	relativesCypher = `MATCH (p:Person {id: $id})
OPTIONAL MATCH (par:Person)-[:PARENT_OF]->(p)
WITH p, collect(DISTINCT par.id) AS parents
OPTIONAL MATCH (p)-[:PARENT_OF]->(ch:Person)
WITH p, parents, collect(DISTINCT ch.id) AS children
OPTIONAL MATCH (p)-[:SPOUSE_OF]-(sp:Person)
RETURN p.id AS id, p.name AS name, parents, children, collect(DISTINCT sp.id) AS spouses`

	countCypher = `MATCH (p:Person) RETURN count(p) AS persons`
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 500

// ImportStats counts what an import wrote.
type ImportStats struct {
	Persons     int
	ParentLinks int
	SpouseLinks int
}

// ImportTree merges the given records into the graph. It is idempotent:
// re-importing the same tree leaves the graph unchanged.
func ImportTree(ctx context.Context, c Client, records []types.RelativesRecord, batchSize int) (ImportStats, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var stats ImportStats

	if _, err := c.Write(ctx, constraintCypher, nil); err != nil {
		return stats, fmt.Errorf("creating person constraint: %w", err)
	}

	var persons, parents, spouses []map[string]any
	seenCouple := make(map[[2]types.PersonID]bool)
	for _, r := range records {
		persons = append(persons, map[string]any{"id": string(r.PersonID), "name": r.Name})
		for _, p := range r.Parents {
			parents = append(parents, map[string]any{"child": string(r.PersonID), "parent": string(p)})
		}
		for _, s := range r.Spouses {
			key := types.CoupleNode(r.PersonID, s).IDs
			if seenCouple[key] {
				continue
			}
			seenCouple[key] = true
			spouses = append(spouses, map[string]any{"a": string(key[0]), "b": string(key[1])})
		}
	}

	steps := []struct {
		what   string
		cypher string
		rows   []map[string]any
		count  *int
	}{
		{"persons", mergePersonsCypher, persons, &stats.Persons},
		{"parent links", mergeParentsCypher, parents, &stats.ParentLinks},
		{"spouse links", mergeSpousesCypher, spouses, &stats.SpouseLinks},
	}
	for _, step := range steps {
		for start := 0; start < len(step.rows); start += batchSize {
			end := min(start+batchSize, len(step.rows))
			if _, err := c.Write(ctx, step.cypher, map[string]any{"rows": step.rows[start:end]}); err != nil {
				return stats, fmt.Errorf("importing %s: %w", step.what, err)
			}
			*step.count += end - start
		}
	}
	return stats, nil
}

// Relatives reads one person's parents, children and spouses. found is
// false when the person is not in the graph.
func Relatives(ctx context.Context, c Client, id types.PersonID) (rec types.RelativesRecord, found bool, err error) {
	rows, err := c.Read(ctx, relativesCypher, map[string]any{"id": string(id)})
	if err != nil {
		return types.FailedRecord(id), false, fmt.Errorf("reading relatives of %s: %w", id, err)
	}
	if len(rows) == 0 {
		return types.FailedRecord(id), false, nil
	}
	row := rows[0]
	name, _ := row["name"].(string)
	return types.RelativesRecord{
		PersonID:  id,
		Name:      name,
		Parents:   types.UniqueIDs(id, toIDs(row["parents"])),
		Children:  types.UniqueIDs(id, toIDs(row["children"])),
		Spouses:   types.UniqueIDs(id, toIDs(row["spouses"])),
		FetchedOK: true,
	}, true, nil
}

// CountPersons returns the number of Person nodes.
func CountPersons(ctx context.Context, c Client) (int64, error) {
	rows, err := c.Read(ctx, countCypher, nil)
	if err != nil {
		return 0, fmt.Errorf("counting persons: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, _ := rows[0]["persons"].(int64)
	return n, nil
}

func toIDs(v any) []types.PersonID {
	switch vals := v.(type) {
	case []any:
		out := make([]types.PersonID, 0, len(vals))
		for _, x := range vals {
			if s, ok := x.(string); ok {
				out = append(out, types.PersonID(s))
			}
		}
		return out
	case []string:
		out := make([]types.PersonID, len(vals))
		for i, s := range vals {
			out[i] = types.PersonID(s)
		}
		return out
	}
	return nil
}
