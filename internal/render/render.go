// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render presents kinship results as a text table, JSON or Mermaid
// flowcharts. It only reads path views and labels; it never calls a
// provider.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/kinpath/pkg/types"
)

// FormatTable writes a result as a human-readable table to w.
func FormatTable(res types.Result, w io.Writer) {
	if !res.Found() {
		fmt.Fprintf(w, "No relationship found between %s and %s", res.StartID, res.EndID)
		if res.Truncated {
			fmt.Fprintf(w, " (search stopped: %s)", res.TruncationReason)
		}
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "%-3s  %-40s  %-4s  %-30s  %s\n", "#", "Relationship", "Len", "Common ancestor", "Path")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for i, p := range res.Paths {
		fmt.Fprintf(w, "%-3d  %-40s  %-4d  %-30s  %s\n",
			i+1,
			truncate(p.DegreeLabel, 40),
			len(p.Nodes),
			truncate(DisplayName(p.MeetingPoint(), res.Names), 30),
			PathString(p, res.Names))
	}

	fmt.Fprintf(w, "\n%d paths via %s", len(res.Paths), res.Method)
	if res.Truncated {
		fmt.Fprintf(w, " (truncated: %s)", res.TruncationReason)
	}
	fmt.Fprintf(w, ", %d rounds, %d nodes expanded in %s\n",
		res.Stats.Rounds, res.Stats.Expanded, res.Stats.Elapsed.Round(time.Millisecond))
}

// FormatJSON writes a result as indented JSON to w.
func FormatJSON(res types.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// PathString renders a path as "A -> B -> C", using names when known.
func PathString(p types.KinshipPath, names map[string]string) string {
	parts := make([]string, len(p.Nodes))
	for i, v := range p.Nodes {
		parts[i] = DisplayName(v, names)
	}
	return strings.Join(parts, " -> ")
}

// DisplayName returns "Name (ID)" for a person, or both members joined
// with " & " for a couple. Ids without a name are shown bare.
func DisplayName(v types.PathNodeView, names map[string]string) string {
	members := v.Members()
	parts := make([]string, len(members))
	for i, id := range members {
		if n := names[id]; n != "" {
			parts[i] = fmt.Sprintf("%s (%s)", n, id)
		} else {
			parts[i] = id
		}
	}
	return strings.Join(parts, " & ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
