// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kinpath/pkg/types"
)

func person(id string) types.PathNodeView { return types.PathNodeView{ID: id} }

func couple(a, b string) types.PathNodeView {
	return types.PathNodeView{IDs: []string{a, b}, IsCouple: true}
}

func cousinsResult() types.Result {
	return types.Result{
		StartID:  "X",
		EndID:    "Y",
		MaxDepth: 8,
		Method:   types.MethodBidirectional,
		Paths: []types.KinshipPath{{
			Nodes:        []types.PathNodeView{person("X"), person("XF"), couple("GF", "GM"), person("YF"), person("Y")},
			MeetingIndex: 2,
			DegreeLabel:  "1st cousin",
		}},
		Stats: types.SearchStats{Rounds: 3, Expanded: 12, Elapsed: 40 * time.Millisecond},
		Names: map[string]string{"X": "Xavier", "GF": "Gus", "GM": "Gina"},
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(cousinsResult(), &buf)
	out := buf.String()

	assert.Contains(t, out, "Relationship")
	assert.Contains(t, out, "1st cousin")
	assert.Contains(t, out, "Gus (GF) & Gina (GM)")
	assert.Contains(t, out, "Xavier (X) -> XF -> Gus (GF) & Gina (GM) -> YF -> Y")
	assert.Contains(t, out, "1 paths via bidirectional, 3 rounds, 12 nodes expanded in 40ms")
}

func TestFormatTableNoPaths(t *testing.T) {
	tests := []struct {
		name string
		res  types.Result
		want string
	}{
		{"exhausted", types.Result{StartID: "A", EndID: "B"}, "No relationship found between A and B\n"},
		{"truncated", types.Result{StartID: "A", EndID: "B", Truncated: true, TruncationReason: types.ReasonMaxDepth},
			"No relationship found between A and B (search stopped: max_depth)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTable(tt.res, &buf)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(cousinsResult(), &buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "X", decoded["start_id"])

	paths := decoded["paths"].([]any)
	require.Len(t, paths, 1)
	nodes := paths[0].(map[string]any)["path"].([]any)
	assert.Equal(t, map[string]any{"id": "X", "is_couple": false}, nodes[0])
	assert.Equal(t, map[string]any{"ids": []any{"GF", "GM"}, "is_couple": true}, nodes[2])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmno", 10))
	assert.Equal(t, "Tio/Tia ↔ ...", truncate("Tio/Tia ↔ Sobrinho(a)", 13))
}

func TestMermaidCouple(t *testing.T) {
	got := Mermaid(cousinsResult().Paths[0], cousinsResult().Names)
	want := strings.Join([]string{
		"flowchart TD",
		`C_GF_GM["Gus & Gina"]`,
		"style C_GF_GM " + styleAncestor,
		`XF["XF"]`,
		"C_GF_GM --> XF",
		`X["Xavier"]`,
		"XF --> X",
		`YF["YF"]`,
		"C_GF_GM --> YF",
		`Y["Y"]`,
		"YF --> Y",
		"style X " + styleStart,
		"style Y " + styleEnd,
	}, "\n")
	assert.Equal(t, want, got)
}

func TestMermaidDirectLine(t *testing.T) {
	p := types.KinshipPath{Nodes: []types.PathNodeView{person("KWCJ-RN4"), person("9ABC-123")}, MeetingIndex: 1}
	got := Mermaid(p, nil)
	want := strings.Join([]string{
		"flowchart TD",
		`N_9ABC_123["9ABC-123"]`,
		"style N_9ABC_123 " + styleAncestor,
		`KWCJ_RN4["KWCJ-RN4"]`,
		"N_9ABC_123 --> KWCJ_RN4",
		"style KWCJ_RN4 " + styleStart,
	}, "\n")
	assert.Equal(t, want, got)
}

func TestMermaidWithoutMeetingPoint(t *testing.T) {
	p := types.KinshipPath{Nodes: []types.PathNodeView{person("A"), person("B")}, MeetingIndex: -1}
	got := Mermaid(p, nil)
	assert.Equal(t, strings.Join([]string{
		"flowchart TD",
		`A["A"]`,
		`B["B"]`,
		"A --> B",
		"style A " + styleStart,
		"style B " + styleEnd,
	}, "\n"), got)
}

func TestMermaidEmpty(t *testing.T) {
	assert.Equal(t, "flowchart TD", Mermaid(types.KinshipPath{}, nil))
}

func TestFormatMermaid(t *testing.T) {
	var buf bytes.Buffer
	FormatMermaid(cousinsResult(), &buf)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "1. 1st cousin\n\n```mermaid\nflowchart TD\n"))
	assert.True(t, strings.HasSuffix(out, "```\n"))
}

func TestSanitizeID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"KWCJ-RN4", "KWCJ_RN4"},
		{"GF+GM", "GF_GM"},
		{"123", "N_123"},
		{"", "N_"},
		{"_x", "N__x"},
		{"José", "Jos_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeID(tt.in), tt.in)
	}
}

func TestEscapeLabel(t *testing.T) {
	assert.Equal(t, `Ana \"Nina\" Souza`, escapeLabel(`Ana "Nina" Souza`))
	assert.Equal(t, "a  &  b", escapeLabel("a ↔ b"))
	assert.Equal(t, "line one line two", escapeLabel("line one\nline two"))
}
