// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pdiddy/kinpath/pkg/types"
)

// Node fill styles.
const (
	styleAncestor = "fill:#fff9c4,stroke:#fbc02d,stroke-width:2px"
	styleStart    = "fill:#e8f5e9,stroke:#66bb6a,stroke-width:2px"
	styleEnd      = "fill:#ffebee,stroke:#ef5350,stroke-width:2px"
)

// Mermaid renders one path as a top-down flowchart rooted at the meeting
// point. A meeting couple is drawn as a single box; both branches descend
// from it to the start and end person.
func Mermaid(p types.KinshipPath, names map[string]string) string {
	g := &mermaidGraph{names: names, seen: make(map[string]bool)}
	g.line("flowchart TD")
	if len(p.Nodes) == 0 {
		return g.String()
	}

	if p.MeetingIndex < 0 || p.MeetingIndex >= len(p.Nodes) {
		ids := make([]string, len(p.Nodes))
		for i, v := range p.Nodes {
			ids[i] = g.node(v)
		}
		for i := 0; i+1 < len(ids); i++ {
			g.line("%s --> %s", ids[i], ids[i+1])
		}
		g.line("style %s %s", ids[0], styleStart)
		g.line("style %s %s", ids[len(ids)-1], styleEnd)
		return g.String()
	}

	root := g.node(p.Nodes[p.MeetingIndex])
	g.line("style %s %s", root, styleAncestor)

	prev := root
	for i := p.MeetingIndex - 1; i >= 0; i-- {
		cur := g.node(p.Nodes[i])
		g.line("%s --> %s", prev, cur)
		prev = cur
	}
	prev = root
	for i := p.MeetingIndex + 1; i < len(p.Nodes); i++ {
		cur := g.node(p.Nodes[i])
		g.line("%s --> %s", prev, cur)
		prev = cur
	}

	if p.MeetingIndex != 0 {
		g.line("style %s %s", g.node(p.Nodes[0]), styleStart)
	}
	if p.MeetingIndex != len(p.Nodes)-1 {
		g.line("style %s %s", g.node(p.Nodes[len(p.Nodes)-1]), styleEnd)
	}
	return g.String()
}

// FormatMermaid writes one fenced Mermaid block per path, each preceded by
// its label.
func FormatMermaid(res types.Result, w io.Writer) {
	for i, p := range res.Paths {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%d. %s\n\n```mermaid\n%s\n```\n", i+1, p.DegreeLabel, Mermaid(p, res.Names))
	}
}

type mermaidGraph struct {
	names map[string]string
	seen  map[string]bool
	lines []string
}

func (g *mermaidGraph) line(format string, args ...any) {
	g.lines = append(g.lines, fmt.Sprintf(format, args...))
}

// node declares v on first use and returns its Mermaid id.
func (g *mermaidGraph) node(v types.PathNodeView) string {
	var id string
	if v.IsCouple {
		id = sanitizeID("C_" + strings.Join(v.Members(), "_"))
	} else {
		id = sanitizeID(v.ID)
	}
	if !g.seen[id] {
		g.seen[id] = true
		g.line(`%s["%s"]`, id, escapeLabel(nodeLabel(v, g.names)))
	}
	return id
}

func (g *mermaidGraph) String() string { return strings.Join(g.lines, "\n") }

func nodeLabel(v types.PathNodeView, names map[string]string) string {
	members := v.Members()
	parts := make([]string, len(members))
	for i, id := range members {
		parts[i] = id
		if n := names[id]; n != "" {
			parts[i] = n
		}
	}
	return strings.Join(parts, " & ")
}

// sanitizeID maps a raw id onto Mermaid's identifier alphabet. The result
// always starts with a letter.
func sanitizeID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" || !unicode.IsLetter(rune(s[0])) {
		s = "N_" + s
	}
	return s
}

func escapeLabel(s string) string {
	s = strings.NewReplacer("↔", " & ", "\n", " ", "\r", " ").Replace(s)
	return strings.ReplaceAll(s, `"`, `\"`)
}
