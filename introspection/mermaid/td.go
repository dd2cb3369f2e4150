package mermaid

import (
	"fmt"
	"sort"
	"strings"
)

// NodeType represents the layer a node is rendered in.
type NodeType int

const (
	// NodeProvider represents the provider that supplied a value.
	NodeProvider NodeType = iota
	// NodeKey represents a configuration key.
	NodeKey
	// NodeCaller represents the function that read a key.
	NodeCaller
)

// Node represents a node in the Mermaid graph.
type Node struct {
	ID    string
	Label string
	Type  NodeType
	Style Style
}

// Edge represents a directed edge in the Mermaid graph.
// It connects two nodes by their IDs.
type Edge struct {
	From  string
	To    string
	Arrow string // optional arrow style, e.g. "-.->"
}

// Graph represents a Mermaid graph with nodes and edges.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Style represents the style of a node or of a label fragment.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth string
	// Color applies to text color.
	Color      string
	FontWeight string
	FontSize   string
	IsHTML     bool
}

// ToCSS renders s as a Mermaid style directive, or as inline CSS when IsHTML is set.
func (s Style) ToCSS() string {
	var parts []string
	for _, p := range [...]struct{ name, value string }{
		{"fill", s.Fill},
		{"stroke", s.Stroke},
		{"stroke-width", s.StrokeWidth},
		{"color", s.Color},
		{"font-weight", s.FontWeight},
		{"font-size", s.FontSize},
	} {
		if p.value != "" {
			parts = append(parts, p.name+":"+p.value)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	if s.IsHTML {
		return strings.Join(parts, ";") + ";"
	}
	return strings.Join(parts, ",")
}

// LabelBuilder builds the HTML label of a node.
type LabelBuilder struct {
	Label     string
	FontSize  int
	FontColor string
	Bold      bool
	SubLines  []string
}

// ToHTML renders the label.
func (l LabelBuilder) ToHTML() string {
	var styleParts []string
	if l.FontSize > 0 {
		styleParts = append(styleParts, fmt.Sprintf("font-size:%dpx", l.FontSize))
	}
	if l.FontColor != "" {
		styleParts = append(styleParts, "color:"+l.FontColor)
	}
	styleAttr := ""
	if len(styleParts) > 0 {
		styleAttr = fmt.Sprintf(" style='%s'", strings.Join(styleParts, ";"))
	}

	main := fmt.Sprintf("<span%s>%s</span>", styleAttr, l.Label)
	if l.Bold {
		main = "<b>" + main + "</b>"
	}
	if len(l.SubLines) == 0 {
		return main
	}
	return main + "<br/>" + strings.Join(l.SubLines, "<br/>")
}

// Subline creates a styled line placed under a node label.
func Subline(style Style, format string, args ...any) string {
	content := fmt.Sprintf(format, args...)
	if css := style.ToCSS(); css != "" {
		return fmt.Sprintf("<span style='%s'>%s</span>", css, content)
	}
	return fmt.Sprintf("<span>%s</span>", content)
}

// RenderTD renders the graph in Mermaid TD (top-down) format.
// Nodes are emitted providers first, then keys, then callers.
func (g *Graph) RenderTD() string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	nodes := make([]Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Type < nodes[j].Type })
	for _, n := range nodes {
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", sanitizeID(n.ID), n.Label)
	}

	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From == edges[j].From {
			return edges[i].To < edges[j].To
		}
		return edges[i].From < edges[j].From
	})
	for _, e := range edges {
		arrow := e.Arrow
		if arrow == "" {
			arrow = "-->"
		}
		fmt.Fprintf(&b, "    %s %s %s\n", sanitizeID(e.From), arrow, sanitizeID(e.To))
	}

	for _, n := range nodes {
		if css := n.Style.ToCSS(); css != "" {
			fmt.Fprintf(&b, "    style %s %s\n", sanitizeID(n.ID), css)
		}
	}
	return b.String()
}

var idReplacer = strings.NewReplacer(
	" ", "_",
	".", "_",
	"/", "_",
	"(", "_",
	")", "_",
	":", "_",
	"*", "ptr_",
	",", "_",
	"[", "_",
	"]", "_",
	"-", "_",
	">", "_",
)

// sanitizeID makes s usable as a Mermaid node ID.
func sanitizeID(s string) string {
	return idReplacer.Replace(s)
}
