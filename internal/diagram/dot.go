package diagram

import (
	"fmt"
	"strings"
)

// dotShapes maps node kinds to Graphviz shapes.
var dotShapes = map[NodeKind]string{
	NodeKindSurvey:      "doubleoctagon",
	NodeKindBuilding:    "box3d",
	NodeKindCentralRack: "cylinder",
	NodeKindFloor:       "folder",
	NodeKindFloorRack:   "cylinder",
	NodeKindRoom:        "box",
	NodeKindDevice:      "component",
}

// WriteDOT renders the graph as Graphviz DOT text. Output is deterministic:
// nodes and edges appear in graph order, which Project already fixes.
func WriteDOT(g Graph) string {
	var b strings.Builder
	b.WriteString("digraph survey {\n")
	b.WriteString("\trankdir=TB;\n")
	b.WriteString("\tnode [fontname=\"Helvetica\"];\n\n")

	for _, n := range g.Nodes {
		shape := dotShapes[n.Kind]
		if shape == "" {
			shape = "box"
		}
		fmt.Fprintf(&b, "\t%q [label=%q, shape=%s];\n", n.ID, n.Label, shape)
	}
	b.WriteString("\n")

	for _, e := range g.Edges {
		attrs := ""
		switch e.Kind {
		case EdgeKindUplink:
			attrs = " [style=dashed]"
		case EdgeKindConnection:
			attrs = fmt.Sprintf(" [label=%q, dir=none, color=blue]", e.Label)
		}
		fmt.Fprintf(&b, "\t%q -> %q%s;\n", e.From, e.To, attrs)
	}

	b.WriteString("}\n")
	return b.String()
}
