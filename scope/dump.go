package scope

import "strings"

const (
	connectorMid  = "├── "
	connectorLast = "└── "
	indentMid     = "│   "
	indentLast    = "    "
)

// Dump renders the subtree rooted at n, one scope name per line:
//
//	app
//	├── list
//	│   └── row
//	└── settings
//
// Children are rendered depth-first in name order. A destroyed scope is
// rendered alone with a marker.
func Dump(n *Node) string {
	var sb strings.Builder
	sb.WriteString(n.name)
	if n.destroyed {
		sb.WriteString(" (destroyed)")
	}
	sb.WriteByte('\n')
	dumpChildren(&sb, n, "")
	return sb.String()
}

func dumpChildren(sb *strings.Builder, n *Node, prefix string) {
	names := n.childNames()
	for i, name := range names {
		connector, indent := connectorMid, indentMid
		if i == len(names)-1 {
			connector, indent = connectorLast, indentLast
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(name)
		sb.WriteByte('\n')
		dumpChildren(sb, n.children[name], prefix+indent)
	}
}
