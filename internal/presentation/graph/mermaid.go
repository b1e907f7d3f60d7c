package graph

import (
	"fmt"
	"strings"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the visible tree.
// It applies semantic styling:
//   - Root: ((Circle))
//   - Deal gate: {{Hexagon}}
//   - Card: [/Parallelogram/]
//   - Action: [Rectangle]
//
// Loading rows are drawn as dotted stubs. The selection is styled current
// and its ancestors visited.
func GenerateMermaid(tree domain.RenderTree) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if tree.Root == nil {
		return sb.String()
	}

	var visited []string
	var current string
	if tree.Selected {
		if sel, err := domain.ParseAddress(tree.Selection); err == nil {
			current = sanitizeMermaidID(sel.String())
			for _, a := range sel.Ancestors() {
				visited = append(visited, sanitizeMermaidID(a.String()))
			}
		}
	}

	var failed []string
	var walk func(n *domain.RenderNode)
	walk = func(n *domain.RenderNode) {
		id := sanitizeMermaidID(n.Path)
		opener, closer := "[", "]"
		switch n.Kind {
		case domain.TagRoot:
			opener, closer = "((", "))"
		case domain.TagCards:
			opener, closer = "{{", "}}"
		case domain.TagCard:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escapeLabel(n.Label), closer)
		if n.Error != "" {
			failed = append(failed, id)
		}

		for _, c := range n.Children {
			if c.Placeholder {
				stub := id + "_loading"
				fmt.Fprintf(&sb, "    %s(\"%s\")\n", stub, escapeLabel(c.Label))
				fmt.Fprintf(&sb, "    %s -.- %s\n", id, stub)
				continue
			}
			arrow := "-->"
			if c.Kind == domain.TagCards {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", id, arrow, sanitizeMermaidID(c.Path))
			walk(c)
		}
	}
	walk(tree.Root)

	if current == "" && len(failed) == 0 {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
	for _, id := range visited {
		fmt.Fprintf(&sb, "    class %s visited;\n", id)
	}
	if current != "" {
		fmt.Fprintf(&sb, "    class %s current;\n", current)
	}
	for _, id := range failed {
		fmt.Fprintf(&sb, "    class %s failed;\n", id)
	}
	return sb.String()
}

// sanitizeMermaidID maps a node path to a Mermaid identifier. The root
// becomes "root".
func sanitizeMermaidID(path string) string {
	if path == "" {
		return "root"
	}
	var b strings.Builder
	b.WriteString("n")
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			b.WriteString("_d")
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
