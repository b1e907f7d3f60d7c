package tui

import (
	"fmt"
	"strings"

	explorer "github.com/EricFan2002/GTOJsonExplorer"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// detailMarkdown describes the node at addr for the detail pane.
func detailMarkdown(nav Navigator, addr domain.Address) string {
	var sb strings.Builder

	crumbs := nav.Breadcrumb(addr)
	labels := make([]string, 0, len(crumbs))
	for _, c := range crumbs {
		labels = append(labels, c.Label)
	}
	fmt.Fprintf(&sb, "# %s\n\n", domain.DisplayName(addr))
	fmt.Fprintf(&sb, "%s\n\n", strings.Join(labels, " › "))

	node, ok := nav.Node(addr)
	if !ok {
		sb.WriteString("_Not loaded yet._\n")
		return sb.String()
	}

	d := node.Detail
	sb.WriteString("| Field | Value |\n|---|---|\n")
	row := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "| %s | %s |\n", name, value)
		}
	}
	row("Path", "`"+emptyAsRoot(addr.String())+"`")
	row("Kind", string(node.Kind.Tag()))
	row("Node type", d.NodeType)
	if d.Player != nil {
		row("Player", fmt.Sprintf("%d", *d.Player))
	}
	row("Board", domain.FormatBoard(d.Board))
	if d.Pot != nil {
		row("Pot", fmt.Sprintf("%.2f", *d.Pot))
	}
	if d.DealNumber != nil {
		row("Deal number", fmt.Sprintf("%d", *d.DealNumber))
	}
	if k, ok := node.Kind.(domain.DealGateKind); ok && k.CardCount > 0 {
		row("Cards", fmt.Sprintf("%d", k.CardCount))
	}
	if node.StrategyAvailable {
		row("Strategy", "available")
	}
	sb.WriteString("\n")

	if err := nav.Failure(addr); err != nil {
		fmt.Fprintf(&sb, "> **Error:** %s\n>\n> Press `r` to retry.\n\n", err)
	}

	moves := nav.Moves(addr)
	if len(moves) > 0 {
		sb.WriteString("## Moves\n\n")
		for _, m := range moves {
			switch {
			case m.Kind == explorer.MoveUp:
				fmt.Fprintf(&sb, "- ↑ %s\n", m.Label)
			case !m.Navigable:
				fmt.Fprintf(&sb, "- %s _(terminal)_\n", m.Label)
			default:
				fmt.Fprintf(&sb, "- %s\n", m.Label)
			}
		}
	}
	return sb.String()
}

func emptyAsRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
