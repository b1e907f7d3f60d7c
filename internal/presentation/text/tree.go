// Package text prints the visible game tree as plain, optionally coloured,
// lines.
package text

import (
	"fmt"
	"io"

	explorer "github.com/EricFan2002/GTOJsonExplorer"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/muesli/termenv"
)

// Printer writes rendered trees. The zero value is not usable; use New.
type Printer struct {
	out *termenv.Output
}

// New returns a printer that colours output according to w's terminal
// capabilities. Pass termenv.Ascii to disable colours.
func New(w io.Writer, profile ...termenv.Profile) *Printer {
	var opts []termenv.OutputOption
	if len(profile) > 0 {
		opts = append(opts, termenv.WithProfile(profile[0]))
	}
	return &Printer{out: termenv.NewOutput(w, opts...)}
}

// Print writes one line per visible node.
func (p *Printer) Print(lines []explorer.Line) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(p.out, p.format(l)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) format(l explorer.Line) string {
	n := l.Node
	prefix := p.out.String(l.Prefix).Foreground(p.out.Color("8"))
	if n.Placeholder {
		return prefix.String() + p.out.String(n.Label).Faint().String()
	}

	label := p.out.String(n.Label)
	switch n.Kind {
	case domain.TagRoot:
		label = label.Bold()
	case domain.TagCards:
		label = label.Foreground(p.out.Color("5"))
	case domain.TagCard:
		label = label.Foreground(p.out.Color("2"))
	}
	if n.Selected {
		label = label.Foreground(p.out.Color("3")).Bold()
	}

	s := prefix.String() + label.String()
	if n.Selected {
		s += " *"
	}
	if n.Error != "" {
		s += " " + p.out.String("✗ "+n.Error).Foreground(p.out.Color("1")).String()
	}
	return s
}
