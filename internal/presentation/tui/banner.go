package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the gtox banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _| |_ _____  __", "#818cf8"},
		{"  / _` | __/ _ \\ \\/ /", "#a78bfa"},
		{" | (_| | || (_) >  < ", "#c084fc"},
		{"  \\__, |\\__\\___/_/\\_\\", "#e879f9"},
		{"  |___/              ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
