package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// BannerInfo is the status line printed under the logo.
type BannerInfo struct {
	Version string
	Network string
	DryRun  bool
	Demo    bool
}

// Mode names how commands will be handled.
func (b BannerInfo) Mode() string {
	switch {
	case b.Demo:
		return "demo"
	case b.DryRun:
		return "dry-run"
	default:
		return "live"
	}
}

// PrintBanner writes the taox logo and a status line to w.
func PrintBanner(w io.Writer, info BannerInfo) {
	out := termenv.NewOutput(w)
	// Teal to blue, one step per line.
	lines := []struct{ text, color string }{
		{"  _                   ", "#2dd4bf"},
		{" | |_ __ _  _____  __ ", "#22d3ee"},
		{" | __/ _` |/ _ \\ \\/ / ", "#38bdf8"},
		{" | || (_| | (_) >  <  ", "#60a5fa"},
		{"  \\__\\__,_|\\___/_/\\_\\ ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}

	mode := out.String(info.Mode()).Bold()
	if info.Mode() == "live" {
		mode = mode.Foreground(out.Color("#f87171"))
	} else {
		mode = mode.Foreground(out.Color("#4ade80"))
	}
	fmt.Fprintf(w, "\n %s  network=%s  mode=%s\n", out.String("v"+info.Version).Faint(), info.Network, mode)
	fmt.Fprintln(w, out.String(" Type what you want to do. \"exit\" quits.").Faint())
	fmt.Fprintln(w)
}
