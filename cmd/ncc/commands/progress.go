// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/progress"
)

// progressLabelWidth bounds the step label so the line length stays
// stable while the bar redraws in place.
const progressLabelWidth = 40

// progressBar renders install steps as a single redrawn terminal line.
// It uses the static ViewAs rendering of the bubbles progress model,
// without a running Bubble Tea program.
type progressBar struct {
	out io.Writer
	bar progress.Model
}

func newProgressBar(out io.Writer) *progressBar {
	return &progressBar{
		out: out,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(32)),
	}
}

// Step implements installer.Progress.
func (p *progressBar) Step(done, total int, label string) {
	percent := 0.0
	if total > 0 {
		percent = float64(done) / float64(total)
	}
	fmt.Fprintf(p.out, "\r%s %-*s", p.bar.ViewAs(percent), progressLabelWidth, truncate(label, progressLabelWidth))
	if done >= total {
		fmt.Fprintln(p.out)
	}
}

// logProgress reports install steps through the logger when stderr is
// not a terminal.
type logProgress struct {
	logger *slog.Logger
}

// Step implements installer.Progress.
func (p logProgress) Step(done, total int, label string) {
	p.logger.Debug("install step", "done", done, "total", total, "step", label)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
