package download

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const redrawInterval = 100 * time.Millisecond

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

// ProgressBar draws a single-line progress bar for one transfer. It is
// redrawn in place with a carriage return, so it expects a terminal.
type ProgressBar struct {
	out   io.Writer
	label string
	bar   progress.Model

	last    time.Time
	written int64
	total   int64
}

// NewProgressBar creates a bar labelled with label that writes to out.
func NewProgressBar(out io.Writer, label string) *ProgressBar {
	return &ProgressBar{
		out:   out,
		label: label,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Update records progress and redraws at most every redrawInterval.
func (p *ProgressBar) Update(written, total int64) {
	p.written, p.total = written, total
	if time.Since(p.last) < redrawInterval {
		return
	}
	p.last = time.Now()
	p.draw()
}

// Done draws the final state and ends the line.
func (p *ProgressBar) Done() {
	p.draw()
	fmt.Fprintln(p.out)
}

func (p *ProgressBar) draw() {
	fmt.Fprintf(p.out, "\r%s %s %s", labelStyle.Render(p.label), p.bar.ViewAs(p.percent()), p.counter())
}

func (p *ProgressBar) percent() float64 {
	if p.total <= 0 {
		return 0
	}
	f := float64(p.written) / float64(p.total)
	if f > 1 {
		f = 1
	}
	return f
}

// counter renders sizes in KB, the unit the bar is labelled with.
func (p *ProgressBar) counter() string {
	if p.total <= 0 {
		return fmt.Sprintf("%d KB", p.written/1024)
	}
	return fmt.Sprintf("%d/%d KB", p.written/1024, p.total/1024)
}
