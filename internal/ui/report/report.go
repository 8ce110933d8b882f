// Package report renders tinification outcomes for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/ui/output"
	"go.trai.ch/tinify/internal/ui/style"
)

// Printer writes size reports to an output stream.
type Printer struct {
	out *termenv.Output
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{out: output.New(w)}
}

// MB converts a byte count to whole mebibytes, rounding down.
func MB(size int64) int64 {
	return size >> 20
}

// Release prints the size report of a single release.
func (p *Printer) Release(o *domain.Outcome) error {
	return p.sizes(o)
}

// Tile prints the size report of a tile. With verbose set, every release is listed first.
func (p *Printer) Tile(o *domain.TileOutcome, verbose bool) error {
	if verbose {
		for _, r := range o.Releases {
			if err := p.releaseLine(r); err != nil {
				return err
			}
		}
	}
	return p.sizes(&o.Outcome)
}

func (p *Printer) sizes(o *domain.Outcome) error {
	if err := p.line(fmt.Sprintf("input file size: %d MB", MB(o.InputSize))); err != nil {
		return err
	}

	if o.Status == domain.StatusSkipped {
		return p.styled(o.Reason, style.Yellow)
	}

	if err := p.line(fmt.Sprintf("output file size: %d MB", MB(o.OutputSize))); err != nil {
		return err
	}
	return p.styled(fmt.Sprintf("%.2f%% reduction!", o.Reduction()), style.Green)
}

func (p *Printer) releaseLine(r domain.ReleaseOutcome) error {
	if r.Status == domain.StatusSkipped {
		return p.styled(fmt.Sprintf("  %s %s: %s", style.Warning, r.Name, r.Reason), style.Yellow)
	}

	removed := strconv.Itoa(len(r.Redundant)) + " compiled packages removed"
	if len(r.Redundant) == 1 {
		removed = "1 compiled package removed"
	}
	return p.styled(fmt.Sprintf("  %s %s: %s", style.Check, r.Name, removed), style.Green)
}

func (p *Printer) line(s string) error {
	_, err := p.out.WriteString(s + "\n")
	return err
}

func (p *Printer) styled(s string, color lipgloss.Color) error {
	return p.line(p.out.String(s).Foreground(termenv.RGBColor(string(color))).String())
}
