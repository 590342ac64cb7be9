package visualizer

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
)

const (
	// barRatio is the share of each slot a bar fills, the rest is gap.
	barRatio = 0.75
	// reflection is how tall the band below the center line is, relative to the bar.
	reflection = 0.3
)

var eighths = []rune(" ▁▂▃▄▅▆▇█")

// SetSize fixes the canvas size used when Render is given no size.
func (v *Visualizer) SetSize(width, height int) {
	v.mu.Lock()
	v.width, v.height = width, height
	v.mu.Unlock()
}

func (v *Visualizer) canvas(width, height int) (int, int) {
	if width > 0 && height > 0 {
		return width, height
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.width <= 0 || v.height <= 0 {
		w, h, err := util.TerminalSize()
		if err != nil {
			w, h = 80, 24
		}
		v.width, v.height = w, util.Max(h/4, 4)
	}
	return v.width, v.height
}

// Render paints the current levels as bars rising from a center line, with
// a faint shorter reflection below it. A zero size means the canvas size.
func (v *Visualizer) Render(width, height int) string {
	width, height = v.canvas(width, height)

	levels := v.Levels()
	above := height - height/3
	below := height - above

	heights := make([]float64, width)
	if len(levels) > 0 {
		slot := float64(width) / float64(len(levels))
		for x := range heights {
			pos := float64(x) / slot
			bin := int(pos)
			if slot >= 2 && pos-float64(bin) >= barRatio {
				continue
			}
			heights[x] = float64(levels[bin]) / 255
		}
	}

	rows := make([]string, 0, height)
	var b strings.Builder

	for row := above - 1; row >= 0; row-- {
		b.Reset()
		for _, h := range heights {
			b.WriteRune(cell(h*float64(above), row))
		}
		color := style.Spectrum[row*len(style.Spectrum)/above]
		rows = append(rows, lipgloss.NewStyle().Foreground(color).Render(b.String()))
	}

	faint := lipgloss.NewStyle().Foreground(style.Spectrum[0]).Faint(true)
	for row := 0; row < below; row++ {
		b.Reset()
		for _, h := range heights {
			if h*float64(above)*reflection > float64(row) {
				b.WriteRune('█')
			} else {
				b.WriteRune(' ')
			}
		}
		rows = append(rows, faint.Render(b.String()))
	}

	return strings.Join(rows, "\n")
}

// cell picks the glyph for row of a bar that is filled rows tall.
func cell(filled float64, row int) rune {
	rest := filled - float64(row)
	switch {
	case rest >= 1:
		return eighths[8]
	case rest <= 0:
		return eighths[0]
	default:
		return eighths[int(rest*8)]
	}
}
