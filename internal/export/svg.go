package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/particle"
)

// ToSVG draws bodies and springs projected onto the first two axes.
// One-dimensional layouts are drawn on a horizontal line.
func ToSVG(snaps []particle.Snapshot, links []graph.Link, width, height int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if len(snaps) == 0 {
		sb.WriteString("</svg>")
		return sb.String()
	}

	proj := newProjection(snaps, width, height)
	at := make(map[uint64]int, len(snaps))
	for i, s := range snaps {
		at[s.ID] = i
	}

	sb.WriteString(`<g stroke="#2e7d32" stroke-width="1" stroke-opacity="0.7">` + "\n")
	for _, l := range links {
		i, ok1 := at[uint64(l.From)]
		j, ok2 := at[uint64(l.To)]
		if !ok1 || !ok2 || i == j {
			continue
		}
		x1, y1 := proj.point(snaps[i].Pos)
		x2, y2 := proj.point(snaps[j].Pos)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<g fill="#00ff00">` + "\n")
	for _, s := range snaps {
		x, y := proj.point(s.Pos)
		r := 2 + math.Sqrt(s.Mass)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"><title>%d</title></circle>`+"\n", x, y, r, s.ID)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// MovementToSVG plots movement per step as a polyline.
func MovementToSVG(movements []float64, width, height int, strokeColor string) string {
	if len(movements) < 2 {
		return ""
	}

	maxM := movements[0]
	for _, m := range movements {
		maxM = math.Max(maxM, m)
	}
	if maxM <= 0 {
		maxM = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	last := float64(len(movements) - 1)
	for i, m := range movements {
		x := float64(i) / last * float64(width)
		y := float64(height) - m/maxM*float64(height)*0.9

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// projection maps layout coordinates into a padded viewport, keeping the
// aspect ratio.
type projection struct {
	minX, minY float64
	scale      float64
	offX, offY float64
	height     float64
}

func newProjection(snaps []particle.Snapshot, width, height int) projection {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range snaps {
		x, y := xy(s.Pos)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	const pad = 0.05
	w := float64(width) * (1 - 2*pad)
	h := float64(height) * (1 - 2*pad)
	scale := math.Min(w/rangeX, h/rangeY)

	return projection{
		minX:   minX,
		minY:   minY,
		scale:  scale,
		offX:   (float64(width) - (maxX-minX)*scale) / 2,
		offY:   (float64(height) - (maxY-minY)*scale) / 2,
		height: float64(height),
	}
}

func (p projection) point(pos particle.Vector) (float64, float64) {
	x, y := xy(pos)
	sx := p.offX + (x-p.minX)*p.scale
	sy := p.height - (p.offY + (y-p.minY)*p.scale)
	return sx, sy
}

func xy(pos particle.Vector) (float64, float64) {
	switch len(pos) {
	case 0:
		return 0, 0
	case 1:
		return pos[0], 0
	default:
		return pos[0], pos[1]
	}
}
