package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/forcelayout/internal/particle"
)

type Point struct {
	ID   uint64
	X, Y float64
}

// Projection holds bodies seen along two coordinate axes.
type Projection struct {
	XAxis, YAxis int
	Points       []Point
}

// Project picks axes xAxis and yAxis of every body.
func Project(snaps []particle.Snapshot, xAxis, yAxis int) (*Projection, error) {
	if len(snaps) == 0 {
		return &Projection{XAxis: xAxis, YAxis: yAxis}, nil
	}
	dim := snaps[0].Pos.Dim()
	if xAxis < 0 || xAxis >= dim || yAxis < 0 || yAxis >= dim {
		return nil, fmt.Errorf("%w: axes %d,%d outside a %d-D layout", particle.ErrDimensionMismatch, xAxis, yAxis, dim)
	}

	p := &Projection{XAxis: xAxis, YAxis: yAxis, Points: make([]Point, len(snaps))}
	for i, s := range snaps {
		p.Points[i] = Point{ID: s.ID, X: s.Pos[xAxis], Y: s.Pos[yAxis]}
	}
	return p, nil
}

// ProjectionToASCII plots the projection on a width x height character
// grid, drawing the axes when they cross the visible area.
func ProjectionToASCII(p *Projection, width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	maxX += rangeX * 0.05
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := range grid {
			grid[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := range grid[row] {
			if grid[row][col] == '│' {
				grid[row][col] = '┼'
			} else {
				grid[row][col] = '─'
			}
		}
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if grid[row][col] == '•' || grid[row][col] == '◆' {
			grid[row][col] = '◆'
		} else {
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
