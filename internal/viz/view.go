package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/san-kum/forcelayout/internal/particle"
)

// Camera picks the two coordinates drawn on the canvas and the zoom level.
// Layouts of three or more dimensions are seen as orthographic projections
// onto the chosen pair of axes.
//
// Zoom follows the requested level through a critically damped spring,
// advanced once per frame by Animate.
type Camera struct {
	XAxis, YAxis int
	Zoom         float64

	target   float64
	velocity float64
	spring   harmonica.Spring
}

func NewCamera() *Camera {
	return &Camera{
		XAxis:  0,
		YAxis:  1,
		Zoom:   1,
		target: 1,
		spring: harmonica.NewSpring(harmonica.FPS(frameRate), 8, 1),
	}
}

// NextX moves the horizontal axis to the next coordinate of a dim-dimensional
// layout, skipping the vertical one.
func (c *Camera) NextX(dim int) { c.XAxis = nextAxis(c.XAxis, c.YAxis, dim) }

// NextY is NextX for the vertical axis.
func (c *Camera) NextY(dim int) { c.YAxis = nextAxis(c.YAxis, c.XAxis, dim) }

func nextAxis(axis, other, dim int) int {
	if dim < 3 {
		return axis
	}
	for {
		axis = (axis + 1) % dim
		if axis != other {
			return axis
		}
	}
}

func (c *Camera) ZoomIn()  { c.target = math.Min(20, c.target*1.25) }
func (c *Camera) ZoomOut() { c.target = math.Max(0.05, c.target/1.25) }

// Target is the zoom level the camera is moving towards.
func (c *Camera) Target() float64 { return c.target }

// Animate advances Zoom one frame towards the target.
func (c *Camera) Animate() {
	c.Zoom, c.velocity = c.spring.Update(c.Zoom, c.velocity, c.target)
	if math.Abs(c.Zoom-c.target) < 1e-4 && math.Abs(c.velocity) < 1e-4 {
		c.Zoom, c.velocity = c.target, 0
	}
}

func (c *Camera) Reset() {
	c.XAxis, c.YAxis = 0, 1
	c.Zoom, c.target, c.velocity = 1, 1, 0
}

// Flatten returns the on-screen coordinates of pos relative to center. A
// missing axis reads as zero.
func (c *Camera) Flatten(pos, center particle.Vector) (float64, float64) {
	return axis(pos, center, c.XAxis), axis(pos, center, c.YAxis)
}

func axis(pos, center particle.Vector, k int) float64 {
	if k >= len(pos) {
		return 0
	}
	return pos[k] - center[k]
}

// viewport maps flattened layout coordinates to canvas dots.
type viewport struct {
	center particle.Vector
	scale  float64
	w, h   int
}

// fit centres the bounding box of snaps, as seen by cam, on a w x h dot
// canvas.
func fit(snaps []particle.Snapshot, cam *Camera, w, h int) viewport {
	vp := viewport{w: w, h: h, scale: 1}
	if len(snaps) == 0 {
		return vp
	}

	lo := snaps[0].Pos.Clone()
	hi := snaps[0].Pos.Clone()
	for _, s := range snaps[1:] {
		for k, x := range s.Pos {
			lo[k] = math.Min(lo[k], x)
			hi[k] = math.Max(hi[k], x)
		}
	}
	vp.center = particle.NewVector(lo.Dim())
	for k := range lo {
		vp.center[k] = (lo[k] + hi[k]) / 2
	}

	radius := 0.0
	for _, k := range []int{cam.XAxis, cam.YAxis} {
		if k < lo.Dim() {
			radius = math.Max(radius, (hi[k]-lo[k])/2)
		}
	}
	if radius == 0 {
		radius = 1
	}

	half := math.Min(float64(w), float64(h)) / 2 * 0.9
	vp.scale = half / radius * cam.Zoom
	return vp
}

func (vp viewport) project(cam *Camera, pos particle.Vector) (int, int) {
	x, y := cam.Flatten(pos, vp.center)
	sx := int(math.Round(x*vp.scale)) + vp.w/2
	sy := vp.h/2 - int(math.Round(y*vp.scale))
	return sx, sy
}
