package particle

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is an N-dimensional coordinate. All vectors taking part in one
// simulation share the same length; arithmetic panics on mismatch.
type Vector []float64

func NewVector(dim int) Vector {
	return make(Vector, dim)
}

func (v Vector) Dim() int { return len(v) }

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Set copies src into v.
func (v Vector) Set(src Vector) {
	if len(src) != len(v) {
		panic(ErrDimensionMismatch)
	}
	copy(v, src)
}

func (v Vector) Reset() {
	for i := range v {
		v[i] = 0
	}
}

func (v Vector) Add(o Vector) { floats.Add(v, o) }

func (v Vector) Sub(o Vector) { floats.Sub(v, o) }

// AddScaled performs v += alpha*o.
func (v Vector) AddScaled(o Vector, alpha float64) { floats.AddScaled(v, alpha, o) }

func (v Vector) Scale(f float64) { floats.Scale(f, v) }

func (v Vector) Length() float64 { return floats.Norm(v, 2) }

// Normalize rescales v to unit length. The zero vector is left unchanged.
func (v Vector) Normalize() {
	l := v.Length()
	if l == 0 {
		return
	}
	floats.Scale(1/l, v)
}

func (v Vector) Distance(o Vector) float64 { return floats.Distance(v, o, 2) }

// Equal reports exact componentwise equality.
func (v Vector) Equal(o Vector) bool {
	return len(v) == len(o) && floats.Equal(v, o)
}

// IsValid reports whether every component is finite.
func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
