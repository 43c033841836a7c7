package particle

// Body is a simulated particle representing one graph node.
//
// Springs holds handles (indices) into the slice of bodies owned by the
// layout engine. Handles never imply ownership.
type Body struct {
	Pos      Vector
	Velocity Vector
	Force    Vector
	Mass     float64
	Springs  []int
}

// NewBody creates a body at the origin with mass derived from the node
// degree as 1 + degree/3.
func NewBody(dim, degree int) Body {
	return Body{
		Pos:      NewVector(dim),
		Velocity: NewVector(dim),
		Force:    NewVector(dim),
		Mass:     1 + float64(degree)/3,
	}
}

// Snapshot is a detached copy of a body's observable state.
type Snapshot struct {
	ID       uint64
	Pos      Vector
	Velocity Vector
	Force    Vector
	Mass     float64
}

// Snapshot copies b so that later steps do not affect the result.
func (b *Body) Snapshot(id uint64) Snapshot {
	return Snapshot{
		ID:       id,
		Pos:      b.Pos.Clone(),
		Velocity: b.Velocity.Clone(),
		Force:    b.Force.Clone(),
		Mass:     b.Mass,
	}
}
