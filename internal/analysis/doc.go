// Package analysis measures the quality of finished layouts.
//
//   - [Edges]: spring length statistics against the rest length
//   - [ConvergenceRate]: exponential decay rate of movement per step
//   - [StepsToThreshold]: extrapolated steps until a layout settles
//   - [Projection] and [ProjectionToASCII]: bodies seen along two axes
//
// A negative convergence rate means the layout is settling:
//
//	rate := analysis.ConvergenceRate(movements)
//	if rate < 0 {
//	    // movement shrinks by a factor exp(rate) per step
//	}
package analysis
