// Package particle provides the simulation primitives shared by the force
// layout engine and its spatial index.
//
// The package defines:
//
//   - [Vector]: fixed-dimension coordinate with componentwise arithmetic
//   - [Body]: mutable particle owned by the layout engine
//   - [Snapshot]: immutable copy of a body handed to callers
//   - [ParallelFor]: static chunked data-parallel loop
//   - [Jitter]: stateless deterministic offset for zero-distance pairs
//
// # Thread Safety
//
// Bodies are not synchronized. The layout engine guarantees that, during a
// parallel pass, each body is written by at most one goroutine.
package particle
