// Package viz renders a running layout in the terminal.
//
// [Model] is a Bubble Tea model that steps a [layout.ForceLayout] on every
// tick and draws two coordinates onto a braille [Canvas], with springs as
// lines. The [Camera] chooses which pair of axes is shown, so layouts of
// three or more dimensions appear as flat projections. A side panel shows
// run statistics and an asciigraph chart of recent movement.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	.     - Single step while paused
//	R     - Rebuild the layout from scratch
//	+/-   - Zoom
//	X/Y   - Next horizontal/vertical axis (3-D and up)
//	0     - Reset the view
//	Q     - Quit
//
// Stepping stops once movement drops below the layout's stable threshold.
package viz
