// Package viz is the terminal front end of the earthquake dashboard.
//
// [MapView], [ChartView] and [TimelineView] implement the view surfaces on a
// colored braille [Canvas]; [Explorer] wires them to a dashboard inside a
// Bubble Tea program.
//
// # Key Bindings
//
//	Space - Start/stop playback
//	y / Y - Next / previous year
//	a     - All years
//	c     - Cycle color attribute
//	s     - Toggle size by magnitude
//	d     - Cycle distribution chart
//	+ / - - Zoom the map
//	[ ]   - Move the timeline brush
//	{ }   - Resize the timeline brush
//	x     - Clear selection
//	L     - Switch base layer
//	H     - Toggle heat overlay
//	?     - Show help overlay
package viz
