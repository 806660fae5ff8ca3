// Package svg draws a laid-out city as a top-down site plan.
//
// The plan is an orthographic view from above: world X runs right and world
// Z runs down. Foundations are nested gray rectangles in emission order, so
// parents are painted before their children, and buildings are painted last
// with their heat color. Every shape carries a <title> with the same tooltip
// text the interactive viewer shows.
//
//	data := svg.Render(sc, svg.WithLabels(), svg.WithScale(2))
package svg
