// Package metrics converts raw file metrics into visual quantities.
//
// Two concerns live here:
//
//   - Heat: [Normalize] maps each file's commit count into [0,1] relative to
//     the single largest count anywhere in the tree.
//   - Dimensions: [Dimensions] turns a file's LOC and count into a building
//     footprint (width, depth) and height under one of three [Model] values.
//
// # Models
//
//   - [ModelLinearHeight] (default): footprint from LOC, height from count.
//   - [ModelCube]: footprint and height both from LOC; heat only colors.
//   - [ModelPowerLaw]: height = loc·k^p, side = loc·k^(−p/2) with k = count,
//     so busier files grow taller and narrower.
//
// Every output is clamped to a positive floor so zero-metric files stay
// visible and packable. When the power-law formula yields a non-finite or
// non-positive value, the floor is substituted and a [Diagnostic] reports it;
// this is never an error.
package metrics
