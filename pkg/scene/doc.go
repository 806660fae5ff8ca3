// Package scene turns a laid-out tree into absolutely positioned boxes.
//
// [Build] walks a [layout.Result] from the origin and emits a [Foundation]
// for every directory and a [Building] for every file, each with a world
// position and a color. Foundations stack: a directory's contents sit on
// top of its foundation. The scene also carries a [Ground] plane and a
// [CameraHint] sized to the whole city.
//
// Pickables are the scene's hit-test targets in emission order. [Describe]
// turns one into a [Tooltip]; an [Index] answers depth and kind queries
// over them.
//
// A Scene is read-only once built and is safe for concurrent readers.
package scene
