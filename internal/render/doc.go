// Package render draws phase portraits.
//
// Two surfaces are provided: a braille terminal canvas and an SVG
// document. Both implement engine.Drawer, so they can be attached to a
// session and receive points as they are integrated, or be filled later
// from stored results with Replay. Sphere points are projected through the
// atlas of the current view; segments that cross a rendering
// discontinuity are split and points outside the view are dropped.
package render
