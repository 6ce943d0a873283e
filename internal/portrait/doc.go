// Package portrait holds the data of one phase portrait: the vector field
// in every chart, the singular points with their separatrices and blow-up
// chains, and the orbits and limit cycles integrated so far.
//
// Every list is an owned slice. A singular point duplicated across a line
// of singularities at infinity refers to its owner's separatrices or
// blow-up chain by index instead of holding a copy, so [Results.Clear]
// releases each list exactly once.
package portrait
