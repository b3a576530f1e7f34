// Package scoring implements the pure, deterministic heuristics of the
// pipeline: compatibility and community scores, stable-version selection,
// deprecation detection, and modernization hints.
//
// Nothing here performs I/O; every function maps registry metadata to a
// value and returns the same output for the same input.
package scoring
