// Package cover provides a cover-tree adapter that currently delegates to a
// brute-force implementation. It preserves a stable API so the internals can
// be switched to a real cover tree without changing callers.
package cover
