// Package stats provides the windowed statistics used by driver detection:
// rolling sums, rolling means and rolling Pearson correlation over weekly
// series, plus null-aware averaging, safe division and clamping.
//
// A rolling statistic at position i covers the window ending at i and is
// undefined (models.NullFloat with Valid=false) until the window is full.
// Nothing here returns NaN: undefined arithmetic is always an explicit null.
package stats
