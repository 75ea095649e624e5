// Package fontmetrics defines the text-measurement collaborator that
// inline layout calls into (spec §4.6/§6): given a font size, how wide is
// a run of text and how tall is a line. The real pipeline wires a real
// font-rasterizer implementation; this package only ships the interface
// plus a deterministic, dependency-free approximation usable in tests and
// headless rendering where no font backend is available.
package fontmetrics

// Metrics is the collaborator inline layout depends on. Implementations
// must be safe for concurrent use across independent document layouts
// (spec §5: "the collaborator must be thread-safe if the caller
// parallelizes independent documents").
type Metrics interface {
	// TextWidth returns the advance width, in px, of text set at size px
	// in the given font family.
	TextWidth(text string, family string, sizePx float64) float64
	// LineHeight returns the used line height, in px, for text set at
	// sizePx in the given font family.
	LineHeight(family string, sizePx float64) float64
}

// Approximate is a deterministic stand-in used when no real font backend
// is wired: each character is assumed to be 0.6 * sizePx wide and the
// line height is 1.2 * sizePx, independent of family (spec §4.6's
// "pending real font metrics" note).
type Approximate struct{}

func (Approximate) TextWidth(text string, _ string, sizePx float64) float64 {
	return float64(len([]rune(text))) * 0.6 * sizePx
}

func (Approximate) LineHeight(_ string, sizePx float64) float64 {
	return 1.2 * sizePx
}
