// Package imageregistry defines the replaced-element image collaborator
// (spec §6): layout needs an image's intrinsic pixel dimensions to size
// <img> boxes, but loading images over the network/filesystem is
// explicitly out of scope for the rendering pipeline itself.
package imageregistry

// Dimensions is an image's intrinsic size in CSS pixels.
type Dimensions struct {
	Width  float64
	Height float64
}

// Registry resolves a source (an <img> src attribute value, or any
// other key the caller chooses) to its intrinsic dimensions.
type Registry interface {
	Dimensions(src string) (Dimensions, bool)
}

// Memory is an in-memory Registry the caller populates directly —
// useful for tests and for embedders that already know image sizes
// (e.g. from a preceding asset-processing step) without wiring a real
// decoder.
type Memory struct {
	sizes map[string]Dimensions
}

func NewMemory() *Memory {
	return &Memory{sizes: make(map[string]Dimensions)}
}

func (m *Memory) Set(src string, d Dimensions) {
	m.sizes[src] = d
}

func (m *Memory) Dimensions(src string) (Dimensions, bool) {
	d, ok := m.sizes[src]
	return d, ok
}
