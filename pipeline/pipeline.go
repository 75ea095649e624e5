// Package pipeline wires the full rendering chain — HTML parse, CSS
// cascade, box-tree build, layout, paint — into one entry point, the way
// pages.Handler wires component import/render/serve behind ServeHTTP.
package pipeline

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"koala/cascade"
	"koala/cssparse"
	"koala/diag"
	"koala/dom"
	"koala/fontmetrics"
	"koala/htmltree"
	"koala/imageregistry"
	"koala/layout"
	"koala/paint"
)

// Pipeline renders one document at a time; no state persists between
// Render calls (spec §5: "a second run starts from scratch"). The
// collaborators default lazily on first use, mirroring pages.Handler's
// sync.Once-guarded logger/fragment-selector defaults.
type Pipeline struct {
	// Metrics measures text for inline layout (spec §6's Font metrics
	// collaborator). Defaults to fontmetrics.Approximate when nil.
	Metrics fontmetrics.Metrics

	// Images resolves <img> src strings to intrinsic dimensions (spec
	// §6's Image registry collaborator). Defaults to an empty
	// imageregistry.Memory when nil — every image then falls back to the
	// UA-default replaced-element size.
	Images imageregistry.Registry

	// Logger receives diagnostics (parse errors, warn-once messages).
	// Defaults to a discarding logger when nil.
	Logger *slog.Logger

	init    sync.Once
	metrics fontmetrics.Metrics
	images  imageregistry.Registry
	logger  *slog.Logger
}

// Result is everything one Render call produces (spec §6's Outputs).
type Result struct {
	Tree    *dom.Tree
	Styles  map[dom.NodeID]*cascade.ComputedStyle
	Root    *layout.Box // nil if the document has no visible content
	Display []paint.Command
	Diag    *diag.Sink
}

func (p *Pipeline) ensureInit() {
	p.init.Do(func() {
		p.logger = p.Logger
		if p.logger == nil {
			p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		p.metrics = p.Metrics
		if p.metrics == nil {
			p.metrics = fontmetrics.Approximate{}
		}
		p.images = p.Images
		if p.images == nil {
			p.images = imageregistry.NewMemory()
		}
	})
}

// Render parses html, resolves the cascade against its own <style>
// elements and style="" attributes (fetching external stylesheets is out
// of scope, spec §1), builds and lays out the box tree against a
// viewportW x viewportH initial containing block, and emits the paint
// display list.
func (p *Pipeline) Render(html string, viewportW, viewportH float64) *Result {
	p.ensureInit()

	sink := diag.New(p.logger)

	tree := htmltree.Parse(html, sink.ParseErrorCallback("html"))
	sheets := collectAuthorSheets(tree, sink)

	resolver := cascade.NewResolver(tree, sheets)
	styles := resolver.ResolveAll(tree.Root)

	builder := &layout.Builder{Tree: tree, Styles: styles}
	root := builder.Build(tree.Root)

	res := &Result{Tree: tree, Styles: styles, Root: root, Diag: sink}
	if root != nil {
		layout.LayoutRoot(root, &layout.Context{Metrics: p.metrics, Images: p.images, ViewportW: viewportW, ViewportH: viewportH})
		res.Display = paint.Paint(root)
	}
	return res
}

// Relayout re-runs layout and paint against a new viewport size without
// reparsing or re-cascading, mirroring spec §5's relayout contract: "the
// caller re-invokes the layout operation on the existing layout box tree
// with a new initial containing block."
func (p *Pipeline) Relayout(res *Result, viewportW, viewportH float64) {
	p.ensureInit()
	if res == nil || res.Root == nil {
		return
	}
	layout.LayoutRoot(res.Root, &layout.Context{Metrics: p.metrics, Images: p.images, ViewportW: viewportW, ViewportH: viewportH})
	res.Display = paint.Paint(res.Root)
}

// collectAuthorSheets walks tree for every <style> element's text
// content, parses it, and records any unsupported-at-rule diagnostics the
// parser surfaced (spec §7: diagnostics are threaded, not logged
// globally).
func collectAuthorSheets(tree *dom.Tree, sink *diag.Sink) []cascade.Sheet {
	var sheets []cascade.Sheet
	tree.Walk(tree.Root, func(n dom.NodeID) bool {
		node := tree.Node(n)
		if node.Type != dom.ElementNode || node.Tag != "style" {
			return true
		}
		var text strings.Builder
		for c := node.FirstChild; c != dom.NoNode; c = tree.Node(c).NextSibling {
			if tree.Node(c).Type == dom.TextNode {
				text.WriteString(tree.Node(c).Data)
			}
		}
		sheet := cssparse.Parse(text.String())
		for _, d := range sheet.Diagnostics {
			sink.WarnOnce("css", "style", d)
		}
		sheets = append(sheets, cascade.Sheet{Stylesheet: sheet, Origin: cascade.OriginAuthor})
		return true
	})
	return sheets
}
