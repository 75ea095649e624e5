package paint

import (
	"strings"

	"koala/cascade"
	"koala/csstok"
	"koala/cssvalue"
	"koala/layout"
)

// firstNonWSToken mirrors layout's own helper of the same name (spec §4.11
// reads computed-style token runs the same way layout's box-model code
// does, just for different properties).
func firstNonWSToken(toks []csstok.Token) (csstok.Token, bool) {
	for _, t := range toks {
		if t.Kind != csstok.Whitespace {
			return t, true
		}
	}
	return csstok.Token{}, false
}

func propTokens(cs *cascade.ComputedStyle, name string) ([]csstok.Token, bool) {
	if cs == nil {
		return nil, false
	}
	d, ok := cs.Properties[name]
	if !ok {
		return nil, false
	}
	return d.Value, true
}

func colorProp(cs *cascade.ComputedStyle, name string) (cssvalue.Color, bool) {
	toks, ok := propTokens(cs, name)
	if !ok {
		return cssvalue.Color{}, false
	}
	return cssvalue.ParseColorValue(toks)
}

func identProp(cs *cascade.ComputedStyle, name string, def string) string {
	toks, ok := propTokens(cs, name)
	if !ok {
		return def
	}
	t, ok := firstNonWSToken(toks)
	if !ok || t.Kind != csstok.Ident {
		return def
	}
	return strings.ToLower(t.Value)
}

// pxResolutionContext builds a flat em/rem context for properties that
// don't depend on a containing-block percentage basis (border-radius,
// box-shadow offsets): layout already resolved percentage box-model
// properties during the layout pass, so paint only ever needs to read
// absolute or font-relative lengths off the computed style.
func pxResolutionContext(cs *cascade.ComputedStyle) cssvalue.ResolutionContext {
	fontSize := 16.0
	if cs != nil {
		fontSize = cs.FontSizePx
	}
	return cssvalue.ResolutionContext{FontSizePx: fontSize, RootFontSizePx: 16}
}

func lengthPx(cs *cascade.ComputedStyle, name string, def float64) float64 {
	toks, ok := propTokens(cs, name)
	if !ok {
		return def
	}
	t, ok := firstNonWSToken(toks)
	if !ok {
		return def
	}
	l, ok := cssvalue.ParseLength(t)
	if !ok {
		return def
	}
	return l.ResolvePx(pxResolutionContext(cs))
}

// borderRadiusPx reads the single-value border-radius shorthand MVP (no
// per-corner or horizontal/vertical radii; cascade's shorthand pass does
// not expand border-radius into per-corner longhands).
func borderRadiusPx(cs *cascade.ComputedStyle) float64 {
	return lengthPx(cs, "border-radius", 0)
}

// boxShadow is a parsed box-shadow value: "offsetX offsetY blurRadius
// color", the inset keyword and spread radius are not modeled (MVP).
type boxShadow struct {
	OffsetX, OffsetY, Blur float64
	Color                  cssvalue.Color
}

func parseBoxShadow(cs *cascade.ComputedStyle) (boxShadow, bool) {
	toks, ok := propTokens(cs, "box-shadow")
	if !ok {
		return boxShadow{}, false
	}
	var nums []float64
	var numCount int
	var color cssvalue.Color
	haveColor := false
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Kind {
		case csstok.Whitespace, csstok.Comma:
			continue
		case csstok.Dimension, csstok.Number:
			nums = append(nums, t.Num)
			numCount++
		case csstok.Hash, csstok.Ident, csstok.Function:
			rest := toks[i:]
			if c, ok := cssvalue.ParseColorValue(rest); ok {
				color = c
				haveColor = true
			}
			if t.Kind == csstok.Function {
				for i < len(toks) && toks[i].Kind != csstok.RightParen {
					i++
				}
			}
		}
	}
	if numCount < 2 {
		return boxShadow{}, false
	}
	sh := boxShadow{OffsetX: nums[0], OffsetY: nums[1]}
	if numCount >= 3 {
		sh.Blur = nums[2]
	}
	if haveColor {
		sh.Color = color
	} else {
		sh.Color = cssvalue.Color{A: 255}
	}
	return sh, true
}

func textDecoration(cs *cascade.ComputedStyle) string {
	return identProp(cs, "text-decoration", "none")
}

func isPositioned(b *layout.Box) bool {
	if b.Style == nil {
		return false
	}
	switch identProp(b.Style, "position", "static") {
	case "absolute", "fixed", "relative", "sticky":
		return true
	}
	return false
}
