package layout

import (
	"strings"

	"koala/cascade"
	"koala/csstok"
	"koala/cssvalue"
)

// firstNonWSToken returns the first non-whitespace token of toks.
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

// lengthOrAuto resolves a box-model property (margin/padding/width/
// height/top/left/...) to a LengthOrAuto, using def when the property is
// absent or unparseable.
func lengthOrAuto(cs *cascade.ComputedStyle, name string, def cssvalue.LengthOrAuto) cssvalue.LengthOrAuto {
	toks, ok := propTokens(cs, name)
	if !ok {
		return def
	}
	t, ok := firstNonWSToken(toks)
	if !ok {
		return def
	}
	v, ok := cssvalue.ParseLengthOrAuto(t)
	if !ok {
		return def
	}
	return v
}

var borderWidthKeywordPx = map[string]float64{"thin": 1, "medium": 3, "thick": 5}

// borderWidthPx resolves a border-*-width longhand to px, honoring the
// thin/medium/thick keywords and the "width collapses to 0 when style is
// none/hidden" rule (CSS2.1 §8.5.3).
func borderWidthPx(cs *cascade.ComputedStyle, side string, ctx cssvalue.ResolutionContext) float64 {
	styleToks, _ := propTokens(cs, "border-"+side+"-style")
	if st, ok := firstNonWSToken(styleToks); ok && st.Kind == csstok.Ident {
		s := strings.ToLower(st.Value)
		if s == "none" || s == "hidden" || s == "" {
			return 0
		}
	} else {
		return 0 // no style set: initial border-style is none
	}
	toks, ok := propTokens(cs, "border-"+side+"-width")
	if !ok {
		return borderWidthKeywordPx["medium"]
	}
	t, ok := firstNonWSToken(toks)
	if !ok {
		return borderWidthKeywordPx["medium"]
	}
	if t.Kind == csstok.Ident {
		if px, ok := borderWidthKeywordPx[strings.ToLower(t.Value)]; ok {
			return px
		}
	}
	if l, ok := cssvalue.ParseLength(t); ok {
		return l.ResolvePx(ctx)
	}
	return borderWidthKeywordPx["medium"]
}

func resolvePx(v cssvalue.LengthOrAuto, ctx cssvalue.ResolutionContext) (px float64, isAuto bool) {
	if v.IsAuto {
		return 0, true
	}
	return v.Length.ResolvePx(ctx), false
}

func resolveBoxModelContext(cs *cascade.ComputedStyle, containingWidth, containingHeight float64) cssvalue.ResolutionContext {
	fontSize := 16.0
	if cs != nil {
		fontSize = cs.FontSizePx
	}
	return cssvalue.ResolutionContext{
		FontSizePx:     fontSize,
		RootFontSizePx: 16,
		PercentBasisPx: containingWidth,
	}
}

func resolveVerticalContext(cs *cascade.ComputedStyle, containingHeight float64) cssvalue.ResolutionContext {
	fontSize := 16.0
	if cs != nil {
		fontSize = cs.FontSizePx
	}
	return cssvalue.ResolutionContext{
		FontSizePx:     fontSize,
		RootFontSizePx: 16,
		PercentBasisPx: containingHeight,
	}
}

func colorProp(cs *cascade.ComputedStyle, name string, def cssvalue.Color) cssvalue.Color {
	toks, ok := propTokens(cs, name)
	if !ok {
		return def
	}
	c, ok := cssvalue.ParseColorValue(toks)
	if !ok {
		return def
	}
	return c
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
