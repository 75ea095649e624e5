package cascade

import (
	"strings"

	"koala/cssparse"
	"koala/csstok"
)

func cssparseDeclFor(property string, value []csstok.Token, important bool) cssparse.Declaration {
	return cssparse.Declaration{Property: property, Value: value, Important: important}
}

// shorthandExpander expands one shorthand declaration into its longhand
// equivalents, modeled as data per spec §4.4 step 4 rather than as
// behavior spread across the cascade: a map from shorthand name to its
// expansion function, the same table-driven shape the teacher uses for
// its built-in function registry.
type shorthandExpander func(toks []csstok.Token) map[string][]csstok.Token

var shorthandExpanders = map[string]shorthandExpander{
	"margin":  fourSideExpander("margin-top", "margin-right", "margin-bottom", "margin-left"),
	"padding": fourSideExpander("padding-top", "padding-right", "padding-bottom", "padding-left"),
	"border-width": fourSideExpander("border-top-width", "border-right-width", "border-bottom-width", "border-left-width"),
	"border-style": fourSideExpander("border-top-style", "border-right-style", "border-bottom-style", "border-left-style"),
	"border-color": fourSideExpander("border-top-color", "border-right-color", "border-bottom-color", "border-left-color"),
	"border":       expandBorder,
	"background":   expandBackground,
	"font":         expandFont,
}

// fourSideExpander builds a 1/2/3/4-value expander (CSS2.1 §8.3's
// "if one value, applies to all four sides; if two, top/bottom then
// left/right; if three, top, left/right, bottom; if four, top, right,
// bottom, left" rule) for longhand names given in top/right/bottom/left
// order.
func fourSideExpander(top, right, bottom, left string) shorthandExpander {
	return func(toks []csstok.Token) map[string][]csstok.Token {
		parts := splitTopLevelWS(toks)
		switch len(parts) {
		case 1:
			return map[string][]csstok.Token{top: parts[0], right: parts[0], bottom: parts[0], left: parts[0]}
		case 2:
			return map[string][]csstok.Token{top: parts[0], bottom: parts[0], right: parts[1], left: parts[1]}
		case 3:
			return map[string][]csstok.Token{top: parts[0], right: parts[1], left: parts[1], bottom: parts[2]}
		case 4:
			return map[string][]csstok.Token{top: parts[0], right: parts[1], bottom: parts[2], left: parts[3]}
		}
		return nil
	}
}

// splitTopLevelWS splits a token run on whitespace, ignoring whitespace
// nested inside function-call parens.
func splitTopLevelWS(toks []csstok.Token) [][]csstok.Token {
	var out [][]csstok.Token
	var cur []csstok.Token
	depth := 0
	for _, t := range toks {
		switch t.Kind {
		case csstok.Function, csstok.LeftParen:
			depth++
		case csstok.RightParen:
			depth--
		}
		if t.Kind == csstok.Whitespace && depth == 0 {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// expandBorder expands "border: <width> <style> <color>" (any subset,
// any order) into the three per-side triples (CSS2.1 §8.5.4).
func expandBorder(toks []csstok.Token) map[string][]csstok.Token {
	out := make(map[string][]csstok.Token)
	for _, part := range splitTopLevelWS(toks) {
		switch classifyBorderPart(part) {
		case "width":
			for _, side := range []string{"top", "right", "bottom", "left"} {
				out["border-"+side+"-width"] = part
			}
		case "style":
			for _, side := range []string{"top", "right", "bottom", "left"} {
				out["border-"+side+"-style"] = part
			}
		case "color":
			for _, side := range []string{"top", "right", "bottom", "left"} {
				out["border-"+side+"-color"] = part
			}
		}
	}
	return out
}

var borderStyleKeywords = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

var borderWidthKeywords = map[string]bool{"thin": true, "medium": true, "thick": true}

func classifyBorderPart(toks []csstok.Token) string {
	if len(toks) == 0 {
		return ""
	}
	t := toks[0]
	switch t.Kind {
	case csstok.Dimension, csstok.Number:
		return "width"
	case csstok.Hash:
		return "color"
	case csstok.Function:
		return "color"
	case csstok.Ident:
		name := strings.ToLower(t.Value)
		if borderStyleKeywords[name] {
			return "style"
		}
		if borderWidthKeywords[name] {
			return "width"
		}
		return "color"
	}
	return ""
}

// expandBackground expands the common "background: <color> <image>"
// subset (the rest of the background shorthand's grammar — position/
// size/repeat/attachment/origin/clip — is out of scope for the MVP
// renderer, which only paints background-color and background-image).
func expandBackground(toks []csstok.Token) map[string][]csstok.Token {
	out := make(map[string][]csstok.Token)
	for _, part := range splitTopLevelWS(toks) {
		if len(part) == 0 {
			continue
		}
		switch part[0].Kind {
		case csstok.Function:
			if strings.EqualFold(part[0].Value, "url") {
				out["background-image"] = part
			} else {
				out["background-color"] = part
			}
		case csstok.Hash, csstok.Ident:
			out["background-color"] = part
		}
	}
	return out
}

// expandFont expands the common "font: <size>[/<line-height>] <family>"
// subset into font-size/line-height/font-family (font-style/variant/
// weight prefixes are passed through to font-style/font-weight when
// recognized, else ignored — matching the shorthand's optional leading
// keywords).
func expandFont(toks []csstok.Token) map[string][]csstok.Token {
	out := make(map[string][]csstok.Token)
	parts := splitTopLevelWS(toks)
	if len(parts) == 0 {
		return out
	}
	idx := 0
	for idx < len(parts)-1 {
		if len(parts[idx]) == 1 && parts[idx][0].Kind == csstok.Ident {
			kw := strings.ToLower(parts[idx][0].Value)
			switch kw {
			case "italic", "oblique", "normal":
				out["font-style"] = parts[idx]
				idx++
				continue
			case "bold", "bolder", "lighter":
				out["font-weight"] = parts[idx]
				idx++
				continue
			}
		}
		break
	}
	if idx >= len(parts) {
		return out
	}
	sizePart := parts[idx]
	// "<size>/<line-height>" may tokenize as size, Delim("/"), line-height
	// or as a single run if no whitespace surrounds the slash; handle the
	// whitespace-separated case directly and leave the compact case to
	// size-only (a known MVP limitation).
	out["font-size"] = sizePart
	idx++
	if idx < len(parts)-1 && len(parts[idx]) == 1 && parts[idx][0].Kind == csstok.Delim && parts[idx][0].Value == "/" {
		idx++
		if idx < len(parts) {
			out["line-height"] = parts[idx]
			idx++
		}
	}
	if idx < len(parts) {
		var fam []csstok.Token
		for _, p := range parts[idx:] {
			fam = append(fam, p...)
			fam = append(fam, csstok.Token{Kind: csstok.Whitespace, Value: " "})
		}
		out["font-family"] = fam
	}
	return out
}

// expandShorthands runs every shorthand present in winners through its
// expander, letting expanded longhands be overridden by any longhand
// that was also explicitly set in the same cascade, whatever its
// precedence relative to the shorthand (winners already reflects final
// precedence per property name,
// so a directly-set longhand simply overwrites the shorthand-derived
// one when both are present — matching spec's "last wins per property").
func expandShorthands(winners map[string]cssparse.Declaration) map[string]cssparse.Declaration {
	out := make(map[string]cssparse.Declaration, len(winners))
	for name, decl := range winners {
		if name[0] == '-' && len(name) > 1 && name[1] == '-' {
			out[name] = decl
			continue
		}
		if expander, ok := shorthandExpanders[name]; ok {
			for longhand, toks := range expander(decl.Value) {
				out[longhand] = cssparseDeclFor(longhand, toks, decl.Important)
			}
			continue
		}
		out[name] = decl
	}
	// Re-apply any longhand that was explicitly set (not via a shorthand)
	// so it is never shadowed by a shorthand expansion processed later in
	// map iteration order.
	for name, decl := range winners {
		if _, isShorthand := shorthandExpanders[name]; !isShorthand {
			out[name] = decl
		}
	}
	return out
}
