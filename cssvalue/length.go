// Package cssvalue implements the computed-value domain the cascade and
// layout stages share: lengths (absolute and relative units), colors, and
// calc() expression evaluation.
package cssvalue

import (
	"fmt"
	"strings"

	"koala/csstok"
)

// Unit is a CSS length unit this engine resolves.
type Unit uint8

const (
	Px Unit = iota
	Em
	Rem
	Vw
	Vh
	Percent
)

func (u Unit) String() string {
	switch u {
	case Px:
		return "px"
	case Em:
		return "em"
	case Rem:
		return "rem"
	case Vw:
		return "vw"
	case Vh:
		return "vh"
	case Percent:
		return "%"
	}
	return "?"
}

var unitNames = map[string]Unit{
	"px": Px, "em": Em, "rem": Rem, "vw": Vw, "vh": Vh,
}

// Length is a single dimensioned value, e.g. "12px" or "1.5em".
type Length struct {
	Value float64
	Unit  Unit
}

// LengthOrAuto is the "auto | <length>" sum type used throughout box
// layout (widths, heights, margins, offsets).
type LengthOrAuto struct {
	IsAuto bool
	Length Length
}

func Auto() LengthOrAuto { return LengthOrAuto{IsAuto: true} }

func Abs(l Length) LengthOrAuto { return LengthOrAuto{Length: l} }

// ResolutionContext supplies the values needed to turn a relative length
// into an absolute pixel quantity: the font size for em, the root font
// size for rem, and the viewport dimensions for vw/vh.
type ResolutionContext struct {
	FontSizePx     float64
	RootFontSizePx float64
	ViewportWPx    float64
	ViewportHPx    float64
	// PercentBasisPx is the reference length a Percent length resolves
	// against (containing block width/height, depending on the property);
	// the caller picks the right basis before calling ResolvePx.
	PercentBasisPx float64
}

// ResolvePx resolves l to an absolute pixel value given ctx (spec:
// relative units are eagerly resolved to px once layout context is known,
// per DESIGN.md's "eager em/rem-to-px resolution" decision).
func (l Length) ResolvePx(ctx ResolutionContext) float64 {
	switch l.Unit {
	case Px:
		return l.Value
	case Em:
		return l.Value * ctx.FontSizePx
	case Rem:
		return l.Value * ctx.RootFontSizePx
	case Vw:
		return l.Value / 100 * ctx.ViewportWPx
	case Vh:
		return l.Value / 100 * ctx.ViewportHPx
	case Percent:
		return l.Value / 100 * ctx.PercentBasisPx
	}
	return 0
}

// ParseLength parses a single dimension or percentage token into a
// Length. ok is false for any other token kind (the caller falls back to
// its own default handling, e.g. treating the property as invalid).
func ParseLength(t csstok.Token) (Length, bool) {
	switch t.Kind {
	case csstok.Dimension:
		u, ok := unitNames[strings.ToLower(t.Unit)]
		if !ok {
			return Length{}, false
		}
		return Length{Value: t.Num, Unit: u}, true
	case csstok.Percentage:
		return Length{Value: t.Num, Unit: Percent}, true
	case csstok.Number:
		// Unitless zero is valid anywhere a length is (CSS2.1 §4.3.2).
		if t.Num == 0 {
			return Length{Value: 0, Unit: Px}, true
		}
	}
	return Length{}, false
}

// ParseLengthOrAuto parses a single token as "auto" or a length.
func ParseLengthOrAuto(t csstok.Token) (LengthOrAuto, bool) {
	if t.Kind == csstok.Ident && strings.EqualFold(t.Value, "auto") {
		return Auto(), true
	}
	l, ok := ParseLength(t)
	if !ok {
		return LengthOrAuto{}, false
	}
	return Abs(l), true
}

func (l Length) String() string {
	return fmt.Sprintf("%g%s", l.Value, l.Unit)
}
