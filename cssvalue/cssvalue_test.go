package cssvalue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"koala/csstok"
)

func ctx() ResolutionContext {
	return ResolutionContext{FontSizePx: 16, RootFontSizePx: 16, ViewportWPx: 800, ViewportHPx: 600, PercentBasisPx: 200}
}

func TestParseLengthUnits(t *testing.T) {
	toks := csstok.NewTokenizer("2em").All()
	l, ok := ParseLength(toks[0])
	require.True(t, ok)
	require.Equal(t, Em, l.Unit)
	require.Equal(t, float64(32), l.ResolvePx(ctx()))
}

func TestParsePercentage(t *testing.T) {
	toks := csstok.NewTokenizer("50%").All()
	l, ok := ParseLength(toks[0])
	require.True(t, ok)
	require.Equal(t, float64(100), l.ResolvePx(ctx()))
}

func TestUnitlessZero(t *testing.T) {
	toks := csstok.NewTokenizer("0").All()
	l, ok := ParseLength(toks[0])
	require.True(t, ok)
	require.Equal(t, float64(0), l.ResolvePx(ctx()))
}

func TestParseLengthOrAuto(t *testing.T) {
	toks := csstok.NewTokenizer("auto").All()
	v, ok := ParseLengthOrAuto(toks[0])
	require.True(t, ok)
	require.True(t, v.IsAuto)
}

func TestColorHex(t *testing.T) {
	c, ok := ParseColorFromHex("#ff0000")
	require.True(t, ok)
	require.Equal(t, Color{255, 0, 0, 255}, c)

	c2, ok := ParseColorFromHex("f00")
	require.True(t, ok)
	require.Equal(t, Color{255, 0, 0, 255}, c2)
}

func TestColorNamed(t *testing.T) {
	c, ok := ParseColorFromName("Blue")
	require.True(t, ok)
	require.Equal(t, Color{0, 0, 255, 255}, c)
}

func TestColorRGBFunction(t *testing.T) {
	toks := csstok.NewTokenizer("rgb(255, 0, 0)").All()
	c, ok := ParseColorValue(toks)
	require.True(t, ok)
	require.Equal(t, Color{255, 0, 0, 255}, c)
}

func TestColorRGBAWithAlpha(t *testing.T) {
	toks := csstok.NewTokenizer("rgba(0, 0, 0, 0.5)").All()
	c, ok := ParseColorValue(toks)
	require.True(t, ok)
	require.Equal(t, uint8(0), c.R)
	require.InDelta(t, 128, int(c.A), 1)
}

func TestColorHSLFunction(t *testing.T) {
	toks := csstok.NewTokenizer("hsl(0, 100%, 50%)").All()
	c, ok := ParseColorValue(toks)
	require.True(t, ok)
	require.Equal(t, Color{255, 0, 0, 255}, c)
}

func TestEvalCalcSimple(t *testing.T) {
	toks := csstok.NewTokenizer("1px + 2px").All()
	v, err := EvalCalc(toks, ctx())
	require.NoError(t, err)
	require.Equal(t, float64(3), v)
}

func TestEvalCalcMixedUnits(t *testing.T) {
	toks := csstok.NewTokenizer("100% - 10px").All()
	v, err := EvalCalc(toks, ctx())
	require.NoError(t, err)
	require.Equal(t, float64(190), v)
}
