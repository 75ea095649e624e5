package cssparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasicRule(t *testing.T) {
	s := Parse(`p { color: red; font-size: 12px; }`)
	require.Len(t, s.Rules, 1)
	require.Equal(t, "p", s.Rules[0].SelectorText)
	require.Len(t, s.Rules[0].Declarations, 2)
	require.Equal(t, "color", s.Rules[0].Declarations[0].Property)
}

func TestImportantFlag(t *testing.T) {
	s := Parse(`p { color: red !important; }`)
	require.True(t, s.Rules[0].Declarations[0].Important)
}

func TestMultipleSelectorsAndCombinators(t *testing.T) {
	s := Parse(`div > p, .foo .bar { margin: 0; }`)
	require.Equal(t, "div > p, .foo .bar", s.Rules[0].SelectorText)
}

func TestAtImport(t *testing.T) {
	s := Parse(`@import "foo.css"; p { color: blue; }`)
	require.Equal(t, []string{"foo.css"}, s.Imports)
	require.Len(t, s.Rules, 1)
}

func TestAtFontFace(t *testing.T) {
	s := Parse(`@font-face { font-family: "My Font"; src: url(my.woff); }`)
	require.Len(t, s.FontFaces, 1)
	require.Len(t, s.FontFaces[0].Declarations, 2)
}

func TestUnsupportedAtRuleSkippedWithDiagnostic(t *testing.T) {
	s := Parse(`@media screen { p { color: red; } } a { color: green; }`)
	require.Contains(t, s.Diagnostics, "unsupported-at-rule: media")
	require.Len(t, s.Rules, 1)
	require.Equal(t, "a", s.Rules[0].SelectorText)
}

func TestMalformedDeclarationRecoversAtNextSemicolon(t *testing.T) {
	s := Parse(`p { ; color red; font-size: 10px; }`)
	require.Len(t, s.Rules[0].Declarations, 1)
	require.Equal(t, "font-size", s.Rules[0].Declarations[0].Property)
}
