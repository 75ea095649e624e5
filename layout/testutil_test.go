package layout

import (
	"koala/cascade"
	"koala/cssparse"
	"koala/csstok"
)

// testStyle builds a minimal ComputedStyle from raw CSS property strings,
// e.g. testStyle(map[string]string{"width": "100px"}).
func testStyle(props map[string]string) *cascade.ComputedStyle {
	cs := &cascade.ComputedStyle{
		Properties: make(map[string]cssparse.Declaration),
		FontSizePx: 16,
	}
	for name, value := range props {
		cs.Properties[name] = cssparse.Declaration{
			Property: name,
			Value:    csstok.NewTokenizer(value).All(),
		}
	}
	return cs
}

func blockStyle(props map[string]string) *cascade.ComputedStyle {
	cs := testStyle(props)
	cs.OuterDisplay = "block"
	cs.InnerDisplay = "flow"
	return cs
}

func inlineStyle(props map[string]string) *cascade.ComputedStyle {
	cs := testStyle(props)
	cs.OuterDisplay = "inline"
	cs.InnerDisplay = "flow"
	return cs
}

func textBox(text string, style *cascade.ComputedStyle) *Box {
	return &Box{Kind: TextBox, Text: text, Style: style}
}

func blockBox(style *cascade.ComputedStyle, children ...*Box) *Box {
	return &Box{Kind: BlockBox, Style: style, Children: children}
}

// stubMetrics is a deterministic fontmetrics.Metrics stand-in: each
// character is 10px wide, every line is 20px tall, independent of family.
type stubMetrics struct{}

func (stubMetrics) TextWidth(text string, _ string, _ float64) float64 {
	return float64(len([]rune(text))) * 10
}

func (stubMetrics) LineHeight(_ string, _ float64) float64 {
	return 20
}
