package cascade

import (
	"strings"

	"koala/csstok"
	"koala/dom"
)

// uaDisplay is the HTML §15 "Rendering" UA stylesheet's default display
// for well-known tags not otherwise overridden by author/UA rules.
var uaDisplay = map[string][2]string{
	"html": {"block", "flow"}, "body": {"block", "flow"}, "div": {"block", "flow"},
	"p": {"block", "flow"}, "ul": {"block", "flow"}, "ol": {"block", "flow"},
	"li": {"block", "flow"}, "h1": {"block", "flow"}, "h2": {"block", "flow"},
	"h3": {"block", "flow"}, "h4": {"block", "flow"}, "h5": {"block", "flow"},
	"h6": {"block", "flow"}, "section": {"block", "flow"}, "article": {"block", "flow"},
	"header": {"block", "flow"}, "footer": {"block", "flow"}, "nav": {"block", "flow"},
	"main": {"block", "flow"}, "form": {"block", "flow"}, "figure": {"block", "flow"},
	"blockquote": {"block", "flow"}, "pre": {"block", "flow"}, "table": {"block", "table"},
	"span": {"inline", "flow"}, "a": {"inline", "flow"}, "b": {"inline", "flow"},
	"i": {"inline", "flow"}, "em": {"inline", "flow"}, "strong": {"inline", "flow"},
	"small": {"inline", "flow"}, "code": {"inline", "flow"}, "img": {"inline", "flow"},
	"br": {"inline", "flow"}, "label": {"inline", "flow"}, "input": {"inline", "flow"},
	"head": {"none", ""}, "meta": {"none", ""}, "title": {"none", ""},
	"script": {"none", ""}, "style": {"none", ""}, "link": {"none", ""},
	"base": {"none", ""}, "noscript": {"none", ""},
}

// resolveDisplay implements spec §4.4's dedicated display path: either
// display_none (box generation elides entirely) or an (outer, inner)
// pair. An explicit `display` declaration wins; otherwise the tag's UA
// default applies; unknown tags default to inline/flow.
func resolveDisplay(cs *ComputedStyle, n dom.NodeID, tree *dom.Tree) {
	tag := strings.ToLower(tree.Node(n).Tag)
	outer, inner := "inline", "flow"
	if d, ok := uaDisplay[tag]; ok {
		outer, inner = d[0], d[1]
	}
	if d, ok := cs.Properties["display"]; ok {
		if v := strings.ToLower(strings.TrimSpace(tokensText(d.Value))); v != "" {
			outer, inner = parseDisplayValue(v)
		}
	}
	if outer == "none" {
		cs.DisplayNone = true
		return
	}
	cs.OuterDisplay = outer
	cs.InnerDisplay = inner
}

func parseDisplayValue(v string) (outer, inner string) {
	switch v {
	case "none":
		return "none", ""
	case "block":
		return "block", "flow"
	case "inline":
		return "inline", "flow"
	case "inline-block":
		return "inline", "flow"
	case "flex":
		return "block", "flex"
	case "inline-flex":
		return "inline", "flex"
	case "grid":
		return "block", "grid"
	case "inline-grid":
		return "inline", "grid"
	case "table":
		return "block", "table"
	case "run-in":
		return "run-in", "flow"
	}
	return "inline", "flow"
}

// tokensText reconstitutes a single-ident value's text (display only
// ever takes a bare keyword, never a function or compound value).
func tokensText(toks []csstok.Token) string {
	for _, t := range toks {
		if t.Kind == csstok.Ident {
			return t.Value
		}
	}
	return ""
}
