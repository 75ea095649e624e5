// Package selector implements CSS Selectors parsing and matching against
// a koala/dom.Tree: compound and complex selectors, the four standard
// combinators, specificity computation, and a sentinel "never matches"
// fallback for selector forms this engine does not support (pseudo-class
// and attribute selectors beyond a small recognized subset).
package selector

import (
	"strings"

	"koala/csstok"
	"koala/dom"
)

// Combinator names the relationship between two compound selectors in a
// complex selector (spec: descendant, child, next-sibling, subsequent-sibling).
type Combinator uint8

const (
	NoCombinator Combinator = iota
	Descendant
	Child
	NextSibling
	SubsequentSibling
)

// Simple is one simple selector within a compound selector: a type name,
// a class, an ID, a universal selector, or an unsupported form that is
// recorded but never matches anything (the sentinel behavior the spec
// requires instead of silently mismatching the cascade).
type Simple struct {
	Type          SimpleKind
	Value         string // tag name / class name / id name / attr name
	AttrOp        string // "", "=", "~=", "|=", "^=", "$=", "*="
	AttrValue     string
	Unsupported   bool
}

type SimpleKind uint8

const (
	KindTag SimpleKind = iota
	KindUniversal
	KindClass
	KindID
	KindAttr
	KindPseudoClass
	KindPseudoElement
)

// Compound is a sequence of simple selectors with no combinator between
// them (e.g. "div.foo#bar[data-x]").
type Compound struct {
	Simples     []Simple
	Unsupported bool
}

// Step pairs a compound selector with the combinator that precedes it
// (NoCombinator for the first step in a complex selector).
type Step struct {
	Combinator Combinator
	Compound   Compound
}

// Complex is a full selector: a sequence of compound selectors joined by
// combinators, read left (outermost ancestor) to right (the subject).
type Complex struct {
	Steps []Step
}

// Specificity is the (A, B, C) triple from the Selectors spec: A counts
// ID selectors, B counts classes/attributes/pseudo-classes, C counts
// type selectors/pseudo-elements.
type Specificity struct{ A, B, C int }

func (s Specificity) Less(o Specificity) bool {
	if s.A != o.A {
		return s.A < o.A
	}
	if s.B != o.B {
		return s.B < o.B
	}
	return s.C < o.C
}

// recognizedPseudoClasses is the small subset this engine evaluates
// structurally; anything else parses but is marked Unsupported so it
// participates in cascade ordering (for specificity bookkeeping) without
// ever matching.
var recognizedPseudoClasses = map[string]bool{
	"first-child": true, "last-child": true, "only-child": true,
	"first-of-type": true, "last-of-type": true,
	"root": true, "empty": true,
}

// ParseList parses a comma-separated selector list (e.g. a rule's
// prelude text) into its Complex selectors.
func ParseList(src string) []Complex {
	var out []Complex
	for _, part := range splitTopLevelCommas(src) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, parseComplex(part))
	}
	return out
}

func splitTopLevelCommas(src string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range src {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, src[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, src[start:])
	return out
}

func parseComplex(src string) Complex {
	toks := csstok.NewTokenizer(src).All()
	var c Complex
	var cur Compound
	pendingCombinator := NoCombinator
	haveSimple := false
	flush := func() {
		if haveSimple {
			c.Steps = append(c.Steps, Step{Combinator: pendingCombinator, Compound: cur})
			cur = Compound{}
			pendingCombinator = Descendant
			haveSimple = false
		}
	}
	i := 0
	sawWS := false
	for i < len(toks) {
		t := toks[i]
		switch t.Kind {
		case csstok.EOF:
			i++
		case csstok.Whitespace:
			sawWS = true
			i++
		case csstok.Delim:
			switch t.Value {
			case ">":
				flush()
				pendingCombinator = Child
				sawWS = false
			case "+":
				flush()
				pendingCombinator = NextSibling
				sawWS = false
			case "~":
				flush()
				pendingCombinator = SubsequentSibling
				sawWS = false
			case "*":
				cur.Simples = append(cur.Simples, Simple{Type: KindUniversal})
				haveSimple = true
			case ".":
				i++
				if i < len(toks) && toks[i].Kind == csstok.Ident {
					cur.Simples = append(cur.Simples, Simple{Type: KindClass, Value: toks[i].Value})
					haveSimple = true
				}
			default:
				cur.Unsupported = true
				haveSimple = true
			}
			i++
			continue
		case csstok.Ident:
			if sawWS && haveSimple {
				flush()
			}
			cur.Simples = append(cur.Simples, Simple{Type: KindTag, Value: strings.ToLower(t.Value)})
			haveSimple = true
			sawWS = false
		case csstok.Hash:
			if t.HashID {
				cur.Simples = append(cur.Simples, Simple{Type: KindID, Value: t.Value})
			} else {
				cur.Unsupported = true
			}
			haveSimple = true
			sawWS = false
		case csstok.Colon:
			i++
			pseudoElement := false
			if i < len(toks) && toks[i].Kind == csstok.Colon {
				pseudoElement = true
				i++
			}
			if i < len(toks) && (toks[i].Kind == csstok.Ident || toks[i].Kind == csstok.Function) {
				name := strings.ToLower(toks[i].Value)
				if pseudoElement {
					cur.Simples = append(cur.Simples, Simple{Type: KindPseudoElement, Value: name, Unsupported: true})
					cur.Unsupported = true
				} else if recognizedPseudoClasses[name] {
					cur.Simples = append(cur.Simples, Simple{Type: KindPseudoClass, Value: name})
				} else {
					cur.Simples = append(cur.Simples, Simple{Type: KindPseudoClass, Value: name, Unsupported: true})
					cur.Unsupported = true
				}
				if toks[i].Kind == csstok.Function {
					i = skipBalanced(toks, i+1)
				}
			}
			haveSimple = true
			sawWS = false
		case csstok.LeftBracket:
			simple, next := parseAttrSelector(toks, i)
			cur.Simples = append(cur.Simples, simple)
			i = next
			haveSimple = true
			sawWS = false
			continue
		default:
			// Unrecognized component (function pseudo args stray, etc.)
		}
		i++
	}
	flush()
	return c
}

func skipBalanced(toks []csstok.Token, i int) int {
	depth := 1
	for i < len(toks) {
		switch toks[i].Kind {
		case csstok.LeftParen:
			depth++
		case csstok.RightParen:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return i
}

// parseAttrSelector parses "[name]", "[name=val]", "[name~=val]", etc.
// starting at the '[' token, returning the index just past ']'.
func parseAttrSelector(toks []csstok.Token, i int) (Simple, int) {
	i++ // consume '['
	s := Simple{Type: KindAttr}
	for i < len(toks) && toks[i].Kind == csstok.Whitespace {
		i++
	}
	if i < len(toks) && toks[i].Kind == csstok.Ident {
		s.Value = toks[i].Value
		i++
	}
	for i < len(toks) && toks[i].Kind == csstok.Whitespace {
		i++
	}
	if i < len(toks) && toks[i].Kind == csstok.RightBracket {
		return s, i + 1
	}
	op := ""
	if i < len(toks) {
		switch toks[i].Kind {
		case csstok.Delim:
			op = toks[i].Value
			i++
			if i < len(toks) && toks[i].Kind == csstok.Delim && toks[i].Value == "=" {
				i++
			}
		}
	}
	for i < len(toks) && toks[i].Kind == csstok.Whitespace {
		i++
	}
	val := ""
	if i < len(toks) && (toks[i].Kind == csstok.String || toks[i].Kind == csstok.Ident) {
		val = toks[i].Value
		i++
	}
	if op == "" {
		op = "="
	}
	s.AttrOp = op
	s.AttrValue = val
	for i < len(toks) && toks[i].Kind != csstok.RightBracket && toks[i].Kind != csstok.EOF {
		i++
	}
	if i < len(toks) && toks[i].Kind == csstok.RightBracket {
		i++
	}
	return s, i
}

// Specificity computes the (A, B, C) triple for a complex selector (spec:
// "specificity is the sum across all compounds in the complex selector").
func (c Complex) Specificity() Specificity {
	var sp Specificity
	for _, step := range c.Steps {
		for _, s := range step.Compound.Simples {
			switch s.Type {
			case KindID:
				sp.A++
			case KindClass, KindAttr, KindPseudoClass:
				sp.B++
			case KindTag, KindPseudoElement:
				sp.C++
			}
		}
	}
	return sp
}

// Matches reports whether node satisfies the complex selector against
// tree (spec: walk the combinator chain from the rightmost/subject
// compound outward). An Unsupported compound never matches (the
// sentinel rule).
//
// Steps[i].Combinator records the relation between Steps[i-1] and
// Steps[i] (Steps[0].Combinator is NoCombinator: nothing precedes the
// outermost compound). Matching proceeds from the last step (the one node
// must satisfy directly) back toward Steps[0], at each point using the
// CURRENT step's combinator to find a candidate for the PRECEDING step.
func (c Complex) Matches(tree *dom.Tree, node dom.NodeID) bool {
	if len(c.Steps) == 0 {
		return false
	}
	if !matchesCompound(tree, node, c.Steps[len(c.Steps)-1].Compound) {
		return false
	}
	return matchChainFrom(tree, node, c.Steps, len(c.Steps)-1)
}

// matchChainFrom assumes node already matches c.Steps[idx].Compound and
// verifies the remaining (idx-1 ... 0) prefix of the chain.
func matchChainFrom(tree *dom.Tree, node dom.NodeID, steps []Step, idx int) bool {
	if idx == 0 {
		return true
	}
	combinator := steps[idx].Combinator
	prevCompound := steps[idx-1].Compound
	switch combinator {
	case Descendant:
		for _, anc := range tree.Ancestors(node) {
			if matchesCompound(tree, anc, prevCompound) && matchChainFrom(tree, anc, steps, idx-1) {
				return true
			}
		}
		return false
	case Child:
		parent := tree.Node(node).Parent
		if parent == dom.NoNode {
			return false
		}
		return matchesCompound(tree, parent, prevCompound) && matchChainFrom(tree, parent, steps, idx-1)
	case NextSibling:
		prevs := tree.PrecedingSiblings(node)
		if len(prevs) == 0 {
			return false
		}
		sib := prevs[0]
		return matchesCompound(tree, sib, prevCompound) && matchChainFrom(tree, sib, steps, idx-1)
	case SubsequentSibling:
		for _, sib := range tree.PrecedingSiblings(node) {
			if matchesCompound(tree, sib, prevCompound) && matchChainFrom(tree, sib, steps, idx-1) {
				return true
			}
		}
		return false
	}
	return false
}

func matchesCompound(tree *dom.Tree, node dom.NodeID, comp Compound) bool {
	if comp.Unsupported {
		return false
	}
	n := tree.Node(node)
	if n.Type != dom.ElementNode {
		return false
	}
	for _, s := range comp.Simples {
		if !matchesSimple(tree, node, s) {
			return false
		}
	}
	return true
}

func matchesSimple(tree *dom.Tree, node dom.NodeID, s Simple) bool {
	if s.Unsupported {
		return false
	}
	n := tree.Node(node)
	switch s.Type {
	case KindUniversal:
		return true
	case KindTag:
		return strings.ToLower(n.Tag) == s.Value
	case KindID:
		v, ok := tree.GetAttr(node, "id")
		return ok && v == s.Value
	case KindClass:
		for _, c := range tree.ClassList(node) {
			if c == s.Value {
				return true
			}
		}
		return false
	case KindAttr:
		v, ok := tree.GetAttr(node, s.Value)
		if !ok {
			return false
		}
		return matchAttrOp(s.AttrOp, v, s.AttrValue)
	case KindPseudoClass:
		return matchPseudoClass(tree, node, s.Value)
	}
	return false
}

func matchAttrOp(op, actual, want string) bool {
	switch op {
	case "=":
		return actual == want
	case "~=":
		for _, w := range strings.Fields(actual) {
			if w == want {
				return true
			}
		}
		return false
	case "^=":
		return strings.HasPrefix(actual, want)
	case "$=":
		return strings.HasSuffix(actual, want)
	case "*=":
		return strings.Contains(actual, want)
	case "|=":
		return actual == want || strings.HasPrefix(actual, want+"-")
	}
	return false
}

func matchPseudoClass(tree *dom.Tree, node dom.NodeID, name string) bool {
	switch name {
	case "root":
		return tree.Node(node).Parent == tree.Root
	case "empty":
		return len(tree.Children(node)) == 0
	case "first-child":
		return len(tree.PrecedingSiblings(node)) == 0
	case "last-child":
		return len(tree.FollowingSiblings(node)) == 0
	case "only-child":
		return len(tree.PrecedingSiblings(node)) == 0 && len(tree.FollowingSiblings(node)) == 0
	case "first-of-type":
		return isFirstOfType(tree, node)
	case "last-of-type":
		return isLastOfType(tree, node)
	}
	return false
}

func isFirstOfType(tree *dom.Tree, node dom.NodeID) bool {
	tag := tree.Node(node).Tag
	for _, sib := range tree.PrecedingSiblings(node) {
		if tree.Node(sib).Tag == tag {
			return false
		}
	}
	return true
}

func isLastOfType(tree *dom.Tree, node dom.NodeID) bool {
	tag := tree.Node(node).Tag
	for _, sib := range tree.FollowingSiblings(node) {
		if tree.Node(sib).Tag == tag {
			return false
		}
	}
	return true
}
