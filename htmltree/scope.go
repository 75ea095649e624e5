package htmltree

// hasElementInScope implements the generic "has an element in the
// specific scope" algorithm (spec §4.2.3) parameterized by the set of
// tags that stop the walk.
func (b *Builder) hasElementInScope(target string, stopSet map[string]bool) bool {
	for i := len(b.stack) - 1; i >= 0; i-- {
		tag := b.tagOf(b.stack[i])
		if tag == target {
			return true
		}
		if stopSet[tag] {
			return false
		}
	}
	return false
}

var defaultScopeStop = map[string]bool{
	"applet": true, "caption": true, "html": true, "table": true,
	"td": true, "th": true, "marquee": true, "object": true, "template": true,
}

var listItemScopeStop = union(defaultScopeStop, map[string]bool{"ol": true, "ul": true})

var buttonScopeStop = union(defaultScopeStop, map[string]bool{"button": true})

var tableScopeStop = map[string]bool{"html": true, "table": true, "template": true}

func union(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func (b *Builder) hasInScope(tag string) bool       { return b.hasElementInScope(tag, defaultScopeStop) }
func (b *Builder) hasInListItemScope(tag string) bool {
	return b.hasElementInScope(tag, listItemScopeStop)
}
func (b *Builder) hasInButtonScope(tag string) bool { return b.hasElementInScope(tag, buttonScopeStop) }
func (b *Builder) hasInTableScope(tag string) bool  { return b.hasElementInScope(tag, tableScopeStop) }

func (b *Builder) hasInSelectScope(tag string) bool {
	for i := len(b.stack) - 1; i >= 0; i-- {
		t := b.tagOf(b.stack[i])
		if t == tag {
			return true
		}
		if t != "optgroup" && t != "option" {
			return false
		}
	}
	return false
}

// generateImpliedEndTags pops elements whose close tags are implied by
// the standard (spec §4.2.3), optionally excluding one tag name (used by
// the end-tag handling for that same element).
var impliedEndTagElements = map[string]bool{
	"dd": true, "dt": true, "li": true, "optgroup": true, "option": true,
	"p": true, "rb": true, "rp": true, "rt": true, "rtc": true,
}

func (b *Builder) generateImpliedEndTags(except string) {
	for len(b.stack) > 0 {
		tag := b.tagOf(b.current())
		if tag == except || !impliedEndTagElements[tag] {
			return
		}
		b.pop()
	}
}

// closePElementIfInButtonScope implements the "if the stack of open
// elements has a p element in button scope, close a p element" step that
// precedes insertion of most block-level elements (spec §4.2.6).
func (b *Builder) closePElementIfInButtonScope() {
	if !b.hasInButtonScope("p") {
		return
	}
	b.generateImpliedEndTags("p")
	if b.tagOf(b.current()) != "p" {
		b.err("unexpected-end-tag-for-implied-p")
	}
	b.popUntilTagPopped("p")
}
