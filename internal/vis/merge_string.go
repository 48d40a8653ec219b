package vis

import "strings"

// MergeMarkdown combines two markdown fragments for the same slot.
//
// Fragments that may hold an unterminated fence, or that carry no fences at
// all, are concatenated. Otherwise both are parsed and the Vis blocks of
// incoming are reconciled into base by uid.
func (e *Engine) MergeMarkdown(base, incoming string) string {
	if base == "" {
		return incoming
	}
	if incoming == "" {
		return base
	}

	// parsing an unterminated fence would swallow the rest of the document
	if e.isPartial(base) || e.isPartial(incoming) {
		return base + incoming
	}
	if !hasFenceMarker(base) && !hasFenceMarker(incoming) {
		return base + incoming
	}

	incomingTree := e.grammar.Parse(incoming)
	if incomingTree.HasVisBlocks() {
		return e.MergeContainers(e.grammar.Parse(base), incomingTree).String()
	}

	// Vis blocks are only recognized at the top level, so an incoming tree
	// without them has an empty identity map and nothing to update in base
	return base
}

// isPartial reports whether s may contain a fence that is still open: too few
// backticks to open and close one, or an odd number of fence lines.
func (e *Engine) isPartial(s string) bool {
	if strings.Count(s, "`") < e.threshold {
		return true
	}
	return countFenceLines(s)%2 != 0
}
