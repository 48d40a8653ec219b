package vis

import (
	"sort"

	"github.com/iksnae/vis-merge/internal"
)

// IdentityMap indexes every node of a document by uid, at any depth
type IdentityMap map[string]*Node

// UIDs returns the indexed uids in sorted order
func (m IdentityMap) UIDs() []string {
	uids := make([]string, 0, len(m))
	for uid := range m {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// BuildIdentityMap parses markdown and indexes every Vis node it contains,
// including nodes nested in other nodes' markdown and items.
func (e *Engine) BuildIdentityMap(markdown string) IdentityMap {
	idx := IdentityMap{}
	if hasFenceMarker(markdown) {
		e.indexTree(e.grammar.Parse(markdown), idx)
	}
	return idx
}

// IndexTree indexes an already parsed tree
func (e *Engine) IndexTree(t *Tree) IdentityMap {
	idx := IdentityMap{}
	e.indexTree(t, idx)
	return idx
}

func (e *Engine) indexTree(t *Tree, idx IdentityMap) {
	for _, b := range t.VisBlocks() {
		n, err := DecodeNode([]byte(b.Payload()))
		if err != nil {
			internal.LogDebug("identity map: skipping block: %v", err)
			continue
		}
		e.indexNode(n, idx)
	}
}

// indexNode records n and everything below it; the last occurrence of a uid wins
func (e *Engine) indexNode(n *Node, idx IdentityMap) {
	if n.UID != "" {
		idx[n.UID] = n
	}
	e.indexChildren(n, idx)
}

func (e *Engine) indexChildren(n *Node, idx IdentityMap) {
	if hasFenceMarker(n.Markdown) {
		e.indexTree(e.grammar.Parse(n.Markdown), idx)
	}
	for _, item := range n.Items {
		e.indexNode(item, idx)
	}
}
