package vis

import "github.com/iksnae/vis-merge/internal"

// MergeContainers reconciles every Vis block of incoming against base and
// returns the merged tree. Known uids are merged where they live in base,
// whether at the top level or nested inside another node; unknown uids are
// appended. Text blocks of incoming are not copied. base is not modified.
func (e *Engine) MergeContainers(base, incoming *Tree) *Tree {
	out := base.Clone()

	nodes := make(map[int]*Node)        // block position -> decoded node
	nested := make(map[int]IdentityMap) // block position -> uids nested in it
	top := make(map[string]int)         // top-level uid -> block position
	owner := make(map[string]int)       // nested uid -> owning block position
	seenRaw := make(map[string]bool)

	// owners are rebuilt in block order so a node that drops its nested
	// content, such as a full replace, releases those uids
	rebuildOwners := func() {
		owner = make(map[string]int, len(owner))
		for pos := range out.Blocks {
			for uid := range nested[pos] {
				if _, ok := owner[uid]; !ok {
					owner[uid] = pos
				}
			}
		}
	}

	index := func(pos int, n *Node) {
		nodes[pos] = n
		if _, ok := top[n.UID]; !ok {
			top[n.UID] = pos
		}
		children := IdentityMap{}
		e.indexChildren(n, children)
		nested[pos] = children
	}

	for i, b := range out.Blocks {
		if b.Kind != VisBlock {
			continue
		}
		seenRaw[b.String()] = true
		n, err := DecodeNode([]byte(b.Payload()))
		if err != nil {
			internal.LogDebug("container merge: base block not indexed: %v", err)
			continue
		}
		index(i, n)
	}
	rebuildOwners()

	for _, ib := range incoming.VisBlocks() {
		n, err := DecodeNode([]byte(ib.Payload()))
		if err != nil {
			if raw := ib.String(); !seenRaw[raw] {
				internal.LogDebug("container merge: appending undecodable block: %v", err)
				seenRaw[raw] = true
				out.Append(ib.clone())
			}
			continue
		}

		if pos, ok := top[n.UID]; ok {
			merged := e.MergeNode(nodes[pos], n)
			out.Blocks[pos].SetPayload(encodePayload(merged))
			index(pos, merged)
			rebuildOwners()
			continue
		}

		if pos, ok := owner[n.UID]; ok {
			idx := IdentityMap{}
			e.indexNode(n, idx)
			if updated, changed := e.updateNode(nodes[pos], idx); changed {
				out.Blocks[pos].SetPayload(encodePayload(updated))
				index(pos, updated)
				rebuildOwners()
				continue
			}
			internal.LogDebug("container merge: nested uid %q not found in block %d, appending", n.UID, pos)
		}

		pos := out.Append(ib.clone())
		seenRaw[ib.String()] = true
		index(pos, n)
		rebuildOwners()
	}
	return out
}

// UpdateTree merges every node of tree whose uid is in idx with the indexed
// node, descending into nested markdown and items for uids not found at the
// top. Blocks with undecodable payloads are left as they are.
func (e *Engine) UpdateTree(tree *Tree, idx IdentityMap) *Tree {
	out := tree.Clone()
	e.updateTree(out, idx)
	return out
}

func (e *Engine) updateTree(t *Tree, idx IdentityMap) bool {
	if len(idx) == 0 {
		return false
	}
	changed := false
	for _, b := range t.VisBlocks() {
		n, err := DecodeNode([]byte(b.Payload()))
		if err != nil {
			internal.LogDebug("update: leaving block untouched: %v", err)
			continue
		}
		if updated, ok := e.updateNode(n, idx); ok {
			b.SetPayload(encodePayload(updated))
			changed = true
		}
	}
	return changed
}

// updateNode returns the reconciled node and whether anything changed
func (e *Engine) updateNode(n *Node, idx IdentityMap) (*Node, bool) {
	if m, ok := idx[n.UID]; ok && n.UID != "" {
		return e.MergeNode(n, m), true
	}

	var out *Node
	if !n.Dynamic && hasFenceMarker(n.Markdown) {
		t := e.grammar.Parse(n.Markdown)
		if e.updateTree(t, idx) {
			out = n.Clone()
			out.Markdown = t.String()
		}
	}
	for i, item := range n.Items {
		updated, ok := e.updateNode(item, idx)
		if !ok {
			continue
		}
		if out == nil {
			out = n.Clone()
		}
		out.Items[i] = updated
	}
	if out == nil {
		return n, false
	}
	return out, true
}
