package vis

import "github.com/iksnae/vis-merge/internal"

// MergeNode folds incoming into base. Both must carry the same uid; on a
// mismatch base is returned unchanged. Neither input is modified.
func (e *Engine) MergeNode(base, incoming *Node) *Node {
	if base == nil {
		return incoming.Clone()
	}
	if incoming == nil {
		return base.Clone()
	}
	if base.UID != incoming.UID {
		internal.LogDebug("merge: uid mismatch %q != %q, keeping base", base.UID, incoming.UID)
		return base
	}

	// a dynamic node may hold an open fence, so it is never parsed
	var merged string
	if base.Dynamic {
		merged = base.Markdown + incoming.Markdown
	} else {
		merged = e.MergeMarkdown(base.Markdown, incoming.Markdown)
	}

	markdown := base.Markdown
	switch {
	case incoming.Kind.IsFull():
		markdown = incoming.Markdown
	case !base.Kind.IsFull() || incoming.Markdown != "":
		markdown = merged
	}

	out := &Node{
		UID:      base.UID,
		Kind:     incoming.Kind,
		Dynamic:  incoming.Dynamic,
		Markdown: markdown,
		extra:    mergeExtra(base.extra, incoming.extra),
	}

	// items are merged even for full nodes: full replaces markdown only
	if len(incoming.Items) > 0 {
		out.Items = e.mergeItems(base.Items, incoming.Items)
	} else if base.Items != nil {
		out.Items = base.Clone().Items
	}
	return out
}

// mergeItems keeps every base item in place, merges matching uids and
// appends new ones in incoming order.
func (e *Engine) mergeItems(base, incoming []*Node) []*Node {
	out := make([]*Node, 0, len(base)+len(incoming))
	pos := make(map[string]int, len(base))
	for _, item := range base {
		if item.UID != "" {
			if _, seen := pos[item.UID]; !seen {
				pos[item.UID] = len(out)
			}
		}
		out = append(out, item.Clone())
	}

	for _, item := range incoming {
		if item.UID != "" {
			if i, ok := pos[item.UID]; ok {
				out[i] = e.MergeNode(out[i], item)
				continue
			}
			pos[item.UID] = len(out)
		}
		out = append(out, item.Clone())
	}
	return out
}

// mergeExtra overlays incoming properties on base ones, last writer wins
func mergeExtra(base, incoming []field) []field {
	if len(base) == 0 && len(incoming) == 0 {
		return nil
	}
	out := append([]field(nil), base...)
	for _, f := range incoming {
		replaced := false
		for i := range out {
			if out[i].key == f.key {
				out[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return out
}
