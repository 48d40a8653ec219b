package vis

import (
	"sort"

	"github.com/iksnae/vis-merge/internal"
)

// Snapshot captures the parser state for export
func (p *Parser) Snapshot(stream string) *internal.Snapshot {
	return &internal.Snapshot{
		Stream:  stream,
		Chunks:  p.chunks,
		Content: p.current,
		Nodes:   p.engine.Summarize(p.current),
	}
}

// Snapshot captures the top-level value and the nodes of every channel
func (m *MultiParser) Snapshot(stream string) *internal.Snapshot {
	seen := make(map[string]internal.NodeSummary)
	m.collectNodes(seen)

	nodes := make([]internal.NodeSummary, 0, len(seen))
	for _, n := range seen {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].UID < nodes[j].UID })

	return &internal.Snapshot{
		Stream:  stream,
		Chunks:  m.chunks,
		Content: m.current,
		Nodes:   nodes,
	}
}

func (m *MultiParser) collectNodes(seen map[string]internal.NodeSummary) {
	for _, n := range m.engine.Summarize(m.text.Current()) {
		seen[n.UID] = n
	}
	for _, name := range m.order {
		if ch, ok := m.channels[name]; ok {
			ch.collectNodes(seen)
		}
	}
}
