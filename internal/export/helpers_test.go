package export

import "github.com/iksnae/vis-merge/internal"

func testSnapshot() *internal.Snapshot {
	return &internal.Snapshot{
		Stream:  "doc",
		Chunks:  3,
		Content: "# Title\n\n```vis\n{\"uid\":\"a\",\"markdown\":\"x < y\"}\n```",
		Nodes: []internal.NodeSummary{
			{UID: "a", Kind: "incr", MarkdownBytes: 5},
			{UID: "b", Dynamic: true, Items: 2},
		},
	}
}
