package internal

// Snapshot is the accumulated state of one stream after a run of updates
type Snapshot struct {
	Stream  string        `json:"stream" yaml:"stream"`
	Chunks  int           `json:"chunks" yaml:"chunks"`
	Content string        `json:"content" yaml:"content"`
	Nodes   []NodeSummary `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

// NodeSummary describes one identity-bearing node of a merged document
type NodeSummary struct {
	UID           string `json:"uid" yaml:"uid"`
	Kind          string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Dynamic       bool   `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
	Items         int    `json:"items,omitempty" yaml:"items,omitempty"`
	MarkdownBytes int    `json:"markdown_bytes" yaml:"markdown_bytes"`
}
