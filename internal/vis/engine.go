// Package vis merges streamed Vis protocol documents chunk by chunk.
//
// A Vis document is markdown with fenced blocks whose body is a JSON node
// ({"uid": ..., "type": "incr"|"all", "dynamic": ..., "markdown": ..., "items": [...]}).
// Producers restate or extend nodes across chunks; the engine folds each chunk
// into the accumulated document by uid so the result matches what the
// finished document will look like.
package vis

import (
	"strings"

	"github.com/iksnae/vis-merge/internal"
)

// Engine holds the merge settings. It keeps no per-document state and can be
// shared by any number of parsers used from the same goroutine.
type Engine struct {
	grammar   *Grammar
	threshold int
}

// NewEngine creates an Engine from configuration
func NewEngine(cfg internal.Config) *Engine {
	cfg = cfg.Normalize()
	return &Engine{
		grammar:   NewGrammar(cfg.InfoStrings),
		threshold: cfg.FenceThreshold,
	}
}

// Grammar returns the grammar adapter used by the engine
func (e *Engine) Grammar() *Grammar {
	return e.grammar
}

// Summarize lists the identity-bearing nodes of a document, sorted by uid
func (e *Engine) Summarize(markdown string) []internal.NodeSummary {
	idx := e.BuildIdentityMap(markdown)
	summaries := make([]internal.NodeSummary, 0, len(idx))
	for _, uid := range idx.UIDs() {
		n := idx[uid]
		summaries = append(summaries, internal.NodeSummary{
			UID:           n.UID,
			Kind:          string(n.Kind),
			Dynamic:       n.Dynamic,
			Items:         len(n.Items),
			MarkdownBytes: len(n.Markdown),
		})
	}
	return summaries
}

func hasFenceMarker(s string) bool {
	return strings.Contains(s, "```")
}
