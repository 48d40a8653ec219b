package vis

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind distinguishes opaque markdown from Vis payload fences
type BlockKind int

const (
	TextBlock BlockKind = iota
	VisBlock
)

// Block is a top-level slice of a document. Text blocks hold everything that
// is not a Vis fence, byte for byte.
type Block struct {
	Kind BlockKind

	raw     string
	open    string
	payload string
	close   string
	dirty   bool
}

// Payload returns the raw fence body of a Vis block
func (b *Block) Payload() string {
	return b.payload
}

// SetPayload replaces the fence body; the fence lines are kept
func (b *Block) SetPayload(payload string) {
	b.payload = payload
	b.dirty = true
}

// Closed reports whether a Vis block had a closing fence
func (b *Block) Closed() bool {
	return b.close != ""
}

func (b *Block) String() string {
	if b.Kind == TextBlock || !b.dirty {
		return b.raw
	}
	var sb strings.Builder
	sb.WriteString(b.open)
	if !strings.HasSuffix(b.open, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteString(b.payload)
	if b.payload != "" && !strings.HasSuffix(b.payload, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteString(b.close)
	return sb.String()
}

func (b *Block) clone() *Block {
	out := *b
	return &out
}

// Tree is a parsed document: an ordered list of top-level blocks
type Tree struct {
	Blocks []*Block
}

// String serializes the tree. An untouched tree reproduces its source exactly.
func (t *Tree) String() string {
	var sb strings.Builder
	for _, b := range t.Blocks {
		sb.WriteString(b.String())
	}
	return sb.String()
}

// VisBlocks returns the Vis blocks in document order
func (t *Tree) VisBlocks() []*Block {
	var out []*Block
	for _, b := range t.Blocks {
		if b.Kind == VisBlock {
			out = append(out, b)
		}
	}
	return out
}

// HasVisBlocks reports whether the tree has any top-level Vis block
func (t *Tree) HasVisBlocks() bool {
	for _, b := range t.Blocks {
		if b.Kind == VisBlock {
			return true
		}
	}
	return false
}

// Append adds a block at the end, putting it on its own line, and returns its position
func (t *Tree) Append(b *Block) int {
	if n := len(t.Blocks); n > 0 && !strings.HasSuffix(t.Blocks[n-1].String(), "\n") {
		t.Blocks = append(t.Blocks, &Block{Kind: TextBlock, raw: "\n"})
	}
	t.Blocks = append(t.Blocks, b)
	return len(t.Blocks) - 1
}

// Clone copies the block list so the copy can be rewritten independently
func (t *Tree) Clone() *Tree {
	out := &Tree{Blocks: make([]*Block, len(t.Blocks))}
	for i, b := range t.Blocks {
		out.Blocks[i] = b.clone()
	}
	return out
}

// Grammar wraps a CommonMark parser and finds Vis fences in its output
type Grammar struct {
	md    goldmark.Markdown
	infos map[string]bool
}

// NewGrammar creates a Grammar recognizing fences whose language is one of infoStrings
func NewGrammar(infoStrings []string) *Grammar {
	infos := make(map[string]bool, len(infoStrings))
	for _, s := range infoStrings {
		infos[s] = true
	}
	return &Grammar{
		md:    goldmark.New(),
		infos: infos,
	}
}

// Parse splits text into opaque text blocks and top-level Vis blocks.
// It never fails: anything it cannot attribute stays opaque text.
func (g *Grammar) Parse(src string) *Tree {
	t := &Tree{}
	if src == "" {
		return t
	}

	source := []byte(src)
	doc := g.md.Parser().Parse(text.NewReader(source))

	pos := 0
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() != ast.KindFencedCodeBlock {
			continue
		}
		fence := n.(*ast.FencedCodeBlock)
		if fence.Info == nil || !g.infos[string(fence.Language(source))] {
			continue
		}
		b, start, end, ok := visBlock(fence, source)
		if !ok || start < pos {
			continue
		}
		if start > pos {
			t.Blocks = append(t.Blocks, &Block{Kind: TextBlock, raw: src[pos:start]})
		}
		t.Blocks = append(t.Blocks, b)
		pos = end
	}
	if pos < len(src) {
		t.Blocks = append(t.Blocks, &Block{Kind: TextBlock, raw: src[pos:]})
	}
	return t
}

// visBlock recovers the source range of a fenced block. goldmark keeps the
// info string and content line positions but not the fence lines themselves.
func visBlock(fence *ast.FencedCodeBlock, source []byte) (*Block, int, int, bool) {
	infoStart := fence.Info.Segment.Start
	start := bytes.LastIndexByte(source[:infoStart], '\n') + 1
	openEnd := lineEnd(source, infoStart)

	marker, width := fenceMarker(source[start:openEnd])
	if marker != '`' {
		return nil, 0, 0, false
	}

	contentEnd := openEnd
	if lines := fence.Lines(); lines.Len() > 0 {
		contentEnd = lines.At(lines.Len() - 1).Stop
		if contentEnd < len(source) && source[contentEnd-1] != '\n' && source[contentEnd] == '\n' {
			contentEnd++
		}
	}

	end := contentEnd
	closeLine := ""
	if contentEnd < len(source) {
		next := lineEnd(source, contentEnd)
		if isClosingFence(source[contentEnd:next], marker, width) {
			closeLine = string(source[contentEnd:next])
			end = next
		}
	}

	b := &Block{
		Kind:    VisBlock,
		raw:     string(source[start:end]),
		open:    string(source[start:openEnd]),
		payload: string(source[openEnd:contentEnd]),
		close:   closeLine,
	}
	return b, start, end, true
}

// lineEnd returns the offset just past the newline ending the line at from
func lineEnd(source []byte, from int) int {
	if i := bytes.IndexByte(source[from:], '\n'); i >= 0 {
		return from + i + 1
	}
	return len(source)
}

// fenceMarker returns the fence character and run length of an opening line
func fenceMarker(line []byte) (byte, int) {
	trimmed := bytes.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) == 0 {
		return 0, 0
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return 0, 0
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0
	}
	return c, n
}

func isClosingFence(line []byte, marker byte, width int) bool {
	c, n := fenceMarker(line)
	if c != marker || n < width {
		return false
	}
	trimmed := bytes.TrimLeft(line, " ")
	return len(bytes.TrimSpace(trimmed[n:])) == 0
}

// countFenceLines counts lines that open or close a backtick fence
func countFenceLines(s string) int {
	count := 0
	for _, line := range strings.Split(s, "\n") {
		if c, _ := fenceMarker([]byte(line)); c == '`' {
			count++
		}
	}
	return count
}
