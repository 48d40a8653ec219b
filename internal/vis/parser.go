package vis

import (
	"bytes"
	"encoding/json"

	"github.com/buger/jsonparser"
	"github.com/iksnae/vis-merge/internal"
)

// Parser accumulates one channel's document, one chunk at a time.
// It is not safe for concurrent use; chunks must arrive in order.
type Parser struct {
	engine  *Engine
	current string
	index   IdentityMap
	chunks  int
}

// NewParser creates an empty single-channel parser
func NewParser(engine *Engine) *Parser {
	return &Parser{engine: engine}
}

// Update folds chunk into the accumulated document and returns the result
func (p *Parser) Update(chunk string) string {
	p.chunks++
	if p.current == "" {
		p.current = chunk
		p.index = nil
		return p.current
	}

	p.index = p.engine.BuildIdentityMap(chunk)
	p.current = p.engine.MergeMarkdown(p.current, chunk)
	return p.current
}

// Current returns the accumulated document
func (p *Parser) Current() string {
	return p.current
}

// Index returns the identity map of the last merged chunk
func (p *Parser) Index() IdentityMap {
	return p.index
}

// Nodes indexes the accumulated document
func (p *Parser) Nodes() IdentityMap {
	return p.engine.BuildIdentityMap(p.current)
}

// Chunks returns how many chunks have been applied
func (p *Parser) Chunks() int {
	return p.chunks
}

// MultiParser fans a JSON envelope out to one channel per property, so
// independently streamed panes merge on their own. Chunks that are not JSON
// objects go to a single unnamed channel.
type MultiParser struct {
	engine   *Engine
	text     *Parser
	channels map[string]*MultiParser
	order    []string
	values   map[string][]byte
	current  string
	chunks   int
}

// NewMultiParser creates an empty multi-channel parser
func NewMultiParser(engine *Engine) *MultiParser {
	return &MultiParser{
		engine:   engine,
		text:     NewParser(engine),
		channels: make(map[string]*MultiParser),
		values:   make(map[string][]byte),
	}
}

// Update applies chunk and returns the current top-level value: the merged
// envelope as JSON, or the merged markdown of the unnamed channel.
func (m *MultiParser) Update(chunk string) string {
	m.chunks++
	if data, ok := envelope(chunk); ok {
		out, err := m.updateEnvelope(data)
		if err == nil {
			m.current = out
			return m.current
		}
		internal.LogDebug("envelope: falling back to text channel: %v", err)
	}
	m.current = m.text.Update(chunk)
	return m.current
}

// envelope reports whether chunk is a JSON object
func envelope(chunk string) ([]byte, bool) {
	data := bytes.TrimSpace([]byte(chunk))
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return nil, false
	}
	return data, true
}

func (m *MultiParser) updateEnvelope(data []byte) (string, error) {
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)

		var merged []byte
		switch dataType {
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return &internal.ParseError{Source: "envelope", Key: name, Err: err}
			}
			merged = marshalString(m.channel(name).Update(s))
		case jsonparser.Object:
			merged = []byte(m.channel(name).Update(string(value)))
		default:
			merged = rawValue(value, dataType)
		}

		if _, seen := m.values[name]; !seen {
			m.order = append(m.order, name)
		}
		m.values[name] = merged
		return nil
	})
	if err != nil {
		return "", err
	}
	return m.encodeEnvelope(), nil
}

// encodeEnvelope writes every channel seen so far, in first-seen order
func (m *MultiParser) encodeEnvelope() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalString(name))
		buf.WriteByte(':')
		buf.Write(m.values[name])
	}
	buf.WriteByte('}')
	return buf.String()
}

func (m *MultiParser) channel(name string) *MultiParser {
	ch, ok := m.channels[name]
	if !ok {
		ch = NewMultiParser(m.engine)
		m.channels[name] = ch
	}
	return ch
}

// Channel returns the parser of a named channel if it has been seen
func (m *MultiParser) Channel(name string) (*MultiParser, bool) {
	ch, ok := m.channels[name]
	return ch, ok
}

// Channels lists channel names in first-seen order
func (m *MultiParser) Channels() []string {
	return append([]string(nil), m.order...)
}

// Text returns the unnamed channel used for non-envelope chunks
func (m *MultiParser) Text() *Parser {
	return m.text
}

// Current returns the last value returned by Update
func (m *MultiParser) Current() string {
	return m.current
}

// Chunks returns how many chunks have been applied
func (m *MultiParser) Chunks() int {
	return m.chunks
}
