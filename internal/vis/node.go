package vis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/iksnae/vis-merge/internal"
)

// Kind tells whether a node's markdown is a delta or a full replacement
type Kind string

const (
	KindIncremental Kind = "incr"
	KindFull        Kind = "all"
)

// IsFull reports whether markdown replaces what is already known.
// An empty kind counts as incremental.
func (k Kind) IsFull() bool {
	return k == KindFull
}

// field is a payload property the engine does not interpret
type field struct {
	key string
	raw []byte
}

// Node is one identity-stable block of streamed content.
type Node struct {
	UID      string
	Kind     Kind
	Dynamic  bool
	Markdown string
	Items    []*Node

	// extra keeps unknown properties in the order they were first seen
	extra []field
}

var (
	errNotObject  = errors.New("payload is not a JSON object")
	errMissingUID = errors.New("payload has no uid")
)

// DecodeNode decodes a fenced payload. A payload without a uid is rejected,
// since nothing could ever be merged into it.
func DecodeNode(data []byte) (*Node, error) {
	n, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	if n.UID == "" {
		return nil, &internal.ParseError{Source: "payload", Err: errMissingUID}
	}
	return n, nil
}

func decodeNode(data []byte) (*Node, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return nil, &internal.ParseError{Source: "payload", Err: errNotObject}
	}

	n := &Node{}
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		var err error
		name := string(key)
		switch name {
		case "uid":
			switch dataType {
			case jsonparser.String:
				n.UID, err = jsonparser.ParseString(value)
			case jsonparser.Number:
				n.UID = string(value)
			}
			return err
		case "type":
			if dataType == jsonparser.String {
				var s string
				s, err = jsonparser.ParseString(value)
				n.Kind = Kind(s)
			}
			return err
		case "dynamic":
			if dataType == jsonparser.Boolean {
				n.Dynamic, err = jsonparser.ParseBoolean(value)
			}
			return err
		case "markdown":
			if dataType == jsonparser.String {
				n.Markdown, err = jsonparser.ParseString(value)
			}
			return err
		case "items":
			if dataType == jsonparser.Array {
				n.Items, err = decodeItems(value)
			}
			return err
		default:
			n.extra = append(n.extra, field{key: name, raw: rawValue(value, dataType)})
			return nil
		}
	})
	if err != nil {
		return nil, &internal.ParseError{Source: "payload", Key: n.UID, Err: err}
	}
	return n, nil
}

func decodeItems(data []byte) ([]*Node, error) {
	items := make([]*Node, 0)
	if bytes.Equal(bytes.TrimSpace(data), []byte("[]")) {
		return items, nil
	}

	var itemErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if itemErr != nil {
			return
		}
		if err != nil {
			itemErr = err
			return
		}
		if dataType != jsonparser.Object {
			return
		}
		item, err := decodeNode(value)
		if err != nil {
			itemErr = err
			return
		}
		items = append(items, item)
	})
	if err != nil {
		return nil, err
	}
	if itemErr != nil {
		return nil, itemErr
	}
	return items, nil
}

// rawValue turns a jsonparser value back into JSON text
func rawValue(value []byte, dataType jsonparser.ValueType) []byte {
	if dataType == jsonparser.String {
		out := make([]byte, 0, len(value)+2)
		out = append(out, '"')
		out = append(out, value...)
		return append(out, '"')
	}
	return append([]byte(nil), value...)
}

// MarshalJSON writes the known fields first, then extras in their original order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeKey := func(key string) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(marshalString(key))
		buf.WriteByte(':')
	}

	writeKey("uid")
	buf.Write(marshalString(n.UID))
	if n.Kind != "" {
		writeKey("type")
		buf.Write(marshalString(string(n.Kind)))
	}
	if n.Dynamic {
		writeKey("dynamic")
		buf.WriteString("true")
	}
	if n.Markdown != "" {
		writeKey("markdown")
		buf.Write(marshalString(n.Markdown))
	}
	if n.Items != nil {
		writeKey("items")
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("failed to encode item %q: %w", item.UID, err)
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
	}
	for _, f := range n.extra {
		writeKey(f.key)
		buf.Write(f.raw)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts items without a uid; top-level payloads go through DecodeNode.
func (n *Node) UnmarshalJSON(data []byte) error {
	decoded, err := decodeNode(data)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

// Extra returns the raw JSON of a property the engine does not interpret
func (n *Node) Extra(key string) (json.RawMessage, bool) {
	for _, f := range n.extra {
		if f.key == key {
			return json.RawMessage(f.raw), true
		}
	}
	return nil, false
}

// SetExtra sets an uninterpreted property, keeping its position if it exists
func (n *Node) SetExtra(key string, raw json.RawMessage) {
	for i, f := range n.extra {
		if f.key == key {
			n.extra[i].raw = append([]byte(nil), raw...)
			return
		}
	}
	n.extra = append(n.extra, field{key: key, raw: append([]byte(nil), raw...)})
}

// ExtraKeys lists uninterpreted properties in order
func (n *Node) ExtraKeys() []string {
	keys := make([]string, 0, len(n.extra))
	for _, f := range n.extra {
		keys = append(keys, f.key)
	}
	return keys
}

// Clone returns a deep copy. Raw extra values are shared; they are never mutated in place.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Items != nil {
		out.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = item.Clone()
		}
	}
	if n.extra != nil {
		out.extra = append([]field(nil), n.extra...)
	}
	return &out
}

// encodePayload renders a node as a compact single-line fence payload
func encodePayload(n *Node) string {
	data, err := n.MarshalJSON()
	if err != nil {
		internal.LogWarn("Failed to encode node %s: %v", n.UID, err)
		return ""
	}
	return string(data) + "\n"
}

// marshalString encodes s as a JSON string without HTML escaping
func marshalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}
