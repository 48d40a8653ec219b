package vis

import (
	"testing"

	"github.com/iksnae/vis-merge/internal"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(internal.DefaultConfig())
}

// fence renders n as a closed Vis block without a trailing newline
func fence(t *testing.T, n *Node) string {
	t.Helper()
	data, err := n.MarshalJSON()
	require.NoError(t, err)
	return "```vis\n" + string(data) + "\n```"
}

func decodeBlock(t *testing.T, b *Block) *Node {
	t.Helper()
	n, err := DecodeNode([]byte(b.Payload()))
	require.NoError(t, err)
	return n
}

func itemUIDs(items []*Node) []string {
	uids := make([]string, 0, len(items))
	for _, item := range items {
		uids = append(uids, item.UID)
	}
	return uids
}
