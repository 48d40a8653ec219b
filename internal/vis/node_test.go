package vis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/iksnae/vis-merge/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *Node
		wantErr bool
	}{
		{
			name:    "all known fields",
			payload: `{"uid":"a","type":"all","dynamic":true,"markdown":"hi"}`,
			want:    &Node{UID: "a", Kind: KindFull, Dynamic: true, Markdown: "hi"},
		},
		{
			name:    "numeric uid",
			payload: `{"uid":7}`,
			want:    &Node{UID: "7"},
		},
		{
			name:    "surrounding whitespace",
			payload: "  {\"uid\":\"a\"}\n",
			want:    &Node{UID: "a"},
		},
		{
			name:    "missing uid",
			payload: `{"markdown":"x"}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			payload: `["a"]`,
			wantErr: true,
		},
		{
			name:    "truncated",
			payload: `{"uid":"a","markdown":"x`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeNode([]byte(tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				var perr *internal.ParseError
				assert.True(t, errors.As(err, &perr), "want *internal.ParseError, got %T", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.UID, got.UID)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.Dynamic, got.Dynamic)
			assert.Equal(t, tt.want.Markdown, got.Markdown)
		})
	}
}

func TestDecodeNode_Items(t *testing.T) {
	n, err := DecodeNode([]byte(`{"uid":"a","items":[{"uid":"1","markdown":"p"},{"markdown":"anon"},{"uid":"2"}]}`))
	require.NoError(t, err)
	require.Len(t, n.Items, 3)
	assert.Equal(t, []string{"1", "", "2"}, itemUIDs(n.Items))
	assert.Equal(t, "p", n.Items[0].Markdown)
	assert.Equal(t, "anon", n.Items[1].Markdown)

	empty, err := DecodeNode([]byte(`{"uid":"a","items":[]}`))
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestNode_MarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "known fields in fixed order",
			payload: `{"markdown":"x","type":"incr","uid":"a"}`,
			want:    `{"uid":"a","type":"incr","markdown":"x"}`,
		},
		{
			name:    "extras keep their order",
			payload: `{"uid":"a","zeta":1,"alpha":{"k":[1,2]},"title":"t\"q"}`,
			want:    `{"uid":"a","zeta":1,"alpha":{"k":[1,2]},"title":"t\"q"}`,
		},
		{
			name:    "false dynamic is dropped",
			payload: `{"uid":"a","dynamic":false}`,
			want:    `{"uid":"a"}`,
		},
		{
			name:    "empty items survive",
			payload: `{"uid":"a","items":[]}`,
			want:    `{"uid":"a","items":[]}`,
		},
		{
			name:    "html is not escaped",
			payload: `{"uid":"a","markdown":"<b>&</b>"}`,
			want:    `{"uid":"a","markdown":"<b>&</b>"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := DecodeNode([]byte(tt.payload))
			require.NoError(t, err)
			got, err := n.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.True(t, json.Valid(got))
		})
	}
}

func TestNode_Extra(t *testing.T) {
	n, err := DecodeNode([]byte(`{"uid":"a","title":"x","color":"red"}`))
	require.NoError(t, err)

	raw, ok := n.Extra("title")
	require.True(t, ok)
	assert.Equal(t, `"x"`, string(raw))

	_, ok = n.Extra("missing")
	assert.False(t, ok)

	n.SetExtra("title", json.RawMessage(`"y"`))
	n.SetExtra("size", json.RawMessage(`3`))
	assert.Equal(t, []string{"title", "color", "size"}, n.ExtraKeys())
}

func TestNode_Clone(t *testing.T) {
	n, err := DecodeNode([]byte(`{"uid":"a","items":[{"uid":"1","markdown":"p"}],"title":"x"}`))
	require.NoError(t, err)

	c := n.Clone()
	c.Items[0].Markdown = "changed"
	c.SetExtra("title", json.RawMessage(`"y"`))

	assert.Equal(t, "p", n.Items[0].Markdown)
	raw, _ := n.Extra("title")
	assert.Equal(t, `"x"`, string(raw))
	assert.Nil(t, (*Node)(nil).Clone())
}

func TestKind_IsFull(t *testing.T) {
	assert.True(t, KindFull.IsFull())
	assert.False(t, KindIncremental.IsFull())
	assert.False(t, Kind("").IsFull())
}
