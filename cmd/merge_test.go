package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/vis-merge/internal"
	"github.com/iksnae/vis-merge/testutil"
)

func TestMergeCommand(t *testing.T) {
	incr := func(markdown string) string {
		return "```vis\n{\"uid\":\"a\",\"type\":\"incr\",\"markdown\":\"" + markdown + "\"}\n```"
	}

	tests := []struct {
		name  string
		stdin string
		files []string
		args  []string
		want  string
	}{
		{
			name:  "chunk files in order",
			files: []string{incr("x"), incr("y")},
			want:  incr("xy") + "\n",
		},
		{
			name:  "whole stdin is one chunk",
			stdin: "Hello",
			want:  "Hello\n",
		},
		{
			name:  "jsonl stdin",
			stdin: "\"Hello \"\n\n\"world\"\n",
			args:  []string{"--jsonl"},
			want:  "Hello world\n",
		},
		{
			name:  "jsonl envelopes",
			stdin: `"{\"left\":\"A\",\"right\":\"B\"}"` + "\n" + `"{\"left\":\"A2\",\"right\":\"B2\"}"` + "\n",
			args:  []string{"--jsonl"},
			want:  `{"left":"AA2","right":"BB2"}` + "\n",
		},
		{
			name:  "full replace",
			files: []string{incr("x"), "```vis\n{\"uid\":\"a\",\"type\":\"all\",\"markdown\":\"z\"}\n```"},
			want:  "```vis\n{\"uid\":\"a\",\"type\":\"all\",\"markdown\":\"z\"}\n```\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"merge"}, tt.args...)
			if len(tt.files) > 0 {
				args = append(args, testutil.CreateChunkFiles(t, testutil.CreateTempDir(t), tt.files...)...)
			}

			out, err := executeCommand(t, tt.stdin, args...)
			if err != nil {
				t.Fatalf("merge error = %v", err)
			}
			if out != tt.want {
				t.Errorf("merge output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestMergeCommand_JSONFormat(t *testing.T) {
	stdin := "```vis\n{\"uid\":\"a\",\"items\":[{\"uid\":\"1\",\"markdown\":\"p\"}]}\n```"
	out, err := executeCommand(t, stdin, "merge", "--format", "json")
	if err != nil {
		t.Fatalf("merge error = %v", err)
	}

	var snap internal.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("output is not a JSON snapshot: %v\n%s", err, out)
	}
	if snap.Chunks != 1 {
		t.Errorf("Chunks = %d, want 1", snap.Chunks)
	}
	if len(snap.Nodes) != 2 || snap.Nodes[0].UID != "1" || snap.Nodes[1].UID != "a" {
		t.Errorf("Nodes = %+v, want uids 1 and a", snap.Nodes)
	}
}

func TestMergeCommand_OutputFile(t *testing.T) {
	output := filepath.Join(testutil.CreateTempDir(t), "doc.md")

	out, err := executeCommand(t, "\"Hello \"\n\"world\"\n", "merge", "--jsonl", "-o", output)
	if err != nil {
		t.Fatalf("merge error = %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty when writing a file, got %q", out)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if string(data) != "Hello world\n" {
		t.Errorf("output file = %q, want %q", string(data), "Hello world\n")
	}
}

func TestMergeCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{name: "invalid jsonl line", stdin: "\"ok\"\nnot json\n", args: []string{"--jsonl"}, wantErr: "line 2"},
		{name: "empty jsonl", stdin: "\n\n", args: []string{"--jsonl"}, wantErr: "no chunks"},
		{name: "unknown format", stdin: "x", args: []string{"--format", "xml"}, wantErr: "export error"},
		{name: "missing file", args: []string{"/nonexistent/chunk.md"}, wantErr: "failed to read chunk file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.stdin, append([]string{"merge"}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("merge error = %v, want one containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSONLChunks(t *testing.T) {
	chunks, err := decodeJSONLChunks("test", []byte("\"a\\n\"\n  \"b\"  \n"))
	if err != nil {
		t.Fatalf("decodeJSONLChunks() error = %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "a\n" || chunks[1] != "b" {
		t.Errorf("decodeJSONLChunks() = %q", chunks)
	}

	_, err = decodeJSONLChunks("test", []byte("{\"not\":\"a string\"}"))
	var parseErr *internal.ParseError
	if !errors.As(err, &parseErr) || parseErr.Source != "test" {
		t.Errorf("decodeJSONLChunks() error = %v, want ParseError from test", err)
	}
}
