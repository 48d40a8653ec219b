package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/iksnae/vis-merge/internal"
	"github.com/iksnae/vis-merge/internal/export"
	"github.com/iksnae/vis-merge/internal/vis"
	"github.com/spf13/cobra"
)

var (
	mergeJSONL  bool
	mergeFormat string
	mergeOutput string
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge chunks into a single document",
	Long: `Merge streamed chunks in order and print the resulting document.

Each file argument is one chunk. Without files the chunks are read from
stdin: the whole input is one chunk, or with --jsonl every line is a JSON
string holding one chunk. Chunks that are JSON objects are treated as
multi-channel envelopes and merged per property.

Examples:
  vis-merge merge part1.md part2.md part3.md
  producer | vis-merge merge --jsonl --format json
  vis-merge merge --jsonl log.jsonl -o doc.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		chunks, err := readChunks(cmd.InOrStdin(), args, mergeJSONL)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			return fmt.Errorf("no chunks to merge")
		}

		parser := vis.NewMultiParser(vis.NewEngine(cfg))
		for _, chunk := range chunks {
			parser.Update(chunk)
		}
		internal.LogDebug("Merged %d chunk(s) into %d byte(s)", len(chunks), len(parser.Current()))

		return writeSnapshot(cmd, parser.Snapshot(cfg.DefaultChannel), mergeFormat, mergeOutput)
	},
}

// readChunks returns the chunks held by files, or by stdin when no file is given
func readChunks(stdin io.Reader, files []string, jsonl bool) ([]string, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if jsonl {
			return decodeJSONLChunks("stdin", data)
		}
		return []string{string(data)}, nil
	}

	var chunks []string
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk file: %w", err)
		}
		if !jsonl {
			chunks = append(chunks, string(data))
			continue
		}
		decoded, err := decodeJSONLChunks(path, data)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, decoded...)
	}
	return chunks, nil
}

// decodeJSONLChunks decodes one JSON string per non-blank line
func decodeJSONLChunks(source string, data []byte) ([]string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	var chunks []string
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var chunk string
		if err := json.Unmarshal(text, &chunk); err != nil {
			return nil, &internal.ParseError{Source: source, Key: "line " + strconv.Itoa(line), Err: err}
		}
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", source, err)
	}
	return chunks, nil
}

// writeSnapshot exports snap to the output file, or to stdout when output is empty
func writeSnapshot(cmd *cobra.Command, snap *internal.Snapshot, format, output string) error {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}

	if output == "" {
		return exporter.Export(snap, cmd.OutOrStdout())
	}

	file, err := os.Create(output)
	if err != nil {
		return &internal.ExportError{Format: format, Path: output, Err: err}
	}
	if err := exporter.Export(snap, file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to export %s: %w", output, err)
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: format, Path: output, Err: err}
	}

	internal.PrintSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Wrote %s", output))
	return nil
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().BoolVar(&mergeJSONL, "jsonl", false, "Read JSON string chunks, one per line")
	mergeCmd.Flags().StringVarP(&mergeFormat, "format", "f", "md", "Output format (md, json, jsonl, yaml)")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Output file (default stdout)")
}
