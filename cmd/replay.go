package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/iksnae/vis-merge/internal"
	"github.com/iksnae/vis-merge/internal/export"
	"github.com/iksnae/vis-merge/internal/vis"
	"github.com/spf13/cobra"
)

var (
	replayDB         string
	replayStream     string
	replayFormat     string
	replayOutDir     string
	replayClearCache bool
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay chunk logs stored in a SQLite database",
	Long: `Replay every chunk log stored in a SQLite chunk store and report the
merged document of each stream.

The store holds a chunkKV(key, value) table with keys chunk:<stream>:<seq>.
Merged snapshots are cached and reused until the database changes.

Examples:
  vis-merge replay --db chunks.db                     # summary of all streams
  vis-merge replay --db chunks.db --stream doc -f md  # one merged document
  vis-merge replay --db chunks.db -f json --out ./snapshots`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := filepath.Abs(replayDB)
		if err != nil {
			return fmt.Errorf("failed to resolve database path: %w", err)
		}

		snaps, err := replaySnapshots(cmd, dbPath)
		if err != nil {
			return err
		}

		if replayStream != "" {
			snaps = filterSnapshots(snaps, replayStream)
			if len(snaps) == 0 {
				return fmt.Errorf("stream not found: %s (run without --stream to list streams)", replayStream)
			}
		}

		if replayOutDir != "" {
			return exportSnapshots(cmd, snaps)
		}
		if replayFormat == "table" {
			displayStreams(cmd.OutOrStdout(), snaps)
			return nil
		}
		for _, snap := range snaps {
			if err := writeSnapshot(cmd, snap, replayFormat, ""); err != nil {
				return err
			}
		}
		return nil
	},
}

// replaySnapshots returns the cached snapshots for dbPath, rebuilding them
// from the chunk store when the cache is missing or stale
func replaySnapshots(cmd *cobra.Command, dbPath string) ([]*internal.Snapshot, error) {
	cacheManager := internal.NewCacheManager(cfg.CacheDir)
	cacheManager.SetEngineKey(cfg.EngineKey())

	if replayClearCache {
		if err := cacheManager.ClearCache(); err != nil {
			internal.LogWarn("Failed to clear cache: %v", err)
		} else {
			internal.LogInfo("Cache cleared")
		}
	}

	valid, err := cacheManager.IsCacheValid(dbPath)
	if err == nil && valid {
		internal.LogInfo("Loading snapshots from cache...")
		snaps, err := cacheManager.LoadAllSnapshots()
		if err == nil && len(snaps) > 0 {
			internal.LogInfo("Loaded %d snapshot(s) from cache", len(snaps))
			return snaps, nil
		}
		internal.LogWarn("Failed to load cache: %v, replaying...", err)
	}

	var streams map[string][]internal.Chunk
	var snaps []*internal.Snapshot
	steps := []internal.ProgressStep{
		{
			Message: "Loading chunks from " + filepath.Base(dbPath),
			Fn: func() error {
				db, err := internal.OpenDatabase(dbPath)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()

				streams, err = internal.LoadChunks(db)
				return err
			},
		},
		{
			Message: "Merging streams",
			Fn: func() error {
				engine := vis.NewEngine(cfg)
				for _, name := range internal.StreamNames(streams) {
					snaps = append(snaps, replayStreamChunks(engine, name, streams[name]))
				}
				return nil
			},
		},
		{
			Message: "Caching snapshots",
			Fn: func() error {
				if err := cacheManager.SaveSnapshots(snaps, dbPath); err != nil {
					internal.LogWarn("Failed to save cache: %v", err)
				}
				return nil
			},
		},
	}

	if err := internal.ShowProgressWithSteps(cmd.Context(), steps); err != nil {
		return nil, err
	}
	return snaps, nil
}

func replayStreamChunks(engine *vis.Engine, name string, chunks []internal.Chunk) *internal.Snapshot {
	parser := vis.NewMultiParser(engine)
	for _, c := range chunks {
		parser.Update(c.Body)
	}
	return parser.Snapshot(name)
}

func filterSnapshots(snaps []*internal.Snapshot, stream string) []*internal.Snapshot {
	for _, snap := range snaps {
		if snap.Stream == stream {
			return []*internal.Snapshot{snap}
		}
	}
	return nil
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

func exportSnapshots(cmd *cobra.Command, snaps []*internal.Snapshot) error {
	format := replayFormat
	if format == "table" {
		format = "md"
	}
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(replayOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	written := 0
	for _, snap := range snaps {
		path := filepath.Join(replayOutDir, fmt.Sprintf("%s.%s", fileNameReplacer.Replace(snap.Stream), exporter.Extension()))
		file, err := os.Create(path)
		if err != nil {
			internal.LogError("Failed to create file %s: %v", path, err)
			continue
		}

		if err := exporter.Export(snap, file); err != nil {
			_ = file.Close()
			internal.LogError("Failed to export stream %s: %v", snap.Stream, err)
			continue
		}

		if err := file.Close(); err != nil {
			internal.LogWarn("Failed to close file %s: %v", path, err)
		}
		written++
	}

	internal.PrintSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Export complete: %d stream(s) exported to %s", written, replayOutDir))
	return nil
}

func displayStreams(w io.Writer, snaps []*internal.Snapshot) {
	if len(snaps) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("No streams found"))
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Found %d stream(s)", len(snaps))))
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("Stream")+"\t"+titleStyle.Render("Chunks")+"\t"+titleStyle.Render("Nodes")+"\t"+titleStyle.Render("Size")+"\t")
	_, _ = fmt.Fprintln(tw, strings.Repeat("─", 60))

	for _, snap := range snaps {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			uidStyle.Render(snap.Stream),
			countStyle.Render(strconv.Itoa(snap.Chunks)),
			countStyle.Render(strconv.Itoa(len(snap.Nodes))),
			dimStyle.Render(fmt.Sprintf("%d B", len(snap.Content))))
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, dimStyle.Render("Tip: use --stream <name> -f md to print a merged document"))
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVar(&replayDB, "db", "", "Path to the SQLite chunk store")
	replayCmd.Flags().StringVarP(&replayStream, "stream", "s", "", "Only report this stream")
	replayCmd.Flags().StringVarP(&replayFormat, "format", "f", "table", "Output format (table, md, json, jsonl, yaml)")
	replayCmd.Flags().StringVarP(&replayOutDir, "out", "o", "", "Export each stream to a file in this directory")
	replayCmd.Flags().BoolVar(&replayClearCache, "clear-cache", false, "Clear the cache before running")
	_ = replayCmd.MarkFlagRequired("db")
}
