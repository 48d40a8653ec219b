package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/vis-merge/internal"
	"github.com/iksnae/vis-merge/internal/vis"
	"github.com/spf13/cobra"
)

var healthcheckDB string

var (
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckProbe returns two chunks restating one node and the document
// they must merge into
func healthcheckProbe(info string) ([]string, string) {
	node := func(markdown string) string {
		return "```" + info + "\n{\"uid\":\"probe\",\"type\":\"incr\",\"markdown\":\"" + markdown + "\"}\n```"
	}
	return []string{node("x"), node("y")}, node("xy")
}

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that vis-merge is configured and working",
	Long: `Check the health of vis-merge by verifying:
  • The effective configuration
  • A probe merge through the engine
  • The snapshot cache directory is writable
  • The chunk store is readable (with --db)

This command is useful for debugging configuration in CI/CD environments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(w, sectionStyle.Render("vis-merge health check"))
		_, _ = fmt.Fprintln(w)

		failed := 0
		check := func(name string, err error) {
			if err != nil {
				failed++
				_, _ = fmt.Fprintf(w, "%s %s: %v\n", failStyle.Render("✗"), name, err)
				return
			}
			_, _ = fmt.Fprintf(w, "%s %s\n", okStyle.Render("✓"), name)
		}

		_, _ = fmt.Fprintf(w, "   info strings: %v, fence threshold: %d\n", cfg.InfoStrings, cfg.FenceThreshold)
		check("Merge engine", checkEngine())
		check("Cache directory "+cfg.CacheDir, checkCacheDir(cfg.CacheDir))
		if healthcheckDB != "" {
			check("Chunk store "+healthcheckDB, checkChunkStore(w, healthcheckDB))
		}

		_, _ = fmt.Fprintln(w)
		if failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		_, _ = fmt.Fprintln(w, okStyle.Render("All checks passed"))
		return nil
	},
}

func checkEngine() error {
	chunks, want := healthcheckProbe(cfg.InfoStrings[0])
	parser := vis.NewParser(vis.NewEngine(cfg))
	for _, chunk := range chunks {
		parser.Update(chunk)
	}
	if got := parser.Current(); got != want {
		return fmt.Errorf("probe merged to %q, want %q", got, want)
	}
	return nil
}

func checkCacheDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".healthcheck-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func checkChunkStore(w io.Writer, path string) error {
	db, err := internal.OpenDatabase(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	streams, err := internal.LoadChunks(db)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "   %d stream(s) in chunk store\n", len(streams))
	return nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().StringVar(&healthcheckDB, "db", "", "Also check this SQLite chunk store")
}
