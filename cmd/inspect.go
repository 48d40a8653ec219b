package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/vis-merge/internal"
	"github.com/iksnae/vis-merge/internal/vis"
	"github.com/spf13/cobra"
)

var inspectFormat string

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	uidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	dynamicStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "List the Vis nodes of a document",
	Long: `Print the identity map of a document: every node that carries a uid,
including nodes nested in another node's markdown or items.

The document is read from the file argument or from stdin. A JSON envelope is
inspected channel by channel.

Examples:
  vis-merge inspect doc.md
  vis-merge inspect --format yaml < doc.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "stdin"
		var data []byte
		var err error
		if len(args) == 1 {
			name = filepath.Base(args[0])
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}

		parser := vis.NewMultiParser(vis.NewEngine(cfg))
		parser.Update(string(data))
		snap := parser.Snapshot(name)

		if inspectFormat == "table" {
			displayNodes(cmd.OutOrStdout(), snap)
			return nil
		}
		return writeSnapshot(cmd, snap, inspectFormat, "")
	},
}

func displayNodes(w io.Writer, snap *internal.Snapshot) {
	if len(snap.Nodes) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("No Vis nodes in %s", snap.Stream)))
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s: %d node(s)", snap.Stream, len(snap.Nodes))))
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("UID")+"\t"+titleStyle.Render("Type")+"\t"+titleStyle.Render("Items")+"\t"+titleStyle.Render("Markdown")+"\t")
	_, _ = fmt.Fprintln(tw, strings.Repeat("─", 60))

	for _, n := range snap.Nodes {
		uid := n.UID
		if len(uid) > 40 {
			uid = uid[:37] + "..."
		}

		kind := n.Kind
		if kind == "" {
			kind = "incr"
		}
		kindCell := dimStyle.Render(kind)
		if n.Dynamic {
			kindCell = dynamicStyle.Render(kind + " (dynamic)")
		}

		items := dimStyle.Render("—")
		if n.Items > 0 {
			items = countStyle.Render(strconv.Itoa(n.Items))
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", uidStyle.Render(uid), kindCell, items, dimStyle.Render(fmt.Sprintf("%d B", n.MarkdownBytes)))
	}
	_ = tw.Flush()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "table", "Output format (table, json, jsonl, yaml)")
}
