package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/vis-merge/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand runs the root command with fresh flag state and returns stdout
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("VISMERGE_CACHE_DIR", testutil.CreateTempDir(t))

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), err
}

// resetFlags restores every flag of c and its subcommands to its default,
// since cobra keeps flag values between Execute calls
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Value.Type() == "stringSlice" {
			// a used slice value appends on the next Set, so swap in a fresh one
			var def []string
			if trimmed := strings.Trim(f.DefValue, "[]"); trimmed != "" {
				def = strings.Split(trimmed, ",")
			}
			fresh := pflag.NewFlagSet(f.Name, pflag.ContinueOnError)
			fresh.StringSlice(f.Name, def, f.Usage)
			f.Value = fresh.Lookup(f.Name).Value
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
