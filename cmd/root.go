package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/iksnae/vis-merge/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose bool
	cfgFile string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"

	// cfg is loaded once per invocation in PersistentPreRunE
	cfg = internal.DefaultConfig()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vis-merge",
	Short: "Merge streamed Vis protocol documents",
	Long: `Fold streamed chunks of a Vis document into the document they describe.

A Vis document is markdown with fenced blocks whose body is a JSON node
carrying a uid. Producers stream restatements and extensions of those nodes;
vis-merge reconciles them by uid the way a client renderer would.

Quick Start:
  vis-merge merge part1.md part2.md        # merge chunk files in order
  producer | vis-merge merge --jsonl       # merge JSON string chunks from stdin
  vis-merge inspect doc.md                 # list the nodes of a document
  vis-merge replay --db chunks.db          # replay stored chunk logs`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		internal.SetLogLevel(internal.ParseLogLevel(cfg.LogLevel))
		if verbose {
			internal.SetVerbose(true)
		}
		internal.LogDebug("Config: info=%v threshold=%d cache=%s", cfg.InfoStrings, cfg.FenceThreshold, cfg.CacheDir)
		return nil
	},
}

// loadConfig layers defaults, the config file, VISMERGE_* environment
// variables and flags, in increasing precedence
func loadConfig(cmd *cobra.Command) (internal.Config, error) {
	def := internal.DefaultConfig()
	v := viper.New()

	v.SetDefault("info_strings", def.InfoStrings)
	v.SetDefault("fence_threshold", def.FenceThreshold)
	v.SetDefault("default_channel", def.DefaultChannel)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("cache_dir", internal.DefaultCacheDir())

	v.SetEnvPrefix("VISMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return def, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		internal.LogDebug("Using config file: %s", v.ConfigFileUsed())
	}

	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"info_strings":    "info",
		"fence_threshold": "threshold",
		"log_level":       "log-level",
		"cache_dir":       "cache-dir",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return def, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	var loaded internal.Config
	if err := v.Unmarshal(&loaded); err != nil {
		return def, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return loaded.Normalize(), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	def := internal.DefaultConfig()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringSlice("info", def.InfoStrings, "Fenced-block languages that carry Vis nodes")
	rootCmd.PersistentFlags().Int("threshold", def.FenceThreshold, "Backtick count below which a chunk is treated as an open fence")
	rootCmd.PersistentFlags().String("log-level", def.LogLevel, "Log level (error, warn, info, debug)")
	rootCmd.PersistentFlags().String("cache-dir", "", "Snapshot cache directory (default ~/.vis-merge/cache)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
