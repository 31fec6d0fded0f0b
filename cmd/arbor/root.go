package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a behavior tree editor",
	Long: `Arbor edits behavior trees stored as XML. Trees can be edited from the
terminal, served over HTTP or MCP, and followed live in monitor mode.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Settings file (default $XDG_CONFIG_HOME/arbor/settings.yaml)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.Bool("json-logs", false, "Write logs as JSON")
	flags.String("store", "file", "Document store: file, memory, sqlite or redis")
	flags.String("store-dsn", "", "Store location: a directory, a database path or a redis:// URL")
	flags.Bool("compress", false, "Compress stored documents with LZ4")
	flags.StringSlice("store-key", nil, "Hex AES-256 key sealing stored documents; repeat to add old keys (env ARBOR_STORE_KEYS)")
	flags.String("layout", "", "Initial layout: horizontal or vertical")
}

// options reads the persistent flags.
func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	var opts cli.Options
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Debug, _ = flags.GetBool("debug")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.JSONLogs, _ = flags.GetBool("json-logs")
	opts.Store, _ = flags.GetString("store")
	opts.StoreDSN, _ = flags.GetString("store-dsn")
	opts.Compress, _ = flags.GetBool("compress")
	opts.StoreKeys, _ = flags.GetStringSlice("store-key")
	if len(opts.StoreKeys) == 0 {
		if env := os.Getenv("ARBOR_STORE_KEYS"); env != "" {
			opts.StoreKeys = strings.Split(env, ",")
		}
	}
	opts.Layout, _ = flags.GetString("layout")
	return opts
}

// openSession builds the editor for cmd. Callers close the session.
func openSession(cmd *cobra.Command, hooks ...domain.LifecycleHooks) (*cli.Session, error) {
	return cli.Open(options(cmd), hooks...)
}
