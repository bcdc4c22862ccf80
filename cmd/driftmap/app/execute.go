package app

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/driftmap/cmd/driftmap/cmd/apply"
	"github.com/agentstation/driftmap/cmd/driftmap/cmd/importcmd"
	"github.com/agentstation/driftmap/cmd/driftmap/cmd/parse"
	"github.com/agentstation/driftmap/cmd/driftmap/cmd/properties"
	"github.com/agentstation/driftmap/cmd/driftmap/cmd/resolve"
	"github.com/agentstation/driftmap/cmd/driftmap/cmd/rules"
	"github.com/agentstation/driftmap/cmd/driftmap/cmd/serve"
	"github.com/agentstation/driftmap/cmd/driftmap/cmd/version"
	"github.com/agentstation/driftmap/internal/cmd/output"
	"github.com/agentstation/driftmap/internal/server"
)

// Execute runs the driftmap CLI application with the given arguments.
// A --config file is loaded before the command tree is built, since
// subcommands take their flag defaults from the configuration.
func (a *App) Execute(ctx context.Context, args []string) error {
	if configFile := configFlag(args); configFile != "" {
		config, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "driftmap",
		Short:   "Schema change-log exception resolution",
		Version: a.version,
		Long: `Driftmap reads the change logs recorded against schema catalog entities
(classes, attribute groups and attributes), matches every changed
property against a table of exception rules, and sorts the entities into
ignore, update and no-action buckets.

The catalog and rules come from YAML/TOML/JSON files or a SQL database
(sqlite3, postgres). Results are available from the command line or over
an HTTP API.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.driftmap.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("driftmap {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs and applies the global
// flags on top of the loaded configuration.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	format := mustGetString(cmd, "format")
	if _, err := output.ParseFormat(format); err != nil {
		return err
	}
	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		format,
		mustGetString(cmd, "log-level"),
	)

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(resolve.NewCommand(a, a.config.PerPage))
	rootCmd.AddCommand(properties.NewCommand(a))
	rootCmd.AddCommand(rules.NewCommand(a))
	rootCmd.AddCommand(parse.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a, a.serverConfig()))

	rootCmd.AddCommand(apply.NewCommand(a))
	rootCmd.AddCommand(importcmd.NewCommand(a, a.config.Source))

	rootCmd.AddCommand(version.NewCommand(a))
}

// serverConfig maps the loaded configuration onto server defaults.
func (a *App) serverConfig() server.Config {
	cfg := server.DefaultConfig()
	sc := a.config.Server
	if sc.Host != "" {
		cfg.Host = sc.Host
	}
	if sc.Port != 0 {
		cfg.Port = sc.Port
	}
	cfg.CacheTTL = sc.CacheTTL
	cfg.CORSEnabled = sc.CORS
	cfg.CORSOrigins = sc.CORSOrigins
	cfg.MetricsEnabled = sc.MetricsEnabled
	return cfg
}

// configFlag finds the value of --config in raw arguments.
func configFlag(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--":
			return ""
		case arg == "--config" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
