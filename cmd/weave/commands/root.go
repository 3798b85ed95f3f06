// Package commands implements the CLI commands for weave.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.trai.ch/weave/internal/adapters/config"
	"go.trai.ch/weave/internal/adapters/telemetry"
	"go.trai.ch/weave/internal/app"
	"go.trai.ch/weave/internal/build"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
)

// CLI represents the command line interface for weave.
type CLI struct {
	app     *app.App
	logger  ports.Logger
	rootCmd *cobra.Command

	file    string
	trace   string
	verbose bool
	json    bool
}

// New creates a new CLI instance. logger may be nil; when it supports
// SetLevel or SetJSON, the matching flags reconfigure it.
func New(a *app.App, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "weave",
		Short:         "Plan, resolve and validate dependency injection containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.file, "file", "f", config.DefaultFilename, "Path to the manifest")
	flags.StringVar(&c.trace, "trace", app.TracerNone, "Trace resolution steps: none, otel or progrock")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Log bindings and resolution plans")
	flags.BoolVar(&c.json, "json", false, "Log as JSON")

	// Declared up front so cobra does not claim -v for it.
	rootCmd.Flags().Bool("version", false, "Print the application version")

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentPreRunE = c.configure

	rootCmd.AddCommand(c.newPlanCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newValidateCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configure(cmd *cobra.Command, _ []string) error {
	if l, ok := c.logger.(interface{ SetJSON(bool) }); ok && c.json {
		l.SetJSON(true)
	}
	if l, ok := c.logger.(interface{ SetLevel(domain.LogLevel) }); ok && c.verbose {
		l.SetLevel(domain.LogLevelDebug)
	}
	if c.trace == app.TracerOTel {
		otel.SetTracerProvider(telemetry.NewTracerProvider(cmd.ErrOrStderr()))
	}
	return c.app.UseTracer(c.trace)
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}
