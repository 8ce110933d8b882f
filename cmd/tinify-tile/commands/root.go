// Package commands implements the CLI commands for the tinify-tile tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/tinify/internal/build"
	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/ui/report"
)

// CLI represents the command line interface for tinify-tile.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	TinifyTile(ctx context.Context, src, dest string) (*domain.TileOutcome, error)
}

// LogOptions holds the logging flags shared by every command.
type LogOptions struct {
	JSON    bool
	Verbose bool
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "tinify-tile <input-tile> <output-tile>",
		Short:         "Remove compiled packages that no job uses from every release in a tile",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Emit log lines as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every removed package and list each release")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.RunE = c.runTinify
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) runTinify(cmd *cobra.Command, args []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}

	outcome, err := c.app.TinifyTile(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	return report.New(cmd.OutOrStdout()).Tile(outcome, verbose)
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetLogHook sets up a PersistentPreRun function that reads the logging flags
// and calls the provided callback with them.
func (c *CLI) SetLogHook(fn func(LogOptions)) {
	c.rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		jsonMode, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		fn(LogOptions{JSON: jsonMode, Verbose: verbose})
		return nil
	}
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
