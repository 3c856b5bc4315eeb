// cmd/hgdump/main.go
package main

import (
	"fmt"
	"io"
	"os"

	"hgdump/internal/config"
	"hgdump/internal/errors"
	"hgdump/internal/logging"
	"hgdump/internal/render"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	out io.Writer

	configPath string
	repoRoot   string
	colorMode  string
	logLevel   string

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, logger: logging.Nop()}

	rootCmd := &cobra.Command{
		Use:   "hgdump",
		Short: "hgdump dumps the metadata of a Mercurial repository",
		Long: `hgdump is a read-only diagnostic tool. It decodes the revision index
(revlog) and the working-copy tracking table (dirstate) of a repository and
prints them as text tables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.repoRoot, "repository", "R", "", "Repository root (default: search upwards from the working directory)")
	flags.StringVar(&a.configPath, "config", config.DefaultPath(), "Path to a JSON config file")
	flags.StringVar(&a.colorMode, "color", "", "When to colorize output (auto, always, never)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newDebugIndexCmd(a))
	rootCmd.AddCommand(newDebugDirstateCmd(a))
	rootCmd.AddCommand(newDebugChunkCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil && os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if a.colorMode != "" {
		cfg.Color = a.colorMode
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return errors.ValidationError(err.Error(), nil)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger.WithRunID(uuid.New().String())
	a.logger.Debug("starting", zap.String("command", cmd.CommandPath()), zap.Strings("args", args))
	return nil
}

func (a *app) printer(opts render.Options) (*render.Printer, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}

	opts.Location = loc
	opts.TimeFormat = a.cfg.TimeFormat
	switch a.cfg.Color {
	case config.ColorAlways:
		opts.Color = true
	case config.ColorNever:
		opts.Color = false
	default:
		opts.Color = a.out == os.Stdout && !color.NoColor
	}

	return render.New(a.out, opts), nil
}

func main() {
	rootCmd := newRootCmd(os.Stdout)
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
	}
	os.Exit(errors.ExitCode(err))
}
