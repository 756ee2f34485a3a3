package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/odvcencio/twig/pkg/repo"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "twig:", err)
		os.Exit(1)
	}
}

// cli holds state shared by every subcommand of one invocation.
type cli struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "twig",
		Short:         "Minimal content-addressed version control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.logger = newLogger(cmd.ErrOrStderr(), c.verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log object and ref writes to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(c))
	root.AddCommand(newConfigCmd(c))
	root.AddCommand(newCatFileCmd(c))
	root.AddCommand(newHashObjectCmd(c))
	root.AddCommand(newLsTreeCmd(c))
	root.AddCommand(newWriteTreeCmd(c))
	root.AddCommand(newCommitTreeCmd(c))
	root.AddCommand(newCommitCmd(c))
	root.AddCommand(newLogCmd(c))
	root.AddCommand(newBranchCmd(c))
	root.AddCommand(newCheckoutCmd(c))
	root.AddCommand(newTagCmd(c))

	return root
}

// newLogger returns a console logger on w: debug level when verbose,
// otherwise warnings and errors only.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	return zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(zapcore.AddSync(w)),
			zap.NewAtomicLevelAt(level),
		),
	)
}

func (c *cli) openRepo() (*repo.Repo, error) {
	return repo.Open(".", repo.WithLogger(c.logger))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "twig", version)
		},
	}
}
