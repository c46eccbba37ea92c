package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/buildit/internal/buildworker"
	"github.com/hochfrequenz/buildit/internal/cliargs"
	"github.com/hochfrequenz/buildit/internal/dispatch"
	builditerrors "github.com/hochfrequenz/buildit/internal/errors"
	"github.com/hochfrequenz/buildit/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const longHelp = `buildit drives CMake out-of-source builds for the project you are standing in.

It finds the project root (the outermost directory of the chain of
CMakeLists.txt files above you), remembers the build directory and build
type in .buildit.toml and builds in the build directory that mirrors your
current working directory.

Single-letter flags can be combined, e.g. -cmr configures and builds a
Release tree. Arguments buildit does not recognise, and everything after
--, are passed to CMake unchanged.`

const examples = `  buildit -cr                 configure a Release tree under build/Release
  buildit -m -j8              build the current directory with 8 jobs
  buildit -d -cm -- -G Ninja  configure and build Debug with the Ninja generator
  buildit -w                  delete the build tree and the remembered settings`

// app carries the writers and the parsed options of one invocation
type app struct {
	stdout io.Writer
	stderr io.Writer
	opts   cliargs.Options
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "buildit [flags] [-- cmake-args...]",
		Short:         "Configure and build CMake projects out of source",
		Long:          longHelp,
		Example:       examples,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cliargs.Bind(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := cliargs.Parse(cmd, args)
		if err != nil {
			return err
		}
		a.opts = opts
		if opts.Help {
			return cmd.Help()
		}
		if opts.Version {
			fmt.Fprintf(cmd.OutOrStdout(), "buildit %s\n", version)
			return nil
		}
		return a.run(cmd.Context())
	}
	return cmd
}

func (a *app) run(ctx context.Context) error {
	logger := logging.New(a.stderr, logging.Options{Verbose: a.opts.Verbose})

	workDir, err := os.Getwd()
	if err != nil {
		return builditerrors.Wrap(err, builditerrors.KindIO, "reading working directory")
	}

	executor := buildworker.NewExecutor(buildworker.ExecutorConfig{
		Stdout: a.stdout,
		Stderr: a.stderr,
		Logger: logger,
	})
	return dispatch.NewDispatcher(executor, logger).Dispatch(ctx, a.opts, workDir)
}

// execute runs one invocation and returns the process exit status
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: stdout, stderr: stderr}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)

	logger := logging.New(stderr, logging.Options{Verbose: a.opts.Verbose})
	return builditerrors.NewCLIErrorAdapter(a.opts.Verbose, logger).Report(stderr, err)
}
