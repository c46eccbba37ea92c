// Package dispatch sequences the delete, configure and build actions of one
// buildit invocation.
package dispatch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/hochfrequenz/buildit/internal/buildworker"
	"github.com/hochfrequenz/buildit/internal/cliargs"
	"github.com/hochfrequenz/buildit/internal/config"
	"github.com/hochfrequenz/buildit/internal/domain"
	builditerrors "github.com/hochfrequenz/buildit/internal/errors"
	"github.com/hochfrequenz/buildit/internal/layout"
	"github.com/hochfrequenz/buildit/internal/project"
)

// Runner executes an external command and reports its exit status
type Runner interface {
	Run(ctx context.Context, job buildworker.Job) (*buildworker.Result, error)
}

// Dispatcher runs the actions requested by one invocation
type Dispatcher struct {
	runner Runner
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil logger uses slog.Default.
func NewDispatcher(runner Runner, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{runner: runner, logger: logger}
}

// invocation is the reconciled state shared by the actions
type invocation struct {
	opts    cliargs.Options
	root    string
	workDir string
	cfg     domain.BuildConfig
}

// Dispatch locates the project root, reconciles the persisted configuration
// with opts and runs the requested actions in order: delete, configure,
// build. It stops at the first failure; a configuration saved by an earlier
// step stays on disk.
func (d *Dispatcher) Dispatch(ctx context.Context, opts cliargs.Options, workDir string) error {
	if opts.Jobs < 0 {
		return builditerrors.Newf(builditerrors.KindInvalidJobCount, "invalid job count %d", opts.Jobs)
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return builditerrors.Wrap(err, builditerrors.KindIO, "resolving working directory")
	}

	root, err := project.Locate(opts.SourceDir, workDir)
	if err != nil {
		return err
	}
	d.logger.Debug("Project root located", "root", root)

	persisted, err := config.Load(root)
	if err != nil {
		return err
	}

	cfg, dirty := config.Merge(config.Overrides{BuildDir: opts.BuildDir, BuildType: opts.BuildType}, persisted)
	if filepath.IsAbs(cfg.BuildDir) {
		return builditerrors.Newf(builditerrors.KindUsage,
			"build directory %s must be relative to the project root", cfg.BuildDir)
	}
	d.logger.Debug("Build configuration", "build_dir", cfg.BuildDir, "build_type", cfg.BuildType, "dirty", dirty)

	if dirty {
		if err := config.Save(root, cfg); err != nil {
			return err
		}
		if opts.Actions.Empty() {
			d.logger.Warn("Persisted configuration updated without an action",
				"path", config.Path(root), "build_dir", cfg.BuildDir, "build_type", cfg.BuildType)
		} else {
			d.logger.Info("Persisted configuration updated",
				"build_dir", cfg.BuildDir, "build_type", cfg.BuildType)
		}
	}

	if opts.Actions.Empty() {
		d.logger.Info("No action requested (use --configure, --build or --delete)")
		return nil
	}

	inv := &invocation{opts: opts, root: root, workDir: workDir, cfg: cfg}
	for _, action := range opts.Actions.Ordered() {
		var err error
		switch action {
		case domain.ActionDelete:
			err = d.delete(inv)
		case domain.ActionConfigure:
			err = d.configure(ctx, inv)
		case domain.ActionBuild:
			err = d.build(ctx, inv)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) configure(ctx context.Context, inv *invocation) error {
	dir := layout.TypeDir(inv.root, inv.cfg.BuildDir, inv.cfg.BuildType)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return builditerrors.Wrap(err, builditerrors.KindIO, "creating build directory").
			WithContext("dir", dir)
	}

	args := []string{
		"-S", inv.root,
		"-B", dir,
		"-DCMAKE_BUILD_TYPE=" + string(inv.cfg.BuildType),
		"-DCMAKE_EXPORT_COMPILE_COMMANDS=ON",
	}
	args = append(args, inv.opts.PassThrough...)

	if err := d.run(ctx, buildworker.Job{Name: inv.opts.CMake, Args: args, Dir: dir}); err != nil {
		return err
	}

	if err := config.Save(inv.root, inv.cfg); err != nil {
		return err
	}
	d.logger.Info("Configured", "dir", dir, "build_type", inv.cfg.BuildType)
	return nil
}

func (d *Dispatcher) build(ctx context.Context, inv *invocation) error {
	dir := layout.Resolve(inv.root, inv.cfg.BuildDir, inv.cfg.BuildType, inv.workDir)
	if !layout.DirExists(dir) {
		return builditerrors.Newf(builditerrors.KindDirectoryNotConfigured,
			"build directory %s does not exist", dir).
			WithContext("dir", dir).
			WithContext("build_type", inv.cfg.BuildType)
	}

	args := []string{"--build", ".", "--config", string(inv.cfg.BuildType)}
	args = append(args, inv.opts.PassThrough...)
	if inv.opts.Jobs > 0 {
		args = append(args, "-j", strconv.Itoa(inv.opts.Jobs))
	}

	if err := d.run(ctx, buildworker.Job{Name: inv.opts.CMake, Args: args, Dir: dir}); err != nil {
		return err
	}
	d.logger.Info("Built", "dir", dir)
	return nil
}

// delete removes the build type directory, then the build root if that left
// it empty, then the persisted configuration.
func (d *Dispatcher) delete(inv *invocation) error {
	typeDir := layout.TypeDir(inv.root, inv.cfg.BuildDir, inv.cfg.BuildType)
	if layout.DirExists(typeDir) {
		freed := dirSize(typeDir)
		if err := os.RemoveAll(typeDir); err != nil {
			return builditerrors.Wrap(err, builditerrors.KindIO, "removing build directory").
				WithContext("dir", typeDir)
		}
		d.logger.Info("Removed build directory", "dir", typeDir, "freed", humanize.Bytes(uint64(freed)))
	}

	buildRoot := layout.BuildRoot(inv.root, inv.cfg.BuildDir)
	if layout.DirExists(buildRoot) {
		empty, err := layout.IsEmptyDir(buildRoot)
		if err != nil {
			return builditerrors.Wrap(err, builditerrors.KindIO, "reading build directory").
				WithContext("dir", buildRoot)
		}
		if empty {
			if err := os.Remove(buildRoot); err != nil {
				return builditerrors.Wrap(err, builditerrors.KindIO, "removing build directory").
					WithContext("dir", buildRoot)
			}
			d.logger.Info("Removed empty build directory", "dir", buildRoot)
		} else {
			d.logger.Debug("Build directory not empty, keeping it", "dir", buildRoot)
		}
	}

	removed, err := config.Remove(inv.root)
	if err != nil {
		return err
	}
	if removed {
		d.logger.Info("Removed persisted configuration", "path", config.Path(inv.root))
	}
	return nil
}

func (d *Dispatcher) run(ctx context.Context, job buildworker.Job) error {
	result, err := d.runner.Run(ctx, job)
	if err != nil {
		return builditerrors.Wrap(err, builditerrors.KindExternalCommandFailed, "could not run "+job.Name).
			WithContext("command", job.String())
	}
	if result.ExitCode != 0 {
		return builditerrors.CommandFailed(job.String(), result.ExitCode)
	}
	return nil
}

// dirSize sums regular file sizes under dir; unreadable entries are skipped.
func dirSize(dir string) int64 {
	var total int64
	filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
