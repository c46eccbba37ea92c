package cliargs

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hochfrequenz/buildit/internal/domain"
	builditerrors "github.com/hochfrequenz/buildit/internal/errors"
	"github.com/hochfrequenz/buildit/internal/project"
)

// CMakeEnv names the environment variable that overrides the CMake executable
const CMakeEnv = "BUILDIT_CMAKE"

// DefaultCMake is the CMake executable used when nothing else is configured
const DefaultCMake = "cmake"

// Options is the parsed form of one invocation. It is produced once by
// Parse and read-only afterwards.
type Options struct {
	// SourceDir is an explicit project root; empty means discover it.
	SourceDir string
	// BuildDir and BuildType are empty when not given on the command line.
	BuildDir  string
	BuildType domain.BuildType
	Actions   domain.ActionSet
	// Jobs is 0 when not given.
	Jobs        int
	PassThrough []string
	CMake       string
	Verbose     bool
	Help        bool
	Version     bool
}

// buildTypeFlags maps each shortcut flag to the build type it selects
var buildTypeFlags = []struct {
	name      string
	shorthand string
	buildType domain.BuildType
}{
	{"release", "r", domain.BuildRelease},
	{"debug", "d", domain.BuildDebug},
	{"min-size-rel", "z", domain.BuildMinSizeRel},
	{"rel-with-deb-info", "i", domain.BuildRelWithDebInfo},
}

// Bind declares buildit's flags on cmd and disables cobra's own parsing so
// Parse can forward unknown tokens to CMake.
func Bind(cmd *cobra.Command) *cobra.Command {
	cmd.DisableFlagParsing = true

	fs := cmd.Flags()
	fs.StringP("source-dir", "s", "", "project root (default $"+project.SourceDirEnv+", else the outermost directory with "+project.MarkerFile+")")
	fs.StringP("build-dir", "b", "", "build directory relative to the project root (default \""+domain.DefaultBuildDir+"\")")
	fs.BoolP("configure", "c", false, "configure the build directory")
	fs.BoolP("build", "m", false, "build in the directory matching the current working directory")
	fs.IntP("jobs", "j", 0, "parallel build jobs (implies --build)")
	fs.BoolP("delete", "w", false, "delete the build directory and the persisted configuration")
	fs.StringP("build-type", "t", "", "build type: Release, Debug, MinSizeRel or RelWithDebInfo")

	for _, bt := range buildTypeFlags {
		fs.BoolP(bt.name, bt.shorthand, false, "use the "+string(bt.buildType)+" build type")
	}

	fs.String("cmake", "", "CMake executable (default $"+CMakeEnv+", else \""+DefaultCMake+"\")")
	fs.BoolP("verbose", "v", false, "enable debug logging")
	fs.BoolP("help", "h", false, "show help")
	fs.Bool("version", false, "print the version")
	return cmd
}

// Parse turns raw arguments into Options using the flags declared by Bind.
func Parse(cmd *cobra.Command, args []string) (Options, error) {
	expanded, trailing := Expand(args)

	fs := cmd.Flags()
	known, unknown := Route(fs, expanded)
	if err := fs.Parse(known); err != nil {
		return Options{}, builditerrors.Wrap(err, builditerrors.KindUsage, "invalid arguments")
	}
	// cobra skips flag group validation when DisableFlagParsing is set.
	if err := checkExclusiveBuildType(fs); err != nil {
		return Options{}, err
	}

	opts := Options{
		Actions:     domain.NewActionSet(),
		PassThrough: append(append([]string{}, unknown...), trailing...),
	}

	opts.SourceDir, _ = fs.GetString("source-dir")
	if !fs.Changed("source-dir") {
		opts.SourceDir = os.Getenv(project.SourceDirEnv)
	}
	opts.BuildDir, _ = fs.GetString("build-dir")

	if name, _ := fs.GetString("build-type"); fs.Changed("build-type") {
		bt, err := domain.ParseBuildType(name)
		if err != nil {
			return Options{}, builditerrors.Wrap(err, builditerrors.KindUsage, "invalid --build-type")
		}
		opts.BuildType = bt
	}
	for _, bt := range buildTypeFlags {
		if on, _ := fs.GetBool(bt.name); on {
			opts.BuildType = bt.buildType
		}
	}

	for flag, action := range map[string]domain.Action{
		"delete":    domain.ActionDelete,
		"configure": domain.ActionConfigure,
		"build":     domain.ActionBuild,
	} {
		if on, _ := fs.GetBool(flag); on {
			opts.Actions.Add(action)
		}
	}

	if fs.Changed("jobs") {
		jobs, _ := fs.GetInt("jobs")
		if jobs <= 0 {
			return Options{}, builditerrors.Newf(builditerrors.KindInvalidJobCount,
				"invalid job count %d", jobs).WithContext("jobs", jobs)
		}
		opts.Jobs = jobs
		opts.Actions.Add(domain.ActionBuild)
	}

	opts.CMake, _ = fs.GetString("cmake")
	if opts.CMake == "" {
		opts.CMake = os.Getenv(CMakeEnv)
	}
	if opts.CMake == "" {
		opts.CMake = DefaultCMake
	}

	opts.Verbose, _ = fs.GetBool("verbose")
	opts.Help, _ = fs.GetBool("help")
	opts.Version, _ = fs.GetBool("version")
	return opts, nil
}

func checkExclusiveBuildType(fs *pflag.FlagSet) error {
	var set []string
	if fs.Changed("build-type") {
		set = append(set, "--build-type")
	}
	for _, bt := range buildTypeFlags {
		if on, _ := fs.GetBool(bt.name); on {
			set = append(set, "--"+bt.name)
		}
	}
	if len(set) > 1 {
		return builditerrors.Newf(builditerrors.KindUsage,
			"build type flags are mutually exclusive: %s", strings.Join(set, ", "))
	}
	return nil
}
