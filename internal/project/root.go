// Package project locates the root of a CMake project.
package project

import (
	"os"
	"path/filepath"

	builditerrors "github.com/hochfrequenz/buildit/internal/errors"
)

// MarkerFile identifies a directory as a candidate project root
const MarkerFile = "CMakeLists.txt"

// SourceDirEnv names the environment variable that supplies a default
// source directory.
const SourceDirEnv = "BUILDIT_SOURCE_DIR"

// HasMarker reports whether dir contains the marker file
func HasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil && !info.IsDir()
}

// FindRoot walks upward from start looking for the marker file. Nested CMake
// projects each carry a CMakeLists.txt, so the walk keeps climbing while
// parents still have one and returns the outermost directory of that chain.
// If no directory has the marker, start is returned unchanged.
func FindRoot(start string) string {
	dir := start
	found := ""
	for {
		if HasMarker(dir) {
			found = dir
		} else if found != "" {
			return found
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if found != "" {
		return found
	}
	return start
}

// Locate resolves the project root for an invocation. An explicit source
// directory must carry the marker itself; otherwise the root is discovered
// from start and must carry the marker.
func Locate(explicit, start string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", builditerrors.Wrap(err, builditerrors.KindIO, "resolving source directory")
		}
		if !HasMarker(abs) {
			return "", builditerrors.Newf(builditerrors.KindMarkerMissing,
				"source directory %s does not contain %s", abs, MarkerFile).
				WithContext("dir", abs)
		}
		return abs, nil
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", builditerrors.Wrap(err, builditerrors.KindIO, "resolving working directory")
	}
	root := FindRoot(abs)
	if !HasMarker(root) {
		return "", builditerrors.Newf(builditerrors.KindRootNotFound,
			"no %s found in %s or any parent directory", MarkerFile, abs).
			WithContext("start", abs)
	}
	return root, nil
}
