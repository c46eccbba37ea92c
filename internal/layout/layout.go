// Package layout derives build directories from a project root and a build
// configuration. Nothing in this package touches the filesystem except
// DirExists and IsEmptyDir.
package layout

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hochfrequenz/buildit/internal/domain"
)

// BuildRoot returns root/buildDir
func BuildRoot(root, buildDir string) string {
	return filepath.Join(root, buildDir)
}

// TypeDir returns root/buildDir/buildType, the directory CMake is
// configured in.
func TypeDir(root, buildDir string, buildType domain.BuildType) string {
	return filepath.Join(root, buildDir, string(buildType))
}

// Resolve returns the build directory that mirrors invokingDir. Invoked from
// the root it is TypeDir; from root/sub/dir it is TypeDir/sub/dir. An
// invoking directory outside root resolves to TypeDir.
func Resolve(root, buildDir string, buildType domain.BuildType, invokingDir string) string {
	base := TypeDir(root, buildDir, buildType)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return base
	}
	absInvoking, err := filepath.Abs(invokingDir)
	if err != nil || absInvoking == absRoot {
		return base
	}

	rel, err := filepath.Rel(absRoot, absInvoking)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return base
	}
	return filepath.Join(base, rel)
}

// DirExists reports whether path exists and is a directory
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsEmptyDir reports whether path is a directory with no entries
func IsEmptyDir(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
