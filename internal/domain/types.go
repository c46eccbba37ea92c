package domain

import (
	"fmt"
	"strings"
)

// BuildType is one of the CMake build configurations
type BuildType string

const (
	BuildRelease        BuildType = "Release"
	BuildDebug          BuildType = "Debug"
	BuildMinSizeRel     BuildType = "MinSizeRel"
	BuildRelWithDebInfo BuildType = "RelWithDebInfo"
)

// BuildTypes lists every valid build type in display order
var BuildTypes = []BuildType{BuildRelease, BuildDebug, BuildMinSizeRel, BuildRelWithDebInfo}

// ParseBuildType matches s case-insensitively against the known build types
// and returns the canonical spelling.
func ParseBuildType(s string) (BuildType, error) {
	for _, bt := range BuildTypes {
		if strings.EqualFold(s, string(bt)) {
			return bt, nil
		}
	}
	return "", fmt.Errorf("invalid build type: %q (expected one of %s)", s, joinBuildTypes())
}

// Valid reports whether bt is one of the known build types
func (bt BuildType) Valid() bool {
	for _, known := range BuildTypes {
		if bt == known {
			return true
		}
	}
	return false
}

func (bt BuildType) String() string {
	return string(bt)
}

func joinBuildTypes() string {
	names := make([]string, len(BuildTypes))
	for i, bt := range BuildTypes {
		names[i] = string(bt)
	}
	return strings.Join(names, ", ")
}

// Defaults applied when neither the command line nor the persisted record
// provides a value.
const (
	DefaultBuildDir  = "build"
	DefaultBuildType = BuildRelease
)

// BuildConfig is the user's chosen build layout for a project root
type BuildConfig struct {
	BuildDir  string
	BuildType BuildType
}

// DefaultBuildConfig returns the hard defaults
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{BuildDir: DefaultBuildDir, BuildType: DefaultBuildType}
}
