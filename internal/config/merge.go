package config

import "github.com/hochfrequenz/buildit/internal/domain"

// Overrides are the values supplied on the command line. Empty fields were
// not supplied.
type Overrides struct {
	BuildDir  string
	BuildType domain.BuildType
}

// Merge reconciles command-line overrides, the persisted configuration and
// the hard defaults, field by field, strongest first. dirty reports that a
// persisted configuration exists and no longer matches the result; the
// caller must then rewrite it.
func Merge(cli Overrides, persisted *domain.BuildConfig) (merged domain.BuildConfig, dirty bool) {
	layers := []domain.BuildConfig{{BuildDir: cli.BuildDir, BuildType: cli.BuildType}}
	if persisted != nil {
		layers = append(layers, *persisted)
	}
	layers = append(layers, domain.DefaultBuildConfig())

	merged = mergeLayers(layers...)
	dirty = persisted != nil && merged != *persisted
	return merged, dirty
}

// mergeLayers takes each field from the first layer that defines it.
func mergeLayers(layers ...domain.BuildConfig) domain.BuildConfig {
	var out domain.BuildConfig
	for _, l := range layers {
		if out.BuildDir == "" {
			out.BuildDir = l.BuildDir
		}
		if out.BuildType == "" {
			out.BuildType = l.BuildType
		}
	}
	return out
}
