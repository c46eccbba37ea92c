package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/hochfrequenz/buildit/internal/domain"
	builditerrors "github.com/hochfrequenz/buildit/internal/errors"
)

// LocalConfigName is the persisted build configuration kept at the project root
const LocalConfigName = ".buildit.toml"

// File is the on-disk form of a persisted build configuration
type File struct {
	BuildDir  string `toml:"build_dir"`
	BuildType string `toml:"build_type"`
}

// Path returns the persisted configuration path for root
func Path(root string) string {
	return filepath.Join(root, LocalConfigName)
}

// Exists reports whether root has a persisted configuration
func Exists(root string) bool {
	_, err := os.Stat(Path(root))
	return err == nil
}

// Load reads the persisted configuration for root. A missing file returns
// nil without error. Empty fields are left empty and count as undefined
// when merging.
func Load(root string) (*domain.BuildConfig, error) {
	path := Path(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, builditerrors.Wrap(err, builditerrors.KindIO, "reading persisted configuration").
			WithContext("path", path)
	}

	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, builditerrors.Wrap(err, builditerrors.KindConfigParse,
			fmt.Sprintf("malformed configuration %s", path)).
			WithContext("path", path)
	}

	cfg := &domain.BuildConfig{BuildDir: f.BuildDir}
	if f.BuildType != "" {
		bt := domain.BuildType(f.BuildType)
		if !bt.Valid() {
			return nil, builditerrors.Newf(builditerrors.KindConfigParse,
				"malformed configuration %s: unknown build_type %q", path, f.BuildType).
				WithContext("path", path)
		}
		cfg.BuildType = bt
	}
	return cfg, nil
}

// Save overwrites the persisted configuration for root with cfg. The file is
// written next to its destination and renamed into place.
func Save(root string, cfg domain.BuildConfig) error {
	path := Path(root)
	data, err := toml.Marshal(File{BuildDir: cfg.BuildDir, BuildType: string(cfg.BuildType)})
	if err != nil {
		return builditerrors.Wrap(err, builditerrors.KindIO, "encoding persisted configuration")
	}

	tmp, err := os.CreateTemp(root, LocalConfigName+".*.tmp")
	if err != nil {
		return builditerrors.Wrap(err, builditerrors.KindIO, "writing persisted configuration").
			WithContext("path", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return builditerrors.Wrap(err, builditerrors.KindIO, "writing persisted configuration").
			WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		return builditerrors.Wrap(err, builditerrors.KindIO, "writing persisted configuration").
			WithContext("path", path)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return builditerrors.Wrap(err, builditerrors.KindIO, "writing persisted configuration").
			WithContext("path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return builditerrors.Wrap(err, builditerrors.KindIO, "writing persisted configuration").
			WithContext("path", path)
	}
	return nil
}

// Remove deletes the persisted configuration for root and reports whether
// one existed.
func Remove(root string) (bool, error) {
	path := Path(root)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, builditerrors.Wrap(err, builditerrors.KindIO, "removing persisted configuration").
			WithContext("path", path)
	}
	return true, nil
}
