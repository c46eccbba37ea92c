package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hochfrequenz/buildit/internal/domain"
	builditerrors "github.com/hochfrequenz/buildit/internal/errors"
)

func writeLocalConfig(t *testing.T, root, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, LocalConfigName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != nil {
		t.Errorf("Load() = %+v, want nil", cfg)
	}
}

func TestLoad_FromFile(t *testing.T) {
	root := t.TempDir()
	writeLocalConfig(t, root, `
build_dir = "out"
build_type = "Debug"
`)

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	want := &domain.BuildConfig{BuildDir: "out", BuildType: domain.BuildDebug}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	root := t.TempDir()
	writeLocalConfig(t, root, `build_type = "MinSizeRel"`)

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildDir != "" {
		t.Errorf("BuildDir = %q, want empty", cfg.BuildDir)
	}
	if cfg.BuildType != domain.BuildMinSizeRel {
		t.Errorf("BuildType = %q, want MinSizeRel", cfg.BuildType)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not toml", "build_dir = \n[[["},
		{"unknown build type", `build_type = "Profile"`},
		{"wrong value type", `build_dir = 3`},
		{"unknown key", "build_dir = \"build\"\nsource_dir = \"/src\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeLocalConfig(t, root, tt.content)

			_, err := Load(root)
			if !builditerrors.HasKind(err, builditerrors.KindConfigParse) {
				t.Errorf("Load() error = %v, want ConfigParseError", err)
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	for _, bt := range domain.BuildTypes {
		t.Run(string(bt), func(t *testing.T) {
			root := t.TempDir()
			want := domain.BuildConfig{BuildDir: "cmake-out/nested", BuildType: bt}

			if err := Save(root, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := Load(root)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(&want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSave_OverwritesWholesale(t *testing.T) {
	root := t.TempDir()
	writeLocalConfig(t, root, "build_dir = \"old\"\nbuild_type = \"Debug\"\n")

	if err := Save(root, domain.BuildConfig{BuildDir: "new", BuildType: domain.BuildRelease}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildDir != "new" || cfg.BuildType != domain.BuildRelease {
		t.Errorf("Load() = %+v, want new/Release", cfg)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("root has %d entries, want only %s", len(entries), LocalConfigName)
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()

	existed, err := Remove(root)
	if err != nil || existed {
		t.Errorf("Remove() on empty root = %v, %v; want false, nil", existed, err)
	}

	if err := Save(root, domain.DefaultBuildConfig()); err != nil {
		t.Fatal(err)
	}
	if !Exists(root) {
		t.Fatal("Exists() = false after Save")
	}

	existed, err = Remove(root)
	if err != nil || !existed {
		t.Errorf("Remove() = %v, %v; want true, nil", existed, err)
	}
	if Exists(root) {
		t.Error("Exists() = true after Remove")
	}
}
