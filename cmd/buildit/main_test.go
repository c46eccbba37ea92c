package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/hochfrequenz/buildit/internal/cliargs"
	"github.com/hochfrequenz/buildit/internal/config"
	"github.com/hochfrequenz/buildit/internal/project"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv(project.SourceDirEnv, "")
	t.Setenv(cliargs.CMakeEnv, "")
	var out, errOut bytes.Buffer
	code = execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// fakeCMake writes a shell script that logs its arguments and exits with
// code.
func fakeCMake(t *testing.T, code int) (script, argsLog string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	dir := t.TempDir()
	argsLog = filepath.Join(dir, "args.log")
	script = filepath.Join(dir, "cmake")
	body := "#!/bin/sh\necho \"$@\" >> " + argsLog + "\nexit " + strconv.Itoa(code) + "\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}
	return script, argsLog
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, project.MarkerFile), []byte("project(p)\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestHelp(t *testing.T) {
	code, stdout, _ := runCLI(t, "--help")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	for _, want := range []string{"--configure", "--rel-with-deb-info", "-j, --jobs", "buildit -cr"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	if code != 0 || !strings.HasPrefix(stdout, "buildit ") {
		t.Errorf("got %d %q", code, stdout)
	}
}

func TestUsageErrorExitCode(t *testing.T) {
	code, _, stderr := runCLI(t, "-rd")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "mutually exclusive") || !strings.Contains(stderr, "Hint:") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestOutsideProject(t *testing.T) {
	t.Chdir(t.TempDir())
	code, _, stderr := runCLI(t, "-m")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, project.MarkerFile) {
		t.Errorf("stderr should mention the marker: %q", stderr)
	}
}

func TestConfigureAndBuild(t *testing.T) {
	root := newProject(t)
	cmake, argsLog := fakeCMake(t, 0)
	t.Chdir(root)

	code, _, stderr := runCLI(t, "--cmake", cmake, "-cmd", "-j2", "-DFOO=1")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	data, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("cmake ran %d times, want 2:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], "-DCMAKE_BUILD_TYPE=Debug") || !strings.HasSuffix(lines[0], "-DFOO=1") {
		t.Errorf("configure args = %q", lines[0])
	}
	if lines[1] != "--build . --config Debug -DFOO=1 -j 2" {
		t.Errorf("build args = %q", lines[1])
	}
	if !config.Exists(root) {
		t.Error("configuration should be persisted")
	}
}

func TestCMakeFailureExitCode(t *testing.T) {
	root := newProject(t)
	cmake, _ := fakeCMake(t, 3)
	t.Chdir(root)

	code, _, stderr := runCLI(t, "--cmake", cmake, "-c")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "status 3") {
		t.Errorf("stderr should report the exit status: %q", stderr)
	}
}
