//go:build integration

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// binaryPath returns the path to the built CLI binary, building it on demand
func binaryPath(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("integration tests use sh scripts")
	}

	paths := []string{
		"../buildit",
		filepath.Join(os.Getenv("GOPATH"), "bin", "buildit"),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			abs, _ := filepath.Abs(p)
			return abs
		}
	}

	t.Log("Binary not found, building...")
	cmd := exec.Command("go", "build", "-o", "../buildit", "../cmd/buildit")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}

	abs, _ := filepath.Abs("../buildit")
	return abs
}

// fakeCMake is a stand-in for cmake. It appends "<cwd>|<args>" to the file
// named by FAKE_CMAKE_LOG and exits with FAKE_CMAKE_EXIT (default 0).
const fakeCMake = `#!/bin/sh
echo "$(pwd -P)|$*" >> "$FAKE_CMAKE_LOG"
exit "${FAKE_CMAKE_EXIT:-0}"
`

// Invocation is one recorded run of the fake cmake
type Invocation struct {
	Dir  string
	Args string
}

// Harness is a throwaway CMake project plus a fake cmake executable
type Harness struct {
	t      *testing.T
	Root   string
	binary string
	cmake  string
	log    string
	Exit   int
}

// NewHarness creates a project tree; dirs are created below the root and
// each one gets a CMakeLists.txt so the marker chain is unbroken.
func NewHarness(t *testing.T, dirs ...string) *Harness {
	t.Helper()
	binary := binaryPath(t)

	root := t.TempDir()
	root, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "CMakeLists.txt"), "project(fixture)\n")
	for _, d := range dirs {
		writeFile(t, filepath.Join(root, filepath.FromSlash(d), "CMakeLists.txt"), "\n")
	}

	tools := t.TempDir()
	cmake := filepath.Join(tools, "cmake")
	if err := os.WriteFile(cmake, []byte(fakeCMake), 0755); err != nil {
		t.Fatal(err)
	}

	return &Harness{t: t, Root: root, binary: binary, cmake: cmake, log: filepath.Join(tools, "calls.log")}
}

// Run executes buildit in dir (relative to the root) and returns its exit
// code and combined output.
func (h *Harness) Run(dir string, args ...string) (int, string) {
	h.t.Helper()
	cmd := exec.Command(h.binary, args...)
	cmd.Dir = filepath.Join(h.Root, filepath.FromSlash(dir))
	cmd.Env = append(os.Environ(),
		"BUILDIT_CMAKE="+h.cmake,
		"BUILDIT_SOURCE_DIR=",
		"FAKE_CMAKE_LOG="+h.log,
		"FAKE_CMAKE_EXIT="+strconv.Itoa(h.Exit),
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), string(out)
		}
		h.t.Fatalf("running buildit: %v", err)
	}
	return 0, string(out)
}

// Calls returns the fake cmake invocations recorded so far
func (h *Harness) Calls() []Invocation {
	h.t.Helper()
	data, err := os.ReadFile(h.log)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		h.t.Fatal(err)
	}
	var calls []Invocation
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		dir, args, _ := strings.Cut(line, "|")
		calls = append(calls, Invocation{Dir: dir, Args: args})
	}
	return calls
}

// Path joins rel onto the project root
func (h *Harness) Path(rel string) string {
	return filepath.Join(h.Root, filepath.FromSlash(rel))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
