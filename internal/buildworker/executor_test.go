// internal/buildworker/executor_test.go
package buildworker

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestExecutor(stdout, stderr io.Writer, onOutput OutputCallback) *Executor {
	return NewExecutor(ExecutorConfig{
		Stdout:   stdout,
		Stderr:   stderr,
		OnOutput: onOutput,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
}

func TestExecutor_Run_SimpleCommand(t *testing.T) {
	skipOnWindows(t)
	var stdout, stderr bytes.Buffer
	executor := newTestExecutor(&stdout, &stderr, nil)

	result, err := executor.Run(context.Background(), Job{
		Name: "sh",
		Args: []string{"-c", "echo hello; echo oops >&2"},
		Dir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("got exit code %d, want 0", result.ExitCode)
	}
	if stdout.String() != "hello\n" {
		t.Errorf("got stdout %q, want %q", stdout.String(), "hello\n")
	}
	if stderr.String() != "oops\n" {
		t.Errorf("got stderr %q, want %q", stderr.String(), "oops\n")
	}
}

func TestExecutor_Run_NonZeroExitCode(t *testing.T) {
	skipOnWindows(t)
	executor := newTestExecutor(io.Discard, io.Discard, nil)

	result, err := executor.Run(context.Background(), Job{
		Name: "sh",
		Args: []string{"-c", "exit 42"},
		Dir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 42 {
		t.Errorf("got exit code %d, want 42", result.ExitCode)
	}
}

func TestExecutor_Run_WorkingDirectory(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	var stdout bytes.Buffer
	executor := newTestExecutor(&stdout, io.Discard, nil)

	if _, err := executor.Run(context.Background(), Job{Name: "sh", Args: []string{"-c", "pwd -P"}, Dir: dir}); err != nil {
		t.Fatal(err)
	}

	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(stdout.String()); got != want {
		t.Errorf("command ran in %q, want %q", got, want)
	}
}

func TestExecutor_Run_WithEnvVars(t *testing.T) {
	skipOnWindows(t)
	var stdout bytes.Buffer
	executor := newTestExecutor(&stdout, io.Discard, nil)

	_, err := executor.Run(context.Background(), Job{
		Name: "sh",
		Args: []string{"-c", "echo $BUILDIT_TEST_VAR"},
		Dir:  t.TempDir(),
		Env:  map[string]string{"BUILDIT_TEST_VAR": "from-job"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "from-job\n" {
		t.Errorf("got %q, want from-job", stdout.String())
	}
}

func TestExecutor_Run_OutputCallback(t *testing.T) {
	skipOnWindows(t)
	var mu sync.Mutex
	lines := map[string][]string{}
	executor := newTestExecutor(io.Discard, io.Discard, func(stream, line string) {
		mu.Lock()
		defer mu.Unlock()
		lines[stream] = append(lines[stream], line)
	})

	_, err := executor.Run(context.Background(), Job{
		Name: "sh",
		Args: []string{"-c", "echo a; echo b; echo c >&2"},
		Dir:  t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(lines["stdout"], ""); got != "a\nb\n" {
		t.Errorf("stdout lines = %q", got)
	}
	if got := strings.Join(lines["stderr"], ""); got != "c\n" {
		t.Errorf("stderr lines = %q", got)
	}
}

func TestExecutor_Run_MissingBinary(t *testing.T) {
	executor := newTestExecutor(io.Discard, io.Discard, nil)

	_, err := executor.Run(context.Background(), Job{
		Name: filepath.Join(t.TempDir(), "no-such-cmake"),
		Dir:  t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected an error for a missing executable")
	}
}

func TestExecutor_Run_ContextCancelKillsProcess(t *testing.T) {
	skipOnWindows(t)
	executor := newTestExecutor(io.Discard, io.Discard, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := executor.Run(ctx, Job{Name: "sleep", Args: []string{"10"}, Dir: os.TempDir()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode == 0 {
		t.Error("killed process should not report success")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("process was not killed on context cancellation")
	}
}

func TestJob_String(t *testing.T) {
	job := Job{Name: "cmake", Args: []string{"--build", ".", "-DX=a b", ""}}
	want := `cmake --build . "-DX=a b" ""`
	if got := job.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
