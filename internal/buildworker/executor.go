// Package buildworker runs the external CMake processes buildit drives.
package buildworker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Job is one external command invocation
type Job struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

// String renders the command line for logs
func (j Job) String() string {
	parts := make([]string, 0, len(j.Args)+1)
	parts = append(parts, j.Name)
	for _, a := range j.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result describes a finished job
type Result struct {
	ExitCode int
	Duration time.Duration
}

// OutputCallback is called for each line of output
type OutputCallback func(stream, line string)

// ExecutorConfig configures the job executor
type ExecutorConfig struct {
	// Stdout and Stderr receive the child's output; nil means os.Stdout
	// and os.Stderr.
	Stdout   io.Writer
	Stderr   io.Writer
	OnOutput OutputCallback
	Logger   *slog.Logger
}

// Executor runs jobs and waits for them
type Executor struct {
	config ExecutorConfig
}

// NewExecutor creates a new job executor
func NewExecutor(config ExecutorConfig) *Executor {
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Executor{config: config}
}

// Run executes job in job.Dir and blocks until it exits. A non-zero exit is
// reported through Result.ExitCode, not as an error; the error is reserved
// for failures to start or wait for the process.
func (e *Executor) Run(ctx context.Context, job Job) (*Result, error) {
	start := time.Now()
	log := e.config.Logger

	log.Info("Running command", "cmd", job.String(), "dir", job.Dir)

	cmd := exec.CommandContext(ctx, job.Name, job.Args...)
	cmd.Dir = job.Dir
	cmd.Env = os.Environ()
	for k, v := range job.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", job.Name, err)
	}
	log.Debug("Command started", "pid", cmd.Process.Pid)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.streamOutput(stdout, "stdout", e.config.Stdout)
	}()
	go func() {
		defer wg.Done()
		e.streamOutput(stderr, "stderr", e.config.Stderr)
	}()
	wg.Wait()

	err = cmd.Wait()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("waiting for %s: %w", job.Name, err)
		}
		exitCode = exitErr.ExitCode()
	}

	duration := time.Since(start)
	log.Debug("Command finished", "exit_code", exitCode, "duration", duration.Round(time.Millisecond))

	return &Result{ExitCode: exitCode, Duration: duration}, nil
}

func (e *Executor) streamOutput(r io.Reader, stream string, w io.Writer) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text() + "\n"
		io.WriteString(w, line)
		if e.config.OnOutput != nil {
			e.config.OnOutput(stream, line)
		}
	}
	// Drain anything left after an over-long line so the child never blocks.
	io.Copy(w, r)
}
