// Package runner executes external programs on behalf of the store backends.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// ExecConfig contains configuration for executing a single program.
type ExecConfig struct {
	Program string            // Program to execute (looked up in PATH)
	Args    []string          // Arguments, passed without shell interpretation
	CWD     string            // Working directory
	Env     map[string]string // Extra environment variables
}

// ExecResult contains the result of executing a single program.
type ExecResult struct {
	Command  string
	ExitCode int
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// WaitDelay bounds how long Exec waits for the output pipes to close after
// the process is killed. Children that inherited the pipes can otherwise
// hold Exec open until they exit.
const WaitDelay = 500 * time.Millisecond

// Exec runs a program to completion. Canceling ctx kills the process.
func Exec(ctx context.Context, config ExecConfig) ExecResult {
	startTime := time.Now()

	result := ExecResult{
		Command: config.Program,
	}

	if config.Program == "" {
		result.Error = fmt.Errorf("empty command")
		result.Duration = time.Since(startTime)
		return result
	}

	cmd := exec.CommandContext(ctx, config.Program, config.Args...)
	cmd.WaitDelay = WaitDelay

	// Set working directory
	if config.CWD != "" {
		cmd.Dir = config.CWD
	}

	// Set environment
	if len(config.Env) > 0 {
		cmd.Env = append([]string{}, os.Environ()...)
		for k, v := range config.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.Duration = time.Since(startTime)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = getExitCode(exitErr)
		} else {
			result.ExitCode = -1
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		result.Error = err
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}

// getExitCode extracts the exit code from an exec.ExitError.
func getExitCode(err *exec.ExitError) int {
	if status, ok := err.Sys().(syscall.WaitStatus); ok {
		return status.ExitStatus()
	}
	return 1
}
