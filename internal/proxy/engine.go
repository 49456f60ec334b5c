// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/apex/log"
)

// ErrNoDocker is returned when the docker binary cannot be found on PATH.
var ErrNoDocker = errors.New("docker binary not found on PATH")

// ErrDockerNotRunning is returned when the binary is present but the daemon
// does not answer.
var ErrDockerNotRunning = errors.New("docker daemon is not running or not reachable")

// ExecCommandFunc is the function signature for creating exec.Cmd.
// This allows injection of mock implementations for testing.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithExecCommand overrides how commands are created. Tests use this to
// record invocations without a docker daemon.
func WithExecCommand(f ExecCommandFunc) EngineOption {
	return func(e *Engine) { e.execCommand = f }
}

// WithBinaryPath overrides the resolved docker binary path.
func WithBinaryPath(path string) EngineOption {
	return func(e *Engine) { e.binaryPath = path }
}

// Engine drives the docker CLI. The localproxy image is run through the CLI
// rather than the daemon API so tunctl inherits whatever docker context,
// credential helpers, and rootless setup the user already has.
type Engine struct {
	binaryPath  string
	execCommand ExecCommandFunc
}

// NewEngine creates a docker engine. The binary is resolved from PATH; use
// Available to find out whether that worked.
func NewEngine(opts ...EngineOption) *Engine {
	path, _ := exec.LookPath("docker")
	e := &Engine{
		binaryPath:  path,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BinaryPath returns the resolved docker binary path, or "".
func (e *Engine) BinaryPath() string {
	return e.binaryPath
}

// Available checks if docker is usable (binary present and daemon answering).
func (e *Engine) Available(ctx context.Context) bool {
	if e.binaryPath == "" {
		return false
	}
	cmd := e.CreateCommand(ctx, "version", "--format", "{{.Server.Version}}")
	return cmd.Run() == nil
}

// CreateCommand builds an exec.Cmd for the given docker arguments.
func (e *Engine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	log.Debugf("docker %s", strings.Join(args, " "))
	return e.execCommand(ctx, e.binaryPath, args...)
}

// RunCommandWithOutput runs docker with args and returns trimmed stdout.
// On failure the error carries docker's stderr.
func (e *Engine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	if e.binaryPath == "" {
		return "", ErrNoDocker
	}

	var stdout, stderr bytes.Buffer
	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("docker %s: %w", args[0], err)
		}
		return "", fmt.Errorf("docker %s: %s: %w", args[0], msg, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// RunCommandStatus runs docker with args, discarding output.
func (e *Engine) RunCommandStatus(ctx context.Context, args ...string) error {
	_, err := e.RunCommandWithOutput(ctx, args...)
	return err
}
