// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// TokenEnvVar is the environment variable the localproxy image reads its
// access token from.
const TokenEnvVar = "AWSIOT_TUNNEL_ACCESS_TOKEN"

// DefaultPort is the local port the proxy binds when none is configured.
const DefaultPort = 5555

// State describes the proxy container as reported by docker inspect.
type State struct {
	ID        string
	Status    string
	StartedAt string
	Image     string
}

// Proxy manages the localproxy container for one thing. The container is
// named after the thing so repeated invocations find it again.
type Proxy struct {
	engine *Engine

	Thing  string
	Region string
	Image  string
	Port   int
}

// New returns a Proxy bound to the given engine and thing.
func New(engine *Engine, thing, region, image string, port int) *Proxy {
	if port == 0 {
		port = DefaultPort
	}
	return &Proxy{
		engine: engine,
		Thing:  thing,
		Region: region,
		Image:  image,
		Port:   port,
	}
}

// ContainerName returns the container name used for this thing.
func (p *Proxy) ContainerName() string {
	return p.Thing
}

// Running reports whether the proxy container is currently running, and its
// container ID if so.
func (p *Proxy) Running(ctx context.Context) (bool, string, error) {
	// Anchored so thing "rig" does not match container "rig-2".
	out, err := p.engine.RunCommandWithOutput(ctx,
		"ps", "-q", "-f", "name=^"+p.ContainerName()+"$")
	if err != nil {
		return false, "", err
	}
	id := strings.TrimSpace(out)
	return id != "", id, nil
}

// Stop stops the proxy container. A container that is already gone is not an
// error.
func (p *Proxy) Stop(ctx context.Context) error {
	err := p.engine.RunCommandStatus(ctx, "stop", p.ContainerName())
	if err != nil && strings.Contains(err.Error(), "No such container") {
		return nil
	}
	return err
}

// Pull pulls the localproxy image.
func (p *Proxy) Pull(ctx context.Context) error {
	return p.engine.RunCommandStatus(ctx, "pull", p.Image)
}

// Start runs the localproxy container detached and returns its container ID.
// Any already-running container for the thing is stopped first, so Start is
// also restart. The access token travels through the environment, keeping it
// out of argv and docker inspect output on the tunctl side.
func (p *Proxy) Start(ctx context.Context, token string) (string, error) {
	running, id, err := p.Running(ctx)
	if err != nil {
		return "", err
	}
	if running {
		log.Infof("container %s already running (%s), stopping it", p.ContainerName(), id)
		if err := p.Stop(ctx); err != nil {
			return "", fmt.Errorf("failed to stop container %s: %w", p.ContainerName(), err)
		}
	}

	port := strconv.Itoa(p.Port)
	args := []string{
		"run", "--rm", "-d",
		"--name", p.ContainerName(),
		"-e", TokenEnvVar,
		"-p", port + ":" + port,
		p.Image,
		"--region", p.Region,
		"-b", "0.0.0.0",
		"-s", port,
		"-c", "/etc/ssl/certs",
		"--destination-client-type", "V1",
	}

	var stdout, stderr bytes.Buffer
	cmd := p.engine.CreateCommand(ctx, args...)
	cmd.Env = append(os.Environ(), TokenEnvVar+"="+token)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("failed to start localproxy on port %s: %s: %w", port, msg, err)
		}
		return "", fmt.Errorf("failed to start localproxy on port %s: %w", port, err)
	}

	id = strings.TrimSpace(stdout.String())
	log.Infof("container %s started on port %s", p.ContainerName(), port)
	return id, nil
}

// Inspect returns the container state for the thing. A missing container
// yields a zero State with Status "absent".
func (p *Proxy) Inspect(ctx context.Context) (State, error) {
	out, err := p.engine.RunCommandWithOutput(ctx, "inspect", p.ContainerName())
	if err != nil {
		if strings.Contains(err.Error(), "No such object") ||
			strings.Contains(err.Error(), "No such container") {
			return State{Status: "absent"}, nil
		}
		return State{}, err
	}

	doc := gjson.Parse(out)
	first := doc.Get("0")
	if !first.Exists() {
		return State{Status: "absent"}, nil
	}

	return State{
		ID:        first.Get("Id").String(),
		Status:    first.Get("State.Status").String(),
		StartedAt: first.Get("State.StartedAt").String(),
		Image:     first.Get("Config.Image").String(),
	}, nil
}
