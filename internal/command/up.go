// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tunctlgo/internal/knownhosts"
	"github.com/staranto/tunctlgo/internal/meta"
	"github.com/staranto/tunctlgo/internal/proxy"
)

// UpCommandAction is the action handler for the "up" subcommand. It reuses or
// opens a secure tunnel for the thing, then (re)starts the localproxy
// container bound to the local port.
func UpCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "up") {
		return nil
	}

	image, err := proxy.Image()
	if err != nil {
		return err
	}

	cfg, manager, thing, err := InitTunnelManager(ctx, cmd)
	if err != nil {
		return err
	}

	tokens, reused, err := manager.SourceTokens(ctx)
	if err != nil {
		return err
	}
	if reused {
		fmt.Printf("Reusing tunnel %s\n", tokens.TunnelID)
	} else {
		fmt.Printf("Opened tunnel %s\n", tokens.TunnelID)
	}

	port := cmd.Int("port")
	engine := proxy.NewEngine()
	if engine.BinaryPath() == "" {
		return proxy.ErrNoDocker
	}
	if !engine.Available(ctx) {
		return proxy.ErrDockerNotRunning
	}

	p := proxy.New(engine, thing, cfg.Region, image, port)
	if cmd.Bool("pull") {
		if err := p.Pull(ctx); err != nil {
			return err
		}
	}

	if cmd.Bool("clean-known-hosts") {
		path, err := knownhosts.DefaultPath()
		if err != nil {
			return err
		}
		removed, err := knownhosts.Clean(path, knownhosts.HostsForPort(port)...)
		if err != nil {
			return err
		}
		if removed > 0 {
			fmt.Printf("Removed %d stale known_hosts entries for port %d\n", removed, port)
		}
	}

	id, err := p.Start(ctx, tokens.Source)
	if err != nil {
		return err
	}
	log.Debugf("container id %s", id)

	if cmd.Bool("wait") {
		if err := proxy.WaitReady(ctx, port, cmd.Duration("timeout")); err != nil {
			return err
		}
	}

	fmt.Printf("Proxy for %s ready on port %d. Connect with e.g.:\n", thing, port)
	fmt.Printf("  ssh -p %d <user>@localhost\n", port)
	return nil
}

// UpCommandBuilder constructs the cli.Command definition for the "up"
// command, wiring flags, metadata, and the action handler.
func UpCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "up",
		Usage:     "establish a tunnel and start the local proxy",
		UsageText: `tunctl up --thing-name <thing> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewThingFlag("up"),
			NewProfileFlag("up"),
			NewRegionFlag("up"),
			NewPortFlag("up"),
			NewServiceFlag("up"),
			&cli.BoolWithInverseFlag{
				Name:  "clean-known-hosts",
				Usage: "remove stale known_hosts entries for the local port",
				Value: true,
			},
			&cli.BoolFlag{
				Name:        "pull",
				Usage:       "pull the localproxy image before starting",
				HideDefault: true,
			},
			tldrFlag,
		}, NewWaitFlags("up")...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: UpCommandAction,
	}
}
