// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tunctlgo/internal/meta"
	"github.com/staranto/tunctlgo/internal/proxy"
)

// DownCommandAction is the action handler for the "down" subcommand. It stops
// the localproxy container and, with --close-tunnel, closes the thing's OPEN
// tunnels too.
func DownCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "down") {
		return nil
	}

	if cmd.Bool("close-tunnel") {
		_, manager, thing, err := InitTunnelManager(ctx, cmd)
		if err != nil {
			return err
		}
		closed, err := manager.CloseAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Closed %d tunnels for %s\n", closed, thing)
	}

	thing, err := RequireThing(cmd)
	if err != nil {
		return err
	}

	engine := proxy.NewEngine()
	if engine.BinaryPath() == "" {
		return proxy.ErrNoDocker
	}
	if !engine.Available(ctx) {
		return proxy.ErrDockerNotRunning
	}
	p := proxy.New(engine, thing, "", "", cmd.Int("port"))

	running, _, err := p.Running(ctx)
	if err != nil {
		return err
	}
	if !running {
		fmt.Printf("Container %s is not running\n", thing)
		return nil
	}

	if err := p.Stop(ctx); err != nil {
		return err
	}
	fmt.Printf("Container %s stopped\n", thing)
	return nil
}

// DownCommandBuilder constructs the cli.Command definition for the "down"
// command.
func DownCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "down",
		Usage:     "stop the local proxy",
		UsageText: `tunctl down --thing-name <thing> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewThingFlag("down"),
			NewProfileFlag("down"),
			NewRegionFlag("down"),
			NewPortFlag("down"),
			NewServiceFlag("down"),
			&cli.BoolFlag{
				Name:        "close-tunnel",
				Usage:       "also close the thing's OPEN tunnels",
				HideDefault: true,
			},
			tldrFlag,
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: DownCommandAction,
	}
}
