// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestInitApp_CommandSet(t *testing.T) {
	app, err := InitApp(context.Background(), []string{"tunctl", "status"})
	require.NoError(t, err)

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.ElementsMatch(t, []string{"up", "down", "status", "token", "completion"}, names)
}

func TestInitApp_MetaAttached(t *testing.T) {
	args := []string{"tunctl", "up", "--thing-name", "bench-rig"}
	app, err := InitApp(context.Background(), args)
	require.NoError(t, err)

	for _, cmd := range app.Commands {
		if cmd.Name == "completion" {
			continue
		}
		m := GetMeta(cmd)
		assert.Equal(t, args, m.Args, cmd.Name)
	}
}

func TestGetMeta_ZeroOnMissing(t *testing.T) {
	m := GetMeta(nil)
	assert.Empty(t, m.Args)

	m = GetMeta(&cli.Command{})
	assert.Empty(t, m.Args)

	m = GetMeta(&cli.Command{Metadata: map[string]any{"meta": "wrong type"}})
	assert.Empty(t, m.Args)
}

func TestRequireThing(t *testing.T) {
	cmd := &cli.Command{
		Flags: []cli.Flag{&cli.StringFlag{Name: "thing-name"}},
	}
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		thing, err := RequireThing(c)
		require.NoError(t, err)
		assert.Equal(t, "bench-rig", thing)
		return nil
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"x", "--thing-name", "bench-rig"}))

	missing := &cli.Command{
		Flags: []cli.Flag{&cli.StringFlag{Name: "thing-name"}},
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := RequireThing(c)
			return err
		},
	}
	err := missing.Run(context.Background(), []string{"x"})
	assert.Error(t, err)
}
