// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tunctlgo/internal/meta"
	"github.com/staranto/tunctlgo/internal/tunnel"
)

// TokenCommandAction is the action handler for the "token" subcommand. It
// performs the tunnel reuse-or-open dance and prints the requested access
// token, for driving a hand-run localproxy.
func TokenCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "token") {
		return nil
	}

	_, manager, _, err := InitTunnelManager(ctx, cmd)
	if err != nil {
		return err
	}

	tokens, _, err := manager.SourceTokens(ctx)
	if err != nil {
		return err
	}

	return writeToken(os.Stdout, tokens, cmd.Bool("destination"))
}

// writeToken prints the requested access token. Asking for a destination token
// the service did not return is a hard error, not an empty line.
func writeToken(w io.Writer, tokens tunnel.Tokens, destination bool) error {
	if destination {
		if tokens.Destination == "" {
			return errors.New("response carried no destination access token")
		}
		fmt.Fprintln(w, tokens.Destination)
		return nil
	}
	fmt.Fprintln(w, tokens.Source)
	return nil
}

// TokenCommandBuilder constructs the cli.Command definition for the "token"
// command.
func TokenCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "print a tunnel access token",
		UsageText: `tunctl token --thing-name <thing> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewThingFlag("token"),
			NewProfileFlag("token"),
			NewRegionFlag("token"),
			NewServiceFlag("token"),
			&cli.BoolFlag{
				Name:        "destination",
				Usage:       "print the destination token instead of the source token",
				HideDefault: true,
			},
			tldrFlag,
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: TokenCommandAction,
	}
}
