// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tunctlgo/internal/aws"
	"github.com/staranto/tunctlgo/internal/meta"
	"github.com/staranto/tunctlgo/internal/output"
	"github.com/staranto/tunctlgo/internal/proxy"
)

// statusDoc is the document the status command emits.
type statusDoc struct {
	Thing     string      `json:"thing"`
	Region    string      `json:"region"`
	Account   string      `json:"account,omitempty"`
	Caller    string      `json:"caller,omitempty"`
	Container string      `json:"container"`
	Tunnels   []tunnelRow `json:"tunnels"`
}

type tunnelRow struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Created string `json:"created"`
	Updated string `json:"updated"`
}

func age(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// StatusCommandAction is the action handler for the "status" subcommand. It
// joins the thing's tunnel list with the local container state.
func StatusCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "status") {
		return nil
	}

	cfg, manager, thing, err := InitTunnelManager(ctx, cmd)
	if err != nil {
		return err
	}

	summaries, err := manager.List(ctx)
	if err != nil {
		return err
	}

	doc := statusDoc{
		Thing:     thing,
		Region:    cfg.Region,
		Container: "unknown",
	}

	for _, s := range summaries {
		doc.Tunnels = append(doc.Tunnels, tunnelRow{
			ID:      s.TunnelID,
			Status:  s.Status,
			Created: age(s.CreatedAt),
			Updated: age(s.UpdatedAt),
		})
	}

	if cmd.Bool("verbose") {
		account, arn, err := aws.CallerIdentity(ctx, cfg)
		if err != nil {
			return err
		}
		doc.Account = account
		doc.Caller = arn
	}

	engine := proxy.NewEngine()
	if engine.BinaryPath() != "" {
		state, err := proxy.New(engine, thing, cfg.Region, "", cmd.Int("port")).Inspect(ctx)
		if err != nil {
			return err
		}
		doc.Container = state.Status
	}

	return output.Spit(os.Stdout, doc, cmd.String("output"), output.Options{
		Collection: "tunnels",
		Columns: []output.Column{
			{Title: "id", Path: "id"},
			{Title: "status", Path: "status"},
			{Title: "created", Path: "created"},
			{Title: "updated", Path: "updated"},
		},
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	})
}

// StatusCommandBuilder constructs the cli.Command definition for the "status"
// command.
func StatusCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show tunnel and proxy container status",
		UsageText: `tunctl status --thing-name <thing> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewThingFlag("status"),
			NewProfileFlag("status"),
			NewRegionFlag("status"),
			NewPortFlag("status"),
			NewServiceFlag("status"),
			NewOutputFlag("status"),
			NewTitlesFlag("status"),
			NewColorFlag("status"),
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "include the resolved AWS account and caller",
				HideDefault: true,
			},
			tldrFlag,
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: StatusCommandAction,
	}
}
