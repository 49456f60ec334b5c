// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tunctlgo/internal/aws"
	"github.com/staranto/tunctlgo/internal/meta"
	"github.com/staranto/tunctlgo/internal/tunnel"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr tunctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "tunctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// RequireThing returns the thing-name flag value or an error naming the flag.
func RequireThing(cmd *cli.Command) (string, error) {
	thing := cmd.String("thing-name")
	if thing == "" {
		return "", errors.New("no thing name given (--thing-name/-t, TUNCTL_THING_NAME, or config)")
	}
	return thing, nil
}

// InitTunnelManager loads AWS config per the profile/region flags and returns
// the loaded config plus a tunnel manager for the thing. The effective region
// (flag, profile default, or env) is readable from the returned config.
func InitTunnelManager(ctx context.Context, cmd *cli.Command) (awsv2.Config, *tunnel.Manager, string, error) {
	thing, err := RequireThing(cmd)
	if err != nil {
		return awsv2.Config{}, nil, "", err
	}

	var opts []aws.Option
	if profile := cmd.String("profile"); profile != "" {
		opts = append(opts, aws.WithProfile(profile))
	}
	if region := cmd.String("region"); region != "" {
		opts = append(opts, aws.WithRegion(region))
	}

	cfg, err := aws.LoadAWSConfig(ctx, opts...)
	if err != nil {
		return awsv2.Config{}, nil, "", fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" {
		return awsv2.Config{}, nil, "", errors.New("no region resolved (--region/-r, AWS_REGION, or profile default)")
	}
	log.Debugf("aws config loaded, region=%s", cfg.Region)

	m := tunnel.NewManager(aws.NewSecureTunneling(cfg), thing, cmd.String("service"))
	return cfg, m, thing, nil
}
