// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/tunctlgo/internal/config"
	"github.com/staranto/tunctlgo/internal/proxy"
	"github.com/staranto/tunctlgo/internal/tunnel"
)

func init() {
	cfg, _ = config.Load("")
}

var (
	cfg config.Type

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

// NewThingFlag constructs the "thing-name" flag shared by every command that
// talks to a device.
func NewThingFlag(ns string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "thing-name",
		Aliases: []string{"t"},
		Usage:   "AWS IoT Thing name of the target device",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TUNCTL_THING_NAME"),
		),
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, flag)
}

// NewProfileFlag constructs the "profile" flag. The AWS_PROFILE fallback
// keeps tunctl consistent with the rest of the AWS tooling on the box.
func NewProfileFlag(ns string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "profile",
		Aliases: []string{"p"},
		Usage:   "AWS profile to use",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TUNCTL_PROFILE"),
			cli.EnvVar("AWS_PROFILE"),
		),
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, flag)
}

// NewRegionFlag constructs the "region" flag. Left empty, the SDK shared
// config chain decides.
func NewRegionFlag(ns string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "region",
		Aliases: []string{"r"},
		Usage:   "AWS region to use. Overrides the profile default",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TUNCTL_REGION"),
			cli.EnvVar("AWS_REGION"),
		),
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, flag)
}

// NewPortFlag constructs the "port" flag for the local proxy bind.
func NewPortFlag(ns string) *cli.IntFlag {
	flag := &cli.IntFlag{
		Name:    "port",
		Aliases: []string{"P"},
		Usage:   "local port the proxy binds",
		Value:   proxy.DefaultPort,
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TUNCTL_PORT"),
			yaml.YAML(ns+"."+"port", altsrc.StringSourcer(cfg.Source)),
			yaml.YAML("port", altsrc.StringSourcer(cfg.Source)),
		),
		Validator: func(value int) error {
			return FlagValidators(value, PortValidator)
		},
	}
	return flag
}

// NewServiceFlag constructs the "service" flag naming the destination service
// advertised on the tunnel.
func NewServiceFlag(ns string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "service",
		Aliases: []string{"s"},
		Usage:   "destination service advertised on the tunnel",
		Value:   tunnel.DefaultService,
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, flag)
}

// NewOutputFlag constructs the "output" flag for commands that emit datasets.
func NewOutputFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format",
		Sources: cli.NewValueSourceChain(
			yaml.YAML(ns+"."+"output", altsrc.StringSourcer(cfg.Source)),
			yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
		),
		Value: "text",
		Validator: func(value string) error {
			return FlagValidators(value, OutputValidator)
		},
	}
}

// NewTitlesFlag constructs the "titles" flag for text output.
func NewTitlesFlag(ns string) *cli.BoolWithInverseFlag {
	return &cli.BoolWithInverseFlag{
		Name:  "titles",
		Usage: "show titles with text output",
		Sources: cli.NewValueSourceChain(
			yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(cfg.Source)),
			yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
		),
		Value: true,
	}
}

// NewColorFlag constructs the "color" flag for text output.
func NewColorFlag(ns string) *cli.BoolWithInverseFlag {
	return &cli.BoolWithInverseFlag{
		Name:    "color",
		Aliases: []string{"c"},
		Usage:   "enable colored text output",
		Sources: cli.NewValueSourceChain(
			yaml.YAML(ns+"."+"color", altsrc.StringSourcer(cfg.Source)),
			yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
		),
		Value: false,
	}
}

// NewWaitFlags constructs the wait/timeout pair used by up.
func NewWaitFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:  "wait",
			Usage: "wait for the local proxy port to accept connections",
			Value: true,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "how long to wait for the proxy to become ready",
			Value: 30 * time.Second,
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the given executable exists on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
