// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/tunctlgo/internal/command"
	"github.com/staranto/tunctlgo/internal/config"
	mylog "github.com/staranto/tunctlgo/internal/log"
	"github.com/staranto/tunctlgo/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments splices a named @set of arguments from the config file into
// the command line. `tunctl up @prod` expands the up.prod list; with no @set
// the up.defaults list is used.
func mangleArguments(args []string) []string {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2)
	copy(preamble, args[:2])

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help")
		}
	}

	idx := 2
	set := "defaults"
	workingArgs := args

	// See if there is a @set specified. If so, that becomes the insertion
	// point and the @set entry is removed from args.
	for i, a := range workingArgs[idx:] {
		if strings.HasPrefix(a, "@") {
			set = a[1:]
			idx += i
			workingArgs = append(workingArgs[:idx], workingArgs[idx+1:]...)
			break
		}
	}

	setArgs, _ := config.GetStringSlice(workingArgs[1] + "." + set)
	for _, arg := range setArgs {
		parts := strings.Fields(arg)
		workingArgs = append(workingArgs[:idx], append(parts, workingArgs[idx:]...)...)
		idx += len(parts)
	}

	log.Debugf("idx=%d, set=%s, args=%v", idx, set, workingArgs)
	return workingArgs
}
