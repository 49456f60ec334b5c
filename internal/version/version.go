// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package version holds the tunctl release version. The value is overridden
// at build time via -ldflags; an untagged build falls back to VCS metadata.
package version

import "runtime/debug"

// Version is the release version stamped by the build.
var Version = "dev"

func init() {
	if Version != "dev" {
		return
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				Version = "dev-" + s.Value[:12]
				return
			}
		}
	}
}
