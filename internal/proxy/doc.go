// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package proxy runs the prebuilt AWS IoT localproxy container that bridges
// a local TCP port to the tunnel.
package proxy
