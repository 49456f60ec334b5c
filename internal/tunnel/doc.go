// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package tunnel manages AWS IoT secure tunnels for a thing: discovery,
// reuse, token rotation, and closing.
package tunnel
