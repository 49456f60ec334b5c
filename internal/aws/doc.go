// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws contains AWS-related helpers and adapters used by commands
// that interact with the IoT Secure Tunneling service.
package aws
