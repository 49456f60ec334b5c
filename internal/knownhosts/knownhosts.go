// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package knownhosts removes stale host-key entries from the user's SSH
// known_hosts file. When a tunnel port is reused for a different device the
// old fingerprint would otherwise make ssh refuse to connect.
package knownhosts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"golang.org/x/crypto/ssh"
)

// DefaultPath returns ~/.ssh/known_hosts.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".ssh", "known_hosts"), nil
}

// HostsForPort returns the known_hosts host patterns a tunnel on the given
// local port shows up under.
func HostsForPort(port int) []string {
	return []string{
		fmt.Sprintf("[localhost]:%d", port),
		fmt.Sprintf("[127.0.0.1]:%d", port),
	}
}

// Clean rewrites the known_hosts file at path without any entries for the
// given hosts and returns how many entries were removed. A missing file is a
// no-op. Lines that do not parse as known_hosts entries are preserved
// verbatim.
func Clean(path string, hosts ...string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	drop := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		drop[h] = true
	}

	var kept bytes.Buffer
	removed := 0

	for _, line := range strings.SplitAfter(string(data), "\n") {
		if line == "" {
			continue
		}
		entryHosts, ok := parseHosts(line)
		if !ok {
			kept.WriteString(line)
			continue
		}

		match := false
		for _, h := range entryHosts {
			if drop[h] {
				match = true
				break
			}
		}
		if match {
			removed++
			continue
		}
		kept.WriteString(line)
	}

	if removed == 0 {
		return 0, nil
	}

	mode := os.FileMode(0o600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := writeAtomic(path, kept.Bytes(), mode); err != nil {
		return 0, err
	}
	log.Debugf("removed %d stale entries from %s", removed, path)
	return removed, nil
}

// parseHosts extracts the host patterns from one known_hosts line.
func parseHosts(line string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, false
	}
	_, entryHosts, _, _, _, err := ssh.ParseKnownHosts([]byte(trimmed))
	if err != nil {
		return nil, false
	}
	return entryHosts, true
}

// writeAtomic replaces path via a same-directory temp file so a crash cannot
// truncate the user's known_hosts. The replacement keeps the original mode.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".known_hosts-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
