// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package knownhosts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keyA = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAABAgMEBQYHCAkKCwwNDg8QERITFBUWFxgZGhscHR4f"
	keyB = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8g"
	keyC = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAIDBAUGBwgJCgsMDQ4PEBESExQVFhcYGRobHB0eHyAh"
)

func writeKnownHosts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "known_hosts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestClean_RemovesMatchingEntries(t *testing.T) {
	path := writeKnownHosts(t,
		"[localhost]:5555 "+keyA+"\n"+
			"github.com "+keyB+"\n"+
			"[127.0.0.1]:5555 "+keyC+"\n")

	removed, err := Clean(path, HostsForPort(5555)...)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "github.com "+keyB+"\n", string(data))
}

func TestClean_OtherPortsUntouched(t *testing.T) {
	content := "[localhost]:2222 " + keyA + "\n"
	path := writeKnownHosts(t, content)

	removed, err := Clean(path, HostsForPort(5555)...)
	require.NoError(t, err)
	assert.Zero(t, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestClean_MissingFileIsNoop(t *testing.T) {
	removed, err := Clean(filepath.Join(t.TempDir(), "known_hosts"), HostsForPort(5555)...)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestClean_PreservesMalformedLines(t *testing.T) {
	path := writeKnownHosts(t,
		"# managed by something\n"+
			"this is not a known_hosts line\n"+
			"[localhost]:5555 "+keyA+"\n")

	removed, err := Clean(path, HostsForPort(5555)...)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# managed by something")
	assert.Contains(t, string(data), "this is not a known_hosts line")
	assert.NotContains(t, string(data), "[localhost]:5555")
}

func TestClean_MultiHostEntry(t *testing.T) {
	// An entry listing several hosts is removed when any of them match.
	path := writeKnownHosts(t, "[localhost]:5555,[::1]:5555 "+keyA+"\n")

	removed, err := Clean(path, HostsForPort(5555)...)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestClean_PreservesFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_hosts")
	content := "[localhost]:5555 " + keyA + "\n" +
		"github.com " + keyB + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	removed, err := Clean(path, HostsForPort(5555)...)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestHostsForPort(t *testing.T) {
	hosts := HostsForPort(5555)
	assert.Equal(t, []string{"[localhost]:5555", "[127.0.0.1]:5555"}, hosts)
}
