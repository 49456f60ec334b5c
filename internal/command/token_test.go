// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/tunctlgo/internal/tunnel"
)

func TestWriteToken_Source(t *testing.T) {
	var buf bytes.Buffer
	tokens := tunnel.Tokens{TunnelID: "t-1", Source: "src-tok", Destination: "dst-tok"}

	require.NoError(t, writeToken(&buf, tokens, false))
	assert.Equal(t, "src-tok\n", buf.String())
}

func TestWriteToken_Destination(t *testing.T) {
	var buf bytes.Buffer
	tokens := tunnel.Tokens{TunnelID: "t-1", Source: "src-tok", Destination: "dst-tok"}

	require.NoError(t, writeToken(&buf, tokens, true))
	assert.Equal(t, "dst-tok\n", buf.String())
}

func TestWriteToken_DestinationMissing(t *testing.T) {
	// The service can omit the destination token from a response.
	var buf bytes.Buffer
	tokens := tunnel.Tokens{TunnelID: "t-1", Source: "src-tok"}

	err := writeToken(&buf, tokens, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no destination access token")
	assert.Empty(t, buf.String())
}
