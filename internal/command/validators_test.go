// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputValidator(t *testing.T) {
	for _, v := range []string{"text", "json", "yaml"} {
		assert.NoError(t, OutputValidator(v), v)
	}
	assert.Error(t, OutputValidator("csv"))
	assert.Error(t, OutputValidator("raw"))
}

func TestPortValidator(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{name: "default port", port: 5555},
		{name: "low edge", port: 1},
		{name: "high edge", port: 65535},
		{name: "zero", port: 0, wantErr: true},
		{name: "too high", port: 65536, wantErr: true},
		{name: "negative", port: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PortValidator(tt.port)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestJammedFlagValidator(t *testing.T) {
	assert.NoError(t, JammedFlagValidator("bench-rig"))
	assert.Error(t, JammedFlagValidator("--port"))
}
