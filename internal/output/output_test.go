// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Thing   string    `json:"thing"`
	Tunnels []testRow `json:"tunnels"`
}

type testRow struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func testOptions() Options {
	return Options{
		Collection: "tunnels",
		Columns: []Column{
			{Title: "id", Path: "id"},
			{Title: "status", Path: "status"},
		},
	}
}

func sampleDoc() testDoc {
	return testDoc{
		Thing: "bench-rig",
		Tunnels: []testRow{
			{ID: "tun-1", Status: "OPEN"},
			{ID: "tun-2", Status: "CLOSED"},
		},
	}
}

func TestSpit_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Spit(&buf, sampleDoc(), "json", testOptions()))

	var got testDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleDoc(), got)
}

func TestSpit_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Spit(&buf, sampleDoc(), "yaml", testOptions()))

	out := buf.String()
	assert.Contains(t, out, "thing: bench-rig")
	assert.Contains(t, out, "tun-1")
	assert.Contains(t, out, "CLOSED")
}

func TestSpit_Text(t *testing.T) {
	var buf bytes.Buffer
	opts := testOptions()
	opts.Titles = true
	require.NoError(t, Spit(&buf, sampleDoc(), "text", opts))

	out := buf.String()
	assert.Contains(t, out, "thing: bench-rig")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "tun-1")
	assert.Contains(t, out, "OPEN")
}

func TestSpit_TextNoTitles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Spit(&buf, sampleDoc(), "text", testOptions()))

	out := buf.String()
	assert.NotContains(t, out, "STATUS")
	assert.Contains(t, out, "tun-2")
}

func TestSpit_TextEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	doc := testDoc{Thing: "bench-rig"}
	require.NoError(t, Spit(&buf, doc, "text", testOptions()))
	assert.Contains(t, buf.String(), "no tunnels")
}

func TestSpit_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Spit(&buf, sampleDoc(), "csv", testOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv")
}

func TestSpit_DefaultFormatIsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Spit(&buf, sampleDoc(), "", testOptions()))
	assert.Contains(t, buf.String(), "thing: bench-rig")
}
