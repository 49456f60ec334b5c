// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	yaml "gopkg.in/yaml.v2"
)

// Column maps a table header to a gjson path inside a collection element.
type Column struct {
	Title string
	Path  string
}

// Options controls how Spit renders a document.
type Options struct {
	// Collection is the gjson path of the array rendered as a table in text
	// mode. Fields outside the collection are printed as key: value lines.
	Collection string
	Columns    []Column
	Titles     bool
	Color      bool
}

// Spit emits doc to w in the requested format (text, json, yaml).
func Spit(w io.Writer, doc any, format string, opts Options) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		// Round-trip through JSON so yaml sees plain maps, not struct tags.
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		var plain map[string]interface{}
		if err := json.Unmarshal(raw, &plain); err != nil {
			return fmt.Errorf("failed to reshape document: %w", err)
		}
		out, err := yaml.Marshal(plain)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "text", "":
		return spitText(w, doc, opts)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func spitText(w io.Writer, doc any, opts Options) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	parsed := gjson.ParseBytes(raw)

	// Scalars first, in document order.
	parsed.ForEach(func(key, value gjson.Result) bool {
		if key.String() == opts.Collection {
			return true
		}
		if value.IsArray() || value.IsObject() {
			return true
		}
		fmt.Fprintf(w, "%s: %s\n", key.String(), value.String())
		return true
	})

	if opts.Collection == "" {
		return nil
	}

	var rows [][]string
	parsed.Get(opts.Collection).ForEach(func(_, item gjson.Result) bool {
		row := make([]string, 0, len(opts.Columns))
		for _, col := range opts.Columns {
			row = append(row, item.Get(col.Path).String())
		}
		rows = append(rows, row)
		return true
	})

	if len(rows) == 0 {
		fmt.Fprintf(w, "no %s\n", opts.Collection)
		return nil
	}

	headerStyle := lipgloss.NewStyle().Align(lipgloss.Left)
	cellStyle := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Left)
	if opts.Color {
		headerStyle = headerStyle.Foreground(lipgloss.Color("14"))
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		titles := make([]string, 0, len(opts.Columns))
		for _, col := range opts.Columns {
			titles = append(titles, strings.ToUpper(col.Title))
		}
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(titles...).BorderHeader(false)
	}

	fmt.Fprintln(w, t)
	return nil
}
