// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

const probeInterval = 250 * time.Millisecond

// WaitReady blocks until the local proxy port accepts TCP connections or the
// timeout expires. On a TTY a spinner is shown while waiting.
func WaitReady(ctx context.Context, port int, timeout time.Duration) error {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return waitWithSpinner(ctx, port, timeout)
	}
	return pollPort(ctx, port, timeout)
}

// pollPort probes the port until it answers or the deadline passes.
func pollPort(ctx context.Context, port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if probePort(port) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("localproxy did not become ready on port %d within %s", port, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(probeInterval):
		}
	}
}

func probePort(port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)), probeInterval)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

type probeMsg struct{ ready bool }

type waitModel struct {
	spin     spinner.Model
	port     int
	deadline time.Time
	err      error
}

func newWaitModel(port int, timeout time.Duration) waitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return waitModel{
		spin:     s,
		port:     port,
		deadline: time.Now().Add(timeout),
	}
}

func (m waitModel) probe() tea.Cmd {
	return func() tea.Msg {
		if probePort(m.port) {
			return probeMsg{ready: true}
		}
		time.Sleep(probeInterval)
		return probeMsg{}
	}
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.probe())
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case probeMsg:
		if msg.ready {
			return m, tea.Quit
		}
		if time.Now().After(m.deadline) {
			m.err = fmt.Errorf("localproxy did not become ready on port %d", m.port)
			return m, tea.Quit
		}
		return m, m.probe()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.err = context.Canceled
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
}

func (m waitModel) View() string {
	return fmt.Sprintf("%s waiting for localproxy on port %d...\n", m.spin.View(), m.port)
}

func waitWithSpinner(ctx context.Context, port int, timeout time.Duration) error {
	final, err := tea.NewProgram(newWaitModel(port, timeout), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(waitModel); ok {
		return m.err
	}
	return nil
}
