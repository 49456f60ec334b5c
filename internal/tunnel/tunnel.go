// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tunnel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	tunv2 "github.com/aws/aws-sdk-go-v2/service/iotsecuretunneling"
	"github.com/aws/aws-sdk-go-v2/service/iotsecuretunneling/types"
)

// DefaultService is the service name advertised to the tunnel destination.
const DefaultService = "SSH"

// ErrNoToken is returned when the service responds without a usable access
// token. The API contract allows a null token on partially failed requests.
var ErrNoToken = errors.New("no access token in response")

// API is the slice of the IoT Secure Tunneling client the manager needs.
// *iotsecuretunneling.Client satisfies it.
type API interface {
	ListTunnels(ctx context.Context, in *tunv2.ListTunnelsInput, optFns ...func(*tunv2.Options)) (*tunv2.ListTunnelsOutput, error)
	OpenTunnel(ctx context.Context, in *tunv2.OpenTunnelInput, optFns ...func(*tunv2.Options)) (*tunv2.OpenTunnelOutput, error)
	RotateTunnelAccessToken(ctx context.Context, in *tunv2.RotateTunnelAccessTokenInput, optFns ...func(*tunv2.Options)) (*tunv2.RotateTunnelAccessTokenOutput, error)
	CloseTunnel(ctx context.Context, in *tunv2.CloseTunnelInput, optFns ...func(*tunv2.Options)) (*tunv2.CloseTunnelOutput, error)
}

// Tokens holds the access tokens for one tunnel. Destination is only present
// on open and ALL-mode rotate responses.
type Tokens struct {
	TunnelID    string
	Source      string
	Destination string
}

// Summary is the subset of a tunnel summary the status command renders.
type Summary struct {
	TunnelID    string
	Status      string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Manager finds, opens, and recycles secure tunnels for one IoT thing.
type Manager struct {
	api     API
	thing   string
	service string
}

// NewManager returns a Manager for the given thing. An empty service falls
// back to DefaultService.
func NewManager(api API, thing string, service string) *Manager {
	if service == "" {
		service = DefaultService
	}
	return &Manager{api: api, thing: thing, service: service}
}

func (m *Manager) destinationConfig() *types.DestinationConfig {
	return &types.DestinationConfig{
		ThingName: awsv2.String(m.thing),
		Services:  []string{m.service},
	}
}

// List returns all tunnel summaries for the thing, in service order.
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	out, err := m.api.ListTunnels(ctx, &tunv2.ListTunnelsInput{
		ThingName: awsv2.String(m.thing),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tunnels for %s: %w", m.thing, err)
	}

	summaries := make([]Summary, 0, len(out.TunnelSummaries))
	for _, ts := range out.TunnelSummaries {
		s := Summary{Status: string(ts.Status)}
		if ts.TunnelId != nil {
			s.TunnelID = *ts.TunnelId
		}
		if ts.Description != nil {
			s.Description = *ts.Description
		}
		if ts.CreatedAt != nil {
			s.CreatedAt = *ts.CreatedAt
		}
		if ts.LastUpdatedAt != nil {
			s.UpdatedAt = *ts.LastUpdatedAt
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// ExistingOpenTunnelID returns the first OPEN tunnel for the thing, if any.
func (m *Manager) ExistingOpenTunnelID(ctx context.Context) (string, bool, error) {
	summaries, err := m.List(ctx)
	if err != nil {
		return "", false, err
	}
	for _, s := range summaries {
		if s.Status == string(types.TunnelStatusOpen) && s.TunnelID != "" {
			return s.TunnelID, true, nil
		}
	}
	return "", false, nil
}

// Open requests a brand new tunnel and returns its tokens.
func (m *Manager) Open(ctx context.Context) (Tokens, error) {
	out, err := m.api.OpenTunnel(ctx, &tunv2.OpenTunnelInput{
		DestinationConfig: m.destinationConfig(),
		Description:       awsv2.String("tunctl " + m.thing),
	})
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to open tunnel for %s: %w", m.thing, err)
	}

	tokens := Tokens{
		TunnelID:    awsv2.ToString(out.TunnelId),
		Source:      awsv2.ToString(out.SourceAccessToken),
		Destination: awsv2.ToString(out.DestinationAccessToken),
	}
	return tokens, validateSource(tokens)
}

// Rotate refreshes the access tokens of an existing tunnel (client mode ALL,
// so both ends get new tokens).
func (m *Manager) Rotate(ctx context.Context, tunnelID string) (Tokens, error) {
	out, err := m.api.RotateTunnelAccessToken(ctx, &tunv2.RotateTunnelAccessTokenInput{
		TunnelId:          awsv2.String(tunnelID),
		ClientMode:        types.ClientModeAll,
		DestinationConfig: m.destinationConfig(),
	})
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to rotate access token for tunnel %s: %w", tunnelID, err)
	}

	tokens := Tokens{
		TunnelID:    tunnelID,
		Source:      awsv2.ToString(out.SourceAccessToken),
		Destination: awsv2.ToString(out.DestinationAccessToken),
	}
	return tokens, validateSource(tokens)
}

// Close closes a single tunnel. The tunnel record is kept (not deleted) so it
// still shows up CLOSED in status output.
func (m *Manager) Close(ctx context.Context, tunnelID string) error {
	_, err := m.api.CloseTunnel(ctx, &tunv2.CloseTunnelInput{
		TunnelId: awsv2.String(tunnelID),
	})
	if err != nil {
		return fmt.Errorf("failed to close tunnel %s: %w", tunnelID, err)
	}
	return nil
}

// CloseAll closes every OPEN tunnel for the thing and returns how many.
func (m *Manager) CloseAll(ctx context.Context) (int, error) {
	summaries, err := m.List(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, s := range summaries {
		if s.Status != string(types.TunnelStatusOpen) {
			continue
		}
		if err := m.Close(ctx, s.TunnelID); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// SourceTokens finds an OPEN tunnel to reuse (rotating its tokens) or opens a
// new one. Reuse keeps repeated invocations from leaking duplicate tunnels.
func (m *Manager) SourceTokens(ctx context.Context) (Tokens, bool, error) {
	tunnelID, found, err := m.ExistingOpenTunnelID(ctx)
	if err != nil {
		return Tokens{}, false, err
	}

	if found {
		log.Infof("found existing tunnel %s, rotating access token", tunnelID)
		tokens, err := m.Rotate(ctx, tunnelID)
		return tokens, true, err
	}

	log.Info("no existing tunnel found, opening a new one")
	tokens, err := m.Open(ctx)
	return tokens, false, err
}

// validateSource rejects responses whose source token is absent. The AWS CLI
// renders a null token as the literal string "null", so treat that as absent
// too.
func validateSource(t Tokens) error {
	if t.Source == "" || strings.EqualFold(t.Source, "null") {
		return fmt.Errorf("tunnel %s: %w", t.TunnelID, ErrNoToken)
	}
	return nil
}
