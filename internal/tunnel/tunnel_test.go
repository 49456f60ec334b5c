// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tunnel

import (
	"context"
	"errors"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	tunv2 "github.com/aws/aws-sdk-go-v2/service/iotsecuretunneling"
	"github.com/aws/aws-sdk-go-v2/service/iotsecuretunneling/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements API with injectable responses per call.
type fakeAPI struct {
	listOut   *tunv2.ListTunnelsOutput
	listErr   error
	openOut   *tunv2.OpenTunnelOutput
	openErr   error
	rotateOut *tunv2.RotateTunnelAccessTokenOutput
	rotateErr error
	closeErr  error

	opened  int
	rotated []string
	closed  []string
}

func (f *fakeAPI) ListTunnels(ctx context.Context, in *tunv2.ListTunnelsInput, optFns ...func(*tunv2.Options)) (*tunv2.ListTunnelsOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listOut == nil {
		return &tunv2.ListTunnelsOutput{}, nil
	}
	return f.listOut, nil
}

func (f *fakeAPI) OpenTunnel(ctx context.Context, in *tunv2.OpenTunnelInput, optFns ...func(*tunv2.Options)) (*tunv2.OpenTunnelOutput, error) {
	f.opened++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.openOut, nil
}

func (f *fakeAPI) RotateTunnelAccessToken(ctx context.Context, in *tunv2.RotateTunnelAccessTokenInput, optFns ...func(*tunv2.Options)) (*tunv2.RotateTunnelAccessTokenOutput, error) {
	f.rotated = append(f.rotated, awsv2.ToString(in.TunnelId))
	if f.rotateErr != nil {
		return nil, f.rotateErr
	}
	return f.rotateOut, nil
}

func (f *fakeAPI) CloseTunnel(ctx context.Context, in *tunv2.CloseTunnelInput, optFns ...func(*tunv2.Options)) (*tunv2.CloseTunnelOutput, error) {
	f.closed = append(f.closed, awsv2.ToString(in.TunnelId))
	if f.closeErr != nil {
		return nil, f.closeErr
	}
	return &tunv2.CloseTunnelOutput{}, nil
}

func summariesOut(summaries ...types.TunnelSummary) *tunv2.ListTunnelsOutput {
	return &tunv2.ListTunnelsOutput{TunnelSummaries: summaries}
}

func TestSourceTokens_ReusesOpenTunnel(t *testing.T) {
	api := &fakeAPI{
		listOut: summariesOut(
			types.TunnelSummary{
				TunnelId: awsv2.String("tun-closed"),
				Status:   types.TunnelStatusClosed,
			},
			types.TunnelSummary{
				TunnelId: awsv2.String("tun-open"),
				Status:   types.TunnelStatusOpen,
			},
		),
		rotateOut: &tunv2.RotateTunnelAccessTokenOutput{
			SourceAccessToken:      awsv2.String("src-token"),
			DestinationAccessToken: awsv2.String("dst-token"),
		},
	}

	m := NewManager(api, "bench-rig", "")
	tokens, reused, err := m.SourceTokens(context.Background())

	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, "tun-open", tokens.TunnelID)
	assert.Equal(t, "src-token", tokens.Source)
	assert.Equal(t, "dst-token", tokens.Destination)
	assert.Equal(t, []string{"tun-open"}, api.rotated)
	assert.Zero(t, api.opened, "must not open a second tunnel when one is OPEN")
}

func TestSourceTokens_OpensWhenNoneOpen(t *testing.T) {
	api := &fakeAPI{
		listOut: summariesOut(types.TunnelSummary{
			TunnelId: awsv2.String("tun-closed"),
			Status:   types.TunnelStatusClosed,
		}),
		openOut: &tunv2.OpenTunnelOutput{
			TunnelId:               awsv2.String("tun-new"),
			SourceAccessToken:      awsv2.String("src-token"),
			DestinationAccessToken: awsv2.String("dst-token"),
		},
	}

	m := NewManager(api, "bench-rig", "")
	tokens, reused, err := m.SourceTokens(context.Background())

	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, "tun-new", tokens.TunnelID)
	assert.Equal(t, 1, api.opened)
	assert.Empty(t, api.rotated)
}

func TestSourceTokens_TokenValidation(t *testing.T) {
	tests := []struct {
		name  string
		token *string
	}{
		{name: "missing token", token: nil},
		{name: "empty token", token: awsv2.String("")},
		{name: "literal null token", token: awsv2.String("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				openOut: &tunv2.OpenTunnelOutput{
					TunnelId:          awsv2.String("tun-new"),
					SourceAccessToken: tt.token,
				},
			}

			m := NewManager(api, "bench-rig", "")
			_, _, err := m.SourceTokens(context.Background())
			assert.ErrorIs(t, err, ErrNoToken)
		})
	}
}

func TestSourceTokens_ListError(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("throttled")}

	m := NewManager(api, "bench-rig", "")
	_, _, err := m.SourceTokens(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bench-rig")
	assert.Zero(t, api.opened)
}

func TestList_ShapesSummaries(t *testing.T) {
	created := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		listOut: summariesOut(types.TunnelSummary{
			TunnelId:      awsv2.String("tun-1"),
			Status:        types.TunnelStatusOpen,
			Description:   awsv2.String("tunctl bench-rig"),
			CreatedAt:     awsv2.Time(created),
			LastUpdatedAt: awsv2.Time(created.Add(time.Minute)),
		}),
	}

	m := NewManager(api, "bench-rig", "")
	summaries, err := m.List(context.Background())

	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "tun-1", summaries[0].TunnelID)
	assert.Equal(t, "OPEN", summaries[0].Status)
	assert.Equal(t, "tunctl bench-rig", summaries[0].Description)
	assert.Equal(t, created, summaries[0].CreatedAt)
}

func TestCloseAll(t *testing.T) {
	api := &fakeAPI{
		listOut: summariesOut(
			types.TunnelSummary{TunnelId: awsv2.String("tun-1"), Status: types.TunnelStatusOpen},
			types.TunnelSummary{TunnelId: awsv2.String("tun-2"), Status: types.TunnelStatusClosed},
			types.TunnelSummary{TunnelId: awsv2.String("tun-3"), Status: types.TunnelStatusOpen},
		),
	}

	m := NewManager(api, "bench-rig", "")
	closed, err := m.CloseAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, closed)
	assert.Equal(t, []string{"tun-1", "tun-3"}, api.closed)
}

func TestNewManager_DefaultService(t *testing.T) {
	m := NewManager(&fakeAPI{}, "bench-rig", "")
	assert.Equal(t, DefaultService, m.service)

	m = NewManager(&fakeAPI{}, "bench-rig", "VNC")
	assert.Equal(t, "VNC", m.service)
}
