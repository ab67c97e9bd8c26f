package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/fliptrack/internal/device"
)

func TestGatewayRequestCamera(t *testing.T) {
	t.Run("grant probes and releases the stream", func(t *testing.T) {
		cam := device.NewVirtual()
		g := NewGateway(cam)

		res := g.RequestCamera(context.Background())

		assert.True(t, res.Success)
		assert.Empty(t, res.Message)
		assert.Equal(t, device.StateGranted, g.State(device.Camera))
		assert.Equal(t, 1, cam.Opened())
		assert.Equal(t, 0, cam.OpenStreams())
	})

	tests := []struct {
		raw      string
		category error
		message  string
	}{
		{device.NameNotAllowed, ErrPermissionDenied, "Camera permission denied. Please enable camera access in your browser settings."},
		{device.NameNotFound, ErrDeviceNotFound, "No camera found on this device."},
		{device.NameNotReadable, ErrDeviceBusy, "Camera is already in use by another application."},
		{device.NameNotSupported, ErrUnsupported, "Camera not supported on this device."},
		{"SomethingNewError", ErrPermissionDenied, "Camera permission denied. Please enable camera access in your browser settings."},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cam := device.NewVirtual()
			cam.Fail(device.Camera, tt.raw)
			g := NewGateway(cam)

			res := g.RequestCamera(context.Background())

			assert.False(t, res.Success)
			assert.ErrorIs(t, res.Err, tt.category)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, device.StateDenied, g.State(device.Camera))
			assert.Equal(t, tt.message, g.LastError(device.Camera))
		})
	}

	t.Run("grant after denial clears the error", func(t *testing.T) {
		cam := device.NewVirtual()
		cam.Fail(device.Camera, device.NameNotAllowed)
		g := NewGateway(cam)
		require.False(t, g.RequestCamera(context.Background()).Success)

		cam.Fail(device.Camera, "")
		res := g.RequestCamera(context.Background())

		assert.True(t, res.Success)
		assert.Equal(t, device.StateGranted, g.State(device.Camera))
		assert.Empty(t, g.LastError(device.Camera))
	})

	t.Run("no devices is unsupported", func(t *testing.T) {
		g := NewGateway(nil)

		res := g.RequestCamera(context.Background())

		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, ErrUnsupported)
		assert.Equal(t, device.StateDenied, g.State(device.Camera))
	})
}

func TestGatewayRequestMicrophoneIsIndependent(t *testing.T) {
	dev := device.NewVirtual()
	dev.Fail(device.Microphone, device.NameNotFound)
	g := NewGateway(dev)

	mic := g.RequestMicrophone(context.Background())
	cam := g.RequestCamera(context.Background())

	assert.False(t, mic.Success)
	assert.Equal(t, "No microphone found on this device.", mic.Message)
	assert.True(t, cam.Success)
	assert.Equal(t, map[device.Capability]device.State{
		device.Camera:     device.StateGranted,
		device.Microphone: device.StateDenied,
	}, g.Grants())
}

func TestGatewayCheckStatus(t *testing.T) {
	t.Run("reports environment state", func(t *testing.T) {
		dev := device.NewVirtual()
		dev.SetState(device.Camera, device.StateDenied)
		g := NewGateway(dev)

		assert.Equal(t, device.StateDenied, g.CheckStatus(context.Background(), device.Camera))
		assert.Equal(t, device.StatePrompt, g.CheckStatus(context.Background(), device.Microphone))
	})

	t.Run("defaults to prompt when status is unavailable", func(t *testing.T) {
		dev := device.NewVirtual()
		dev.SetState(device.Camera, device.StateGranted)
		dev.HideStatus()
		g := NewGateway(dev)

		assert.Equal(t, device.StatePrompt, g.CheckStatus(context.Background(), device.Camera))
	})

	t.Run("defaults to prompt without devices", func(t *testing.T) {
		assert.Equal(t, device.StatePrompt, NewGateway(nil).CheckStatus(context.Background(), device.Camera))
	})
}

func TestGatewayInit(t *testing.T) {
	t.Run("seeds grants from status", func(t *testing.T) {
		dev := device.NewVirtual()
		dev.SetState(device.Camera, device.StateGranted)
		g := NewGateway(dev)

		g.Init(context.Background())

		assert.Equal(t, device.StateGranted, g.State(device.Camera))
		assert.Equal(t, device.StatePrompt, g.State(device.Microphone))
		assert.Equal(t, 0, dev.Opened())
	})

	t.Run("cancelled context still completes", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		relay := device.NewRelay()
		g := NewGateway(relay)

		g.Init(ctx)

		assert.Equal(t, device.StatePrompt, g.State(device.Camera))
	})
}

func TestErrorTableIsSwappable(t *testing.T) {
	dev := device.NewVirtual()
	dev.Fail(device.Camera, device.NameNotAllowed)
	g := NewGateway(dev, WithErrorTable(ErrorTable{device.NameNotAllowed: ErrDeviceBusy}))

	res := g.RequestCamera(context.Background())

	assert.ErrorIs(t, res.Err, ErrDeviceBusy)
	assert.Equal(t, "Camera is already in use by another application.", res.Message)
}

func TestErrorTableClassify(t *testing.T) {
	assert.ErrorIs(t, DefaultErrorTable.Classify(&device.Error{Name: device.NameOverconstrained}), ErrDeviceNotFound)
	assert.ErrorIs(t, DefaultErrorTable.Classify(context.DeadlineExceeded), ErrDeviceBusy)
	assert.ErrorIs(t, DefaultErrorTable.Classify(errors.New("boom")), ErrPermissionDenied)
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "Camera access denied", Message(device.Camera, errors.New("other")))
	assert.Equal(t, "Microphone access denied", Message(device.Microphone, errors.New("other")))
}
