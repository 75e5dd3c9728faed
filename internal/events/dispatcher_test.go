package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherPublishSubscribe(t *testing.T) {
	ctx := context.Background()
	d := NewInMemoryDispatcher()

	var received []Event
	d.Subscribe(EventDeviceNameLearned, func(_ context.Context, e Event) error {
		received = append(received, e)
		return nil
	})

	err := d.Publish(ctx, Event{
		Type:       EventDeviceNameLearned,
		Technician: "jdoe",
		Payload:    DeviceNameLearnedPayload{IncidentNumber: "INC0010001", DeviceName: "CPC-AB123"},
	})
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, "jdoe", received[0].Technician)
	payload, ok := received[0].Payload.(DeviceNameLearnedPayload)
	require.True(t, ok)
	assert.Equal(t, "CPC-AB123", payload.DeviceName)
}

func TestDispatcherIgnoresOtherEventTypes(t *testing.T) {
	ctx := context.Background()
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventActionExecuted, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(ctx, Event{Type: EventSessionStarted}))
	assert.Zero(t, calls)
}

func TestDispatcherUnsubscribe(t *testing.T) {
	ctx := context.Background()
	d := NewInMemoryDispatcher()

	calls := 0
	sub := d.Subscribe(EventSessionEnded, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(ctx, Event{Type: EventSessionEnded}))
	d.Unsubscribe(sub)
	require.NoError(t, d.Publish(ctx, Event{Type: EventSessionEnded}))

	assert.Equal(t, 1, calls)

	// Unsubscribing twice is a no-op.
	d.Unsubscribe(sub)
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	d := NewInMemoryDispatcher()

	d.Subscribe(EventActionExecuted, func(context.Context, Event) error {
		return errors.New("handler failed")
	})
	second := 0
	d.Subscribe(EventActionExecuted, func(context.Context, Event) error {
		second++
		return nil
	})

	require.NoError(t, d.Publish(ctx, Event{Type: EventActionExecuted}))
	assert.Equal(t, 1, second)
}
