package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventAdminLoggedIn, func(ctx context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	d.Subscribe(EventAdminLoggedOut, func(ctx context.Context, e Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	event := NewEvent(EventAdminLoggedIn, 7, "ops@example.com", nil)
	require.NoError(t, d.Publish(context.Background(), event))

	require.Len(t, got, 1)
	assert.Equal(t, event.ID, got[0].ID)
	assert.Equal(t, int64(7), got[0].AdminID)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()

	d.Subscribe(EventAdminLoginFailed, func(ctx context.Context, e Event) error {
		return errors.New("handler blew up")
	})
	delivered := false
	d.Subscribe(EventAdminLoginFailed, func(ctx context.Context, e Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventAdminLoginFailed, 0, "", nil)))
	assert.True(t, delivered)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventAdminPasswordChange, 1, "ops@example.com", nil)))
}
