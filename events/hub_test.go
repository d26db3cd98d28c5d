package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/franchise-menu-sync/models"
)

func TestHub_DeliversToEverySubscriberInOrder(t *testing.T) {
	hub := NewHub()
	var calls []string
	hub.Subscribe(func(ctx context.Context, evt VersionCreated) error {
		calls = append(calls, "first")
		return errors.New("branch 4 failed")
	})
	hub.Subscribe(func(ctx context.Context, evt VersionCreated) error {
		calls = append(calls, "second")
		assert.Equal(t, 7, evt.Version)
		return nil
	})

	err := hub.Publish(context.Background(), VersionCreated{MasterMenuID: 1, Version: 7, ChangeType: models.ChangeItemAdded})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch 4 failed")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestHub_NoSubscribers(t *testing.T) {
	assert.NoError(t, NewHub().Publish(context.Background(), VersionCreated{Version: 1}))
}
