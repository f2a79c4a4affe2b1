package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icedfool/rpi-ds-game/internal/client"
	"github.com/icedfool/rpi-ds-game/pkg/models"
)

func metric(h *Hub, key string) int64 {
	switch v := h.GetMetrics()[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return -1
}

func TestHub_DeliversOnlyToFollowers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	alice := client.NewClient("c1", "Alice", nil, h)
	bob := client.NewClient("c2", "Bob", nil, h)
	h.Register(alice)
	h.Register(bob)

	require.Eventually(t, func() bool { return h.GetClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.PlayerUpdated(ctx, models.PlayerEvent{Player: "Alice", Action: "lecture"}))
	require.Eventually(t, func() bool { return metric(h, "total_messages") == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast(models.PlayerEvent{Player: "Nobody", Action: "break"})
	h.Broadcast(models.PlayerEvent{Player: "Bob", Action: "break"})
	require.Eventually(t, func() bool { return metric(h, "total_messages") == 2 }, time.Second, 5*time.Millisecond)

	// one queued message each, nobody reads them
	for _, c := range []*client.Client{alice, bob} {
		stats := c.GetStats()
		assert.InDelta(t, 100.0/float64(stats.BufferSize), stats.BufferUtilization, 1e-9, c.ID)
	}
	assert.Equal(t, int64(2), metric(h, "total_connections"))
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	c := client.NewClient("c1", "Alice", nil, h)
	h.Register(c)
	require.Eventually(t, func() bool { return h.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.GetClientCount() == 0 }, time.Second, 5*time.Millisecond)

	assert.False(t, c.TrySend(models.ServerMessage{Type: models.MessageTypePlayerUpdate}))
}

func TestHub_RegisterAfterShutdownClosesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()

	finished := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(finished)
	}()
	cancel()
	<-finished

	c := client.NewClient("late", "Alice", nil, h)
	h.Register(c)
	h.Unregister(c)

	assert.False(t, c.TrySend(models.ServerMessage{Type: models.MessageTypePlayerUpdate}))
	assert.Equal(t, 0, h.GetClientCount())
}
