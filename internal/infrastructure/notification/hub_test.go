package notification

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.Messages():
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestHub_Broadcast(t *testing.T) {
	t.Run("delivers to every client", func(t *testing.T) {
		hub := NewHub(WithHeartbeat(0))
		a, err := hub.Subscribe()
		require.NoError(t, err)
		b, err := hub.Subscribe()
		require.NoError(t, err)

		payload := map[string]string{"id": "o-1", "status": "completed"}
		require.NoError(t, hub.Broadcast(context.Background(), "orderCompleted", payload))

		for _, c := range []*Client{a, b} {
			msg := receive(t, c)
			assert.Equal(t, "orderCompleted", msg.Event)
			assert.NotEmpty(t, msg.ID)

			var got map[string]string
			require.NoError(t, json.Unmarshal([]byte(msg.Data), &got))
			assert.Equal(t, payload, got)
		}
	})

	t.Run("no clients is not an error", func(t *testing.T) {
		hub := NewHub(WithHeartbeat(0))
		assert.NoError(t, hub.Broadcast(context.Background(), "orderFailed", struct{}{}))
	})

	t.Run("unmarshalable payload returns error", func(t *testing.T) {
		hub := NewHub(WithHeartbeat(0))
		err := hub.Broadcast(context.Background(), "orderFailed", make(chan int))
		assert.Error(t, err)
	})

	t.Run("slow client drops instead of blocking", func(t *testing.T) {
		hub := NewHub(WithHeartbeat(0))
		_, err := hub.Subscribe()
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			for i := 0; i < clientBufferSize+10; i++ {
				_ = hub.Broadcast(context.Background(), "orderCompleted", i)
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("broadcast blocked on a full client")
		}
		assert.Equal(t, uint64(10), hub.Dropped())
	})

	t.Run("message ids increase", func(t *testing.T) {
		hub := NewHub(WithHeartbeat(0))
		c, err := hub.Subscribe()
		require.NoError(t, err)

		hub.BroadcastRaw("orderCompleted", []byte(`{}`))
		hub.BroadcastRaw("orderFailed", []byte(`{}`))

		assert.Equal(t, "1", receive(t, c).ID)
		assert.Equal(t, "2", receive(t, c).ID)
	})
}

func TestHub_Subscribe(t *testing.T) {
	t.Run("enforces max clients", func(t *testing.T) {
		hub := NewHub(WithHeartbeat(0), WithMaxClients(1))
		first, err := hub.Subscribe()
		require.NoError(t, err)

		_, err = hub.Subscribe()
		assert.ErrorIs(t, err, ErrTooManyClients)

		hub.Unsubscribe(first)
		_, err = hub.Subscribe()
		assert.NoError(t, err)
	})

	t.Run("unsubscribe closes channel once", func(t *testing.T) {
		hub := NewHub(WithHeartbeat(0))
		c, err := hub.Subscribe()
		require.NoError(t, err)
		assert.Equal(t, 1, hub.ClientCount())

		hub.Unsubscribe(c)
		hub.Unsubscribe(c)

		_, ok := <-c.Messages()
		assert.False(t, ok)
		assert.Equal(t, 0, hub.ClientCount())
	})

	t.Run("stop disconnects clients and rejects new ones", func(t *testing.T) {
		hub := NewHub(WithHeartbeat(0))
		c, err := hub.Subscribe()
		require.NoError(t, err)

		hub.Stop()
		hub.Stop()

		_, ok := <-c.Messages()
		assert.False(t, ok)
		_, err = hub.Subscribe()
		assert.ErrorIs(t, err, ErrHubClosed)
		hub.Unsubscribe(c)
	})
}

func TestHub_ConcurrentBroadcastAndUnsubscribe(t *testing.T) {
	hub := NewHub(WithHeartbeat(0))
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		c, err := hub.Subscribe()
		require.NoError(t, err)
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				select {
				case <-c.Messages():
				case <-time.After(10 * time.Millisecond):
				}
			}
			hub.Unsubscribe(c)
		}(c)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = hub.Broadcast(context.Background(), "orderCompleted", i)
		}
	}()

	wg.Wait()
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_Heartbeat(t *testing.T) {
	hub := NewHub(WithHeartbeat(20 * time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer hub.Stop()

	c, err := hub.Subscribe()
	require.NoError(t, err)
	hub.Start(ctx)

	msg := receive(t, c)
	assert.Equal(t, EventHeartbeat, msg.Event)
	assert.Contains(t, msg.Data, "timestamp")
}
