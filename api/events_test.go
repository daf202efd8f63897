package api

import (
	"testing"
	"time"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/abates/monoprice-hub/zone"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishDoesNotWaitForSlowClient(t *testing.T) {
	h := newHub(logwrap.New(discard.Discard()))

	// no writer drains this client
	slow := &client{send: make(chan zone.Event, 1)}
	h.clients[slow] = struct{}{}

	published := make(chan struct{})
	go func() {
		h.publish(zone.Event{Zone: 11})
		h.publish(zone.Event{Zone: 12})
		h.publish(zone.Event{Zone: 13})
		close(published)
	}()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a client that is not reading")
	}

	assert.Equal(t, 0, h.count())

	event, open := <-slow.send
	require.True(t, open)
	assert.Equal(t, monoprice.ZoneID(11), event.Zone)
	_, open = <-slow.send
	assert.False(t, open)

	// removing an already dropped client is a no-op
	h.remove(slow)
}
