package control

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tramhao/termusic-sub005/internal/player"
)

func TestBusDispatchesToMatchingKindOnly(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	var gotTrack, gotStatus int

	b.Subscribe(player.EventTrackChanged, func(ev player.UpdateEvent) {
		mu.Lock()
		gotTrack++
		mu.Unlock()
	})
	b.Subscribe(player.EventStatusChanged, func(ev player.UpdateEvent) {
		mu.Lock()
		gotStatus++
		mu.Unlock()
	})

	b.publish(player.UpdateEvent{Kind: player.EventTrackChanged})
	b.publish(player.UpdateEvent{Kind: player.EventStatusChanged})
	b.publish(player.UpdateEvent{Kind: player.EventStatusChanged})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotTrack == 1 && gotStatus == 2
	}, time.Second, time.Millisecond)
}

func TestBusWildcardSubscriberSeesEveryKind(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	var count int
	b.Subscribe("", func(ev player.UpdateEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	b.publish(player.UpdateEvent{Kind: player.EventVolumeChanged})
	b.publish(player.UpdateEvent{Kind: player.EventSpeedChanged})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 2
	}, time.Second, time.Millisecond)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	var count int
	b.Subscribe(player.EventTrackChanged, func(ev player.UpdateEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	b.Unsubscribe(player.EventTrackChanged)
	b.publish(player.UpdateEvent{Kind: player.EventTrackChanged})

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 0, count)
}

// This exercises the same drain-and-republish loop Pump runs, without
// constructing a full player.Core (which needs a live library collaborator
// and output device) just to get an events channel to range over.
func TestBusDrainLoopRepublishesEachEvent(t *testing.T) {
	events := make(chan player.UpdateEvent, 1)
	events <- player.UpdateEvent{Kind: player.EventStatusChanged}
	close(events)

	b := NewBus()
	var mu sync.Mutex
	var seen string
	b.Subscribe(player.EventStatusChanged, func(ev player.UpdateEvent) {
		mu.Lock()
		seen = ev.Kind
		mu.Unlock()
	})

	for ev := range events {
		b.publish(ev)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen == player.EventStatusChanged
	}, time.Second, time.Millisecond)
}
