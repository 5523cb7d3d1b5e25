package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewInMemoryBus()
	var got []any

	id := b.Subscribe(TopicBoxOffice, func(e Event) {
		assert.Equal(t, TopicBoxOffice, e.Topic)
		got = append(got, e.Payload)
	})
	b.Subscribe(TopicTVRatings, func(Event) { t.Error("wrong topic delivered") })

	b.Publish(TopicBoxOffice, 1)
	b.Publish(TopicBoxOffice, 2)
	assert.Equal(t, []any{1, 2}, got)
	assert.Equal(t, 1, b.Subscribers(TopicBoxOffice))

	b.Unsubscribe(TopicBoxOffice, id)
	b.Publish(TopicBoxOffice, 3)
	assert.Equal(t, []any{1, 2}, got)
	assert.Zero(t, b.Subscribers(TopicBoxOffice))
}

func TestBus_UnsubscribeKeepsOthers(t *testing.T) {
	b := NewInMemoryBus()
	var a, c int
	idA := b.Subscribe(TopicTVRatings, func(Event) { a++ })
	b.Subscribe(TopicTVRatings, func(Event) { c++ })

	b.Unsubscribe(TopicTVRatings, idA)
	b.Unsubscribe(TopicTVRatings, "unknown")
	b.Publish(TopicTVRatings, nil)

	assert.Zero(t, a)
	assert.Equal(t, 1, c)
}

func TestBus_UniqueIDs(t *testing.T) {
	b := NewInMemoryBus()
	id1 := b.Subscribe(TopicBoxOffice, func(Event) {})
	id2 := b.Subscribe(TopicBoxOffice, func(Event) {})
	assert.NotEqual(t, id1, id2)
}
