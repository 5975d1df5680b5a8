package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvTimeout(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishToTopic(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	ch := p.Subscribe("tasks")
	p.Publish(New(TypeTaskCreated, "tasks", TaskChange{TaskID: 1}))

	ev := recvTimeout(t, ch)
	assert.Equal(t, TypeTaskCreated, ev.Type)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Time.IsZero())
}

func TestGlobalSubscriberSeesEverything(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	global := p.Subscribe(GlobalTopic)
	p.Publish(New(TypeTaskDeleted, "tasks", nil))
	p.Publish(New(TypeStateChanged, "state", nil))

	assert.Equal(t, TypeTaskDeleted, recvTimeout(t, global).Type)
	assert.Equal(t, TypeStateChanged, recvTimeout(t, global).Type)
}

func TestTopicIsolation(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	deps := p.Subscribe("dependencies")
	p.Publish(New(TypeTaskUpdated, "tasks", nil))

	select {
	case ev := <-deps:
		t.Fatalf("unexpected event on other topic: %v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNonBlockingPublish(t *testing.T) {
	p := NewMemoryPublisher(WithBufferSize(1))
	defer p.Close()

	ch := p.Subscribe("state")
	p.Publish(New(TypeStateChanged, "state", 1))
	// Buffer full; this publish must not block.
	done := make(chan struct{})
	go func() {
		p.Publish(New(TypeStateChanged, "state", 2))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}

	ev := recvTimeout(t, ch)
	assert.Equal(t, 1, ev.Data, "first event kept, overflow dropped")
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	ch := p.Subscribe("tasks")
	p.Unsubscribe("tasks", ch)

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	p.Publish(New(TypeTaskCreated, "tasks", nil))
}

func TestCloseShutsDownSubscribers(t *testing.T) {
	p := NewMemoryPublisher()
	a := p.Subscribe("tasks")
	b := p.Subscribe(GlobalTopic)

	p.Close()

	_, open := <-a
	require.False(t, open)
	_, open = <-b
	require.False(t, open)

	// Subscribe after close yields a closed channel.
	c := p.Subscribe("tasks")
	_, open = <-c
	assert.False(t, open)
}
