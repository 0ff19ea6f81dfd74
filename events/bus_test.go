package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesOnlyMatchingType(t *testing.T) {
	bus := NewBus()
	var taskStarted, stepStarted int
	bus.Subscribe(TaskStarted, func(Event) { taskStarted++ })
	bus.Subscribe(StepStarted, func(Event) { stepStarted++ })

	bus.Emit(Event{Type: TaskStarted})
	bus.Emit(Event{Type: StepStarted})
	bus.Emit(Event{Type: StepStarted})

	assert.Equal(t, 1, taskStarted)
	assert.Equal(t, 2, stepStarted)
}

func TestSubscribeAnyReceivesEveryType(t *testing.T) {
	bus := NewBus()
	var all int
	bus.SubscribeAny(func(Event) { all++ })

	bus.Emit(Event{Type: TaskStarted})
	bus.Emit(Event{Type: StepStarted})
	bus.Emit(Event{Type: TaskCompleted})

	assert.Equal(t, 3, all)
}

func TestSpecificSubscribersRunBeforeWildcard(t *testing.T) {
	bus := NewBus()
	var order []string
	bus.SubscribeAny(func(Event) { order = append(order, "wildcard") })
	bus.Subscribe(TaskStarted, func(Event) { order = append(order, "specific") })

	bus.Emit(Event{Type: TaskStarted})

	require.Equal(t, []string{"specific", "wildcard"}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	var count int
	unsub := bus.Subscribe(TaskStarted, func(Event) { count++ })

	bus.Emit(Event{Type: TaskStarted})
	unsub()
	bus.Emit(Event{Type: TaskStarted})

	assert.Equal(t, 1, count)
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	var secondRan bool
	bus.Subscribe(TaskStarted, func(Event) { panic("boom") })
	bus.Subscribe(TaskStarted, func(Event) { secondRan = true })

	assert.NotPanics(t, func() {
		bus.Emit(Event{Type: TaskStarted})
	})
	assert.True(t, secondRan)
}

func TestHistoryIsBoundedRingBuffer(t *testing.T) {
	bus := NewBus(WithHistorySize(3))
	for i := 0; i < 5; i++ {
		bus.Emit(Event{Type: ProgressUpdate, Timestamp: time.Now()})
	}
	history := bus.History()
	assert.Len(t, history, 3)
}

func TestHistoryDefaultSizeIs100(t *testing.T) {
	bus := NewBus()
	for i := 0; i < 150; i++ {
		bus.Emit(Event{Type: ProgressUpdate})
	}
	assert.Len(t, bus.History(), 100)
}

func TestEventOrderingWithinOneSubscriber(t *testing.T) {
	bus := NewBus()
	var seen []Type
	bus.SubscribeAny(func(e Event) { seen = append(seen, e.Type) })

	sequence := []Type{TaskStarted, StepStarted, StepCompleted, ProgressUpdate, TaskCompleted}
	for _, typ := range sequence {
		bus.Emit(Event{Type: typ})
	}

	assert.Equal(t, sequence, seen)
}
