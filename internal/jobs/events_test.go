package jobs

import "testing"

// TestEventBusSince verifies incremental event reads by sequence.
func TestEventBusSince(t *testing.T) {
	bus := NewEventBus(3)
	bus.Publish(Event{Type: EventTypeFile, FileName: "a.wav"})
	bus.Publish(Event{Type: EventTypeStatus, Message: "processing"})
	bus.Publish(Event{Type: EventTypeResult, ProcessingTime: 1.25})

	events := bus.Since(1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Seq != 2 || events[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", events)
	}
	if events[1].Timestamp.IsZero() {
		t.Fatal("expected publish to stamp timestamp")
	}
}

// TestEventBusCapsHistory verifies buffer limit trimming behavior.
func TestEventBusCapsHistory(t *testing.T) {
	bus := NewEventBus(2)
	bus.Publish(Event{Type: EventTypeError, Message: "1"})
	bus.Publish(Event{Type: EventTypeError, Message: "2"})
	bus.Publish(Event{Type: EventTypeError, Message: "3"})

	events := bus.Since(0)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Message != "2" || events[1].Message != "3" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

// TestEventBusEmpty returns nil before anything is published.
func TestEventBusEmpty(t *testing.T) {
	if events := NewEventBus(0).Since(0); events != nil {
		t.Fatalf("events = %+v, want nil", events)
	}
}
