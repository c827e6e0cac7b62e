package watcher

import (
	"testing"
	"time"
)

func TestDebouncer_SingleEvent(t *testing.T) {
	d := NewDebouncer(50) // 50ms debounce
	defer d.Stop()

	d.Add("config.yaml", EventModify)

	select {
	case event := <-d.Events():
		if event.Path != "config.yaml" {
			t.Errorf("expected path 'config.yaml', got %q", event.Path)
		}
		if event.Type != EventModify {
			t.Errorf("expected EventModify, got %v", event.Type)
		}
	case <-time.After(200 * time.Millisecond):
		t.Error("timed out waiting for event")
	}
}

func TestDebouncer_CoalescesSaveBurst(t *testing.T) {
	d := NewDebouncer(100)
	defer d.Stop()

	// An editor save is often several writes in quick succession
	d.Add("config.yaml", EventModify)
	d.Add("config.yaml", EventModify)
	d.Add("config.yaml", EventModify)

	eventCount := 0
	timeout := time.After(300 * time.Millisecond)

loop:
	for {
		select {
		case <-d.Events():
			eventCount++
		case <-timeout:
			break loop
		}
	}

	if eventCount != 1 {
		t.Errorf("expected 1 coalesced event, got %d", eventCount)
	}
}

func TestDebouncer_RemoveWins(t *testing.T) {
	d := NewDebouncer(100)
	defer d.Stop()

	d.Add("config.yaml", EventModify)
	d.Add("config.yaml", EventRemove)

	select {
	case event := <-d.Events():
		if event.Type != EventRemove {
			t.Errorf("expected EventRemove to win, got %v", event.Type)
		}
	case <-time.After(300 * time.Millisecond):
		t.Error("timed out waiting for event")
	}
}

func TestDebouncer_Flush(t *testing.T) {
	d := NewDebouncer(5000) // long debounce
	defer d.Stop()

	d.Add("config.yaml", EventModify)

	if d.PendingCount() != 1 {
		t.Errorf("expected 1 pending, got %d", d.PendingCount())
	}

	d.Flush()

	select {
	case event := <-d.Events():
		if event.Path != "config.yaml" {
			t.Errorf("expected path 'config.yaml', got %q", event.Path)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("flush should emit immediately")
	}

	if d.PendingCount() != 0 {
		t.Errorf("expected 0 pending after flush, got %d", d.PendingCount())
	}
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		event    EventType
		expected string
	}{
		{EventModify, "MODIFY"},
		{EventRemove, "REMOVE"},
		{EventType(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if tt.event.String() != tt.expected {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.event, tt.event.String(), tt.expected)
		}
	}
}
