package entity

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeDate_Representations(t *testing.T) {
	want := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
	}{
		{"native time", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"rfc3339 string", "2024-03-15T10:30:00Z"},
		{"rfc3339 with offset", "2024-03-15T12:30:00+02:00"},
		{"timestamp object", map[string]any{"seconds": float64(1710498600), "nanoseconds": float64(0)}},
		{"underscore timestamp object", map[string]any{"_seconds": float64(1710498600)}},
		{"epoch seconds float", float64(1710498600)},
		{"epoch seconds int64", int64(1710498600)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate("createdAt", tt.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("got %v, want %v", got, want)
			}
			if got.Location() != time.UTC {
				t.Errorf("expected UTC, got %v", got.Location())
			}
		})
	}
}

func TestNormalizeDate_DateOnlyString(t *testing.T) {
	got, err := NormalizeDate("date", "2024-12-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeDate_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"garbage string", "not a date"},
		{"empty string", ""},
		{"bool", true},
		{"object without seconds", map[string]any{"nanoseconds": float64(5)}},
		{"slice", []any{"2024-03-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeDate("updatedAt", tt.value)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var mde *MalformedDateError
			if !errors.As(err, &mde) {
				t.Fatalf("expected MalformedDateError, got %T", err)
			}
			if mde.Field != "updatedAt" {
				t.Errorf("expected field 'updatedAt', got %q", mde.Field)
			}
		})
	}
}

func TestNormalizeDate_Idempotent(t *testing.T) {
	// Normalizing an already-normalized value must be a fixed point for
	// every supported representation.
	inputs := []any{
		"2024-03-15T10:30:00Z",
		map[string]any{"seconds": float64(1710498600)},
		time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
	}

	for _, in := range inputs {
		first, err := NormalizeDate("d", in)
		if err != nil {
			t.Fatalf("first pass: %v", err)
		}
		second, err := NormalizeDate("d", first)
		if err != nil {
			t.Fatalf("second pass: %v", err)
		}
		if !first.Equal(second) {
			t.Errorf("not idempotent: %v != %v", first, second)
		}
	}
}

func TestOptionalDateField(t *testing.T) {
	doc := Document{"dueDate": nil}

	got, err := optionalDateField(doc, "dueDate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for explicit null, got %v", got)
	}

	got, err = optionalDateField(doc, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing field, got %v", got)
	}
}
