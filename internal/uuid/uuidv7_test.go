package uuid

import (
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("produces_valid_uuids", func(t *testing.T) {
		id := New()
		if !IsValid(id) {
			t.Errorf("expected a valid UUID, got %q", id)
		}
		if id[14] != '7' {
			t.Errorf("expected version 7, got %q", id)
		}
	})

	t.Run("strictly_increasing_within_a_millisecond", func(t *testing.T) {
		// A burst far larger than one millisecond's worth of calls. Lexical
		// order of the ids must match generation order.
		prev := New()
		for i := 0; i < 5000; i++ {
			id := New()
			if id <= prev {
				t.Fatalf("id %d not after its predecessor: %q <= %q", i, id, prev)
			}
			prev = id
		}
	})
}

func TestIsValid(t *testing.T) {
	if !IsValid("0195e6f2-0000-7000-8000-000000000000") {
		t.Error("expected canonical form to validate")
	}
	if IsValid("not-a-uuid") {
		t.Error("expected garbage to be rejected")
	}
}
