package util

import "testing"

func TestHashUserKey(t *testing.T) {
	id := "alice/x"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable key, got %s", got)
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("key contains non-hex character: %c", ch)
		}
	}
}

func TestHashUserKeySeparatesSanitizedCollisions(t *testing.T) {
	ids := []string{"alice/x", "alice_x", "alice x", "alice:x", " alice_x"}
	seen := make(map[string]string, len(ids))
	for _, id := range ids {
		if SanitizePathSegment(id) != "alice_x" {
			t.Fatalf("expected %q to sanitize to alice_x", id)
		}
		key := HashUserKey(id)
		if prev, ok := seen[key]; ok {
			t.Fatalf("%q and %q share key %s", prev, id, key)
		}
		seen[key] = id
	}
}
