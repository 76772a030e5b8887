package store

import (
	"encoding/json"
	"testing"
)

func TestEncodeKeyNumericEquivalence(t *testing.T) {
	// the same logical number must encode identically across Go types,
	// especially after a JSON round trip (int -> float64)
	equal := [][]any{
		{1, int64(1), float64(1), float32(1), uint(1), json.Number("1")},
		{0, float64(0), json.Number("0")},
		{-42, float64(-42), int32(-42)},
		{1.5, float32(1.5), json.Number("1.5")},
	}

	for _, group := range equal {
		first, err := EncodeKey(group[0])
		if err != nil {
			t.Fatalf("EncodeKey(%v) failed: %v", group[0], err)
		}
		for _, key := range group[1:] {
			encoded, err := EncodeKey(key)
			if err != nil {
				t.Fatalf("EncodeKey(%v) failed: %v", key, err)
			}
			if encoded != first {
				t.Errorf("Expected %v (%T) and %v (%T) to encode equally, got %q and %q",
					group[0], group[0], key, key, first, encoded)
			}
		}
	}
}

func TestEncodeKeyTypeTagging(t *testing.T) {
	// keys of different types must never collide, even when their textual
	// representation matches
	cases := []struct{ a, b any }{
		{"1", 1},
		{"true", true},
		{"", "s:"},
	}

	for _, c := range cases {
		encodedA, err := EncodeKey(c.a)
		if err != nil {
			t.Fatalf("EncodeKey(%v) failed: %v", c.a, err)
		}
		encodedB, err := EncodeKey(c.b)
		if err != nil {
			t.Fatalf("EncodeKey(%v) failed: %v", c.b, err)
		}
		if encodedA == encodedB {
			t.Errorf("Expected %v (%T) and %v (%T) to encode differently, both got %q",
				c.a, c.a, c.b, c.b, encodedA)
		}
	}
}

func TestEncodeKeyInvalid(t *testing.T) {
	invalid := []any{
		nil,
		[]string{"a"},
		map[string]any{"k": "v"},
		struct{}{},
	}

	for _, key := range invalid {
		if _, err := EncodeKey(key); err == nil {
			t.Errorf("Expected EncodeKey(%v) (%T) to fail", key, key)
		} else if storeErr, ok := err.(*Error); !ok || storeErr.Code != RetCInvalidKey {
			t.Errorf("Expected RetCInvalidKey for %v (%T), got %v", key, key, err)
		}
	}
}

func TestExtractKey(t *testing.T) {
	entry := Record{"id": float64(7), "name": "test"}

	key, err := ExtractKey(entry, "id")
	if err != nil {
		t.Fatalf("ExtractKey failed: %v", err)
	}
	if key != float64(7) {
		t.Errorf("Expected key 7, got %v", key)
	}

	if _, err := ExtractKey(Record{"name": "test"}, "id"); err == nil {
		t.Errorf("Expected error for record without key path field")
	}

	if _, err := ExtractKey(Record{"id": []int{1}}, "id"); err == nil {
		t.Errorf("Expected error for record with invalid key value")
	}
}
