package querycache

import (
	"errors"
	"testing"
)

func TestKeyEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
		want bool
	}{
		{"same path", MustKey("/api/orgs/all"), MustKey("/api/orgs/all"), true},
		{"order sensitive", MustKey("a", "b"), MustKey("b", "a"), false},
		{"int widths", MustKey("/x", 17), MustKey("/x", int64(17)), true},
		{"map order", MustKey("/x", map[string]any{"a": 1, "b": 2}), MustKey("/x", map[string]any{"b": 2, "a": 1}), true},
		{"string vs int", MustKey("/x", "17"), MustKey("/x", 17), false},
		{"extra part", MustKey("/x"), MustKey("/x", nil), false},
		{"json-decoded id", MustKey("/api/items", map[string]any{"id": 17}), MustKey("/api/items", map[string]any{"id": float64(17)}), true},
		{"integral float part", MustKey("/x", float32(3)), MustKey("/x", uint8(3)), true},
		{"nested slice", MustKey("/x", []any{1.0, "a"}), MustKey("/x", []any{1, "a"}), true},
		{"typed slice", MustKey("/x", []float64{1, 2}), MustKey("/x", []any{1, 2}), true},
		{"fractional float", MustKey("/x", 17.5), MustKey("/x", 17), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Fatalf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestKeyInvalid(t *testing.T) {
	if _, err := NewKey(); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("empty key: want ErrInvalidKey, got %v", err)
	}
	if _, err := NewKey("/x", func() {}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("func part: want ErrInvalidKey, got %v", err)
	}
	var zero Key
	if zero.Valid() {
		t.Fatalf("zero key must be invalid")
	}
}

func TestKeyPartsCopied(t *testing.T) {
	parts := []any{"/api/items", 17}
	k := MustKey(parts...)
	parts[1] = 18
	got := k.Parts()
	if got[1] != 17 {
		t.Fatalf("key aliased caller slice: %v", got)
	}
	got[0] = "mutated"
	if k.Parts()[0] != "/api/items" {
		t.Fatalf("Parts returned internal slice")
	}
}

func TestKeyString(t *testing.T) {
	if s := MustKey("/api/items", 17).String(); s != `["/api/items" 17]` {
		t.Fatalf("String = %s", s)
	}
}
