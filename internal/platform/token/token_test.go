package token

import (
	"strings"
	"testing"
)

func TestNewLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{1, 40, 64} {
		value, err := New(length)
		if err != nil {
			t.Fatalf("new token of length %d: %v", length, err)
		}
		if len(value) != length {
			t.Fatalf("token length = %d, want %d", len(value), length)
		}
		for _, r := range value {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("unexpected character %q in token", r)
			}
		}
	}
}

func TestNewRejectsNonPositiveLength(t *testing.T) {
	t.Parallel()

	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := New(-5); err == nil {
		t.Fatal("expected error for negative length")
	}
}

func TestNewTokensDiffer(t *testing.T) {
	t.Parallel()

	first, err := New(40)
	if err != nil {
		t.Fatalf("new first token: %v", err)
	}
	second, err := New(40)
	if err != nil {
		t.Fatalf("new second token: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens from consecutive calls")
	}
}
