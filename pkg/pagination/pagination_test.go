package pagination

import "testing"

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor(Cursor{Seq: 42})
	got, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got == nil || got.Seq != 42 {
		t.Fatalf("unexpected cursor %+v", got)
	}

	if got, err := ParseCursor("  "); err != nil || got != nil {
		t.Fatalf("empty cursor should be the first page, got %+v %v", got, err)
	}
	if _, err := ParseCursor("!!!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCursor(EncodeCursor(Cursor{Seq: 0})); err == nil {
		t.Fatal("expected non-positive sequence to be rejected")
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(1000) != MaxLimit || NormalizeLimit(5) != 5 {
		t.Fatal("unexpected limit normalization")
	}
	if LimitWithBuffer(5) != 6 {
		t.Fatal("expected buffer of one")
	}
}
