package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2024-02-14")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, s := range []string{"", "2024/02/14", "14-02-2024", "2024-13-01"} {
		if _, ok := ParseDate(s); ok {
			t.Fatalf("expected failure for %q", s)
		}
	}
}
