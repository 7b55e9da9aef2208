package util

import (
	"testing"
	"time"
)

func TestDayWindow(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	from, to := DayWindow(now, 7)
	if to != "2026-08-30" {
		t.Fatalf("to = %q", to)
	}
	if from != "2026-08-23" {
		t.Fatalf("from = %q", from)
	}
}

func TestParseDay(t *testing.T) {
	d, ok := ParseDay("2026-08-30")
	if !ok {
		t.Fatalf("expected ok")
	}
	if d.Format(DateLayout) != "2026-08-30" {
		t.Fatalf("unexpected day %v", d)
	}
	if _, ok := ParseDay("30/08/2026"); ok {
		t.Fatalf("expected parse failure")
	}
}

func TestUnixToDay(t *testing.T) {
	sec := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC).Unix()
	if got := UnixToDay(sec); got != "2026-08-28" {
		t.Fatalf("seconds: %q", got)
	}
	if got := UnixToDay(sec * 1000); got != "2026-08-28" {
		t.Fatalf("milliseconds: %q", got)
	}
}
