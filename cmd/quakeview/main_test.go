package main

import (
	"testing"
	"time"

	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/timeline"
)

func TestParseWindow_EndCoversWholeDay(t *testing.T) {
	sel, err := parseWindow("2024-01-01", "2024-01-31", time.UTC)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	ds := quake.Dataset{
		{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Place: "first instant"},
		{Time: time.Date(2024, 1, 31, 18, 45, 0, 0, time.UTC), Place: "last day evening"},
		{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Place: "next day"},
	}
	got := timeline.FilterByRange(ds, sel.Start, sel.End)
	if len(got) != 2 {
		t.Fatalf("expected 2 records in window, got %d", len(got))
	}
	if got[1].Place != "last day evening" {
		t.Errorf("expected the evening of the end date to be kept, got %q", got[1].Place)
	}
}

func TestParseWindow_SameDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	sel, err := parseWindow("2024-03-08", "2024-03-08", loc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !sel.Contains(time.Date(2024, 3, 8, 23, 59, 59, 0, loc)) {
		t.Error("expected the end of the day to be inside the window")
	}
	if sel.Contains(time.Date(2024, 3, 9, 0, 0, 0, 0, loc)) {
		t.Error("expected the following midnight to be outside the window")
	}
}

func TestParseWindow_Errors(t *testing.T) {
	if sel, err := parseWindow("", "", time.UTC); sel != nil || err != nil {
		t.Errorf("expected no window, got %v, %v", sel, err)
	}
	if _, err := parseWindow("2024-02-01", "2024-01-31", time.UTC); err == nil {
		t.Error("expected error for end before start")
	}
	if _, err := parseWindow("01/02/2024", "", time.UTC); err == nil {
		t.Error("expected error for bad date")
	}
}
