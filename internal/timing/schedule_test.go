// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package timing

import (
	"testing"
	"time"
)

func TestGenerateScheduleRange(t *testing.T) {
	e, _ := testEngine(t)

	t.Run("spanning today", func(t *testing.T) {
		buckets := e.GenerateScheduleRange("1_days_ago", "1_days_forward")
		if len(buckets) != 3 {
			t.Fatalf("got %d buckets, want 3", len(buckets))
		}
		labels := []string{"1_days_ago", "today", "1_days_forward"}
		for i, want := range labels {
			if buckets[i].DateLabel != want {
				t.Errorf("bucket %d label = %q, want %q", i, buckets[i].DateLabel, want)
			}
		}
	})

	t.Run("single day", func(t *testing.T) {
		buckets := e.GenerateScheduleRange("today", "today")
		if len(buckets) != 1 {
			t.Fatalf("got %d buckets, want 1", len(buckets))
		}
		// fixedNow is July 15; "today" spans the whole local day.
		if buckets[0].Date != "15.07.2026" {
			t.Errorf("date = %q, want 15.07.2026", buckets[0].Date)
		}
	})

	t.Run("full vocabulary", func(t *testing.T) {
		buckets := e.GenerateScheduleRange("7_days_ago", "7_days_forward")
		if len(buckets) != 15 {
			t.Fatalf("got %d buckets, want 15", len(buckets))
		}
	})

	t.Run("reversed range is empty", func(t *testing.T) {
		if buckets := e.GenerateScheduleRange("today", "1_days_ago"); len(buckets) != 0 {
			t.Errorf("got %d buckets, want 0", len(buckets))
		}
	})

	t.Run("unknown label is empty", func(t *testing.T) {
		if buckets := e.GenerateScheduleRange("yesterday", "today"); len(buckets) != 0 {
			t.Errorf("got %d buckets, want 0", len(buckets))
		}
	})
}

func TestScheduleBucketsContiguous(t *testing.T) {
	e, _ := testEngine(t)

	buckets := e.GenerateScheduleRange("2_days_ago", "2_days_forward")
	if len(buckets) != 5 {
		t.Fatalf("got %d buckets, want 5", len(buckets))
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i].Start != buckets[i-1].End {
			t.Errorf("gap between %q and %q: %d != %d",
				buckets[i-1].DateLabel, buckets[i].DateLabel, buckets[i-1].End, buckets[i].Start)
		}
	}

	// The today bucket spans the whole local day regardless of the instant
	// the windows were built at.
	today := buckets[2]
	if got := time.UnixMilli(today.Start).UTC(); got.Hour() != 0 {
		t.Errorf("today starts at %v, want local midnight", got)
	}
	if today.End-today.Start != int64(24*time.Hour/time.Millisecond) {
		t.Errorf("today spans %d ms, want 24h", today.End-today.Start)
	}
}

func TestKnownFilter(t *testing.T) {
	tests := []struct {
		filter string
		want   bool
	}{
		{"today", true},
		{"live_now", true},
		{"live", true},
		{"3h", true},
		{"24h", true},
		{"3_days_forward", true},
		{"3_days_forward_live", true},
		{"5_days_ago", true},
		{"today_coming_live", true},
		{"all", true},
		{"", false},
		{"yesterday", false},
		{"8_days_forward", false},
	}
	for _, tt := range tests {
		if got := KnownFilter(tt.filter); got != tt.want {
			t.Errorf("KnownFilter(%q) = %v, want %v", tt.filter, got, tt.want)
		}
	}
}
