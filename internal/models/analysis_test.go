package models

import (
	"testing"
	"time"
)

func TestStatusAndProtocolForScore(t *testing.T) {
	tests := []struct {
		score    int
		status   RetentionStatus
		protocol Protocol
		minutes  int
	}{
		{0, RetentionLow, ProtocolQuickSculpt, 6},
		{39, RetentionLow, ProtocolQuickSculpt, 6},
		{40, RetentionModerate, ProtocolStandardDrainage, 9},
		{69, RetentionModerate, ProtocolStandardDrainage, 9},
		{70, RetentionHigh, ProtocolDeepDrainage, 12},
		{100, RetentionHigh, ProtocolDeepDrainage, 12},
	}

	for _, tt := range tests {
		if got := StatusForScore(tt.score); got != tt.status {
			t.Errorf("StatusForScore(%d) = %s, want %s", tt.score, got, tt.status)
		}
		p := ProtocolForScore(tt.score)
		if p != tt.protocol {
			t.Errorf("ProtocolForScore(%d) = %s, want %s", tt.score, p, tt.protocol)
		}
		if p.DurationMinutes() != tt.minutes {
			t.Errorf("%s.DurationMinutes() = %d, want %d", p, p.DurationMinutes(), tt.minutes)
		}
	}
}

// Every score in range must agree between status and protocol thresholds.
func TestStatusProtocolAgreeForAllScores(t *testing.T) {
	for s := MinScore; s <= MaxScore; s++ {
		status := StatusForScore(s)
		protocol := ProtocolForScore(s)

		switch {
		case s >= 70:
			if status != RetentionHigh || protocol != ProtocolDeepDrainage {
				t.Fatalf("score %d: got %s/%s", s, status, protocol)
			}
		case s >= 40:
			if status != RetentionModerate || protocol != ProtocolStandardDrainage {
				t.Fatalf("score %d: got %s/%s", s, status, protocol)
			}
		default:
			if status != RetentionLow || protocol != ProtocolQuickSculpt {
				t.Fatalf("score %d: got %s/%s", s, status, protocol)
			}
		}
	}
}

func TestLocaleIsSupported(t *testing.T) {
	for _, l := range SupportedLocales() {
		if !l.IsSupported() {
			t.Errorf("%s should be supported", l)
		}
	}
	for _, l := range []Locale{"", "EN", "xx", "zh-TW", "pt"} {
		if l.IsSupported() {
			t.Errorf("%q should not be supported", l)
		}
	}
}

func TestWeekdayVariantsSundayFirst(t *testing.T) {
	if WeekdayVariants[time.Sunday] != VariantRecoveryFlow {
		t.Errorf("Sunday variant = %s, want %s", WeekdayVariants[time.Sunday], VariantRecoveryFlow)
	}
	if WeekdayVariants[time.Saturday] != VariantWeekendReset {
		t.Errorf("Saturday variant = %s, want %s", WeekdayVariants[time.Saturday], VariantWeekendReset)
	}

	seen := make(map[RoutineVariant]bool)
	for _, v := range WeekdayVariants {
		if seen[v] {
			t.Errorf("variant %s appears twice", v)
		}
		seen[v] = true
	}
}

func TestAnalysisCacheIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fresh := AnalysisCache{ExpiresAt: now.Add(time.Minute)}
	if fresh.IsExpired(now) {
		t.Error("entry expiring in the future should not be expired")
	}

	stale := AnalysisCache{ExpiresAt: now.Add(-time.Minute)}
	if !stale.IsExpired(now) {
		t.Error("entry expired a minute ago should be expired")
	}
}
