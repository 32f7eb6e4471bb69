package services

import (
	"testing"
	"time"

	"github.com/lymphly/vps-ai-bridge/internal/models"
)

const testAssetBase = "https://assets.example.com/routines/"

func TestBuildRoutineProtocol(t *testing.T) {
	date := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC) // Wednesday

	tests := []struct {
		score        int
		wantScore    int
		wantProtocol models.Protocol
		wantMinutes  int
	}{
		{score: 100, wantScore: 100, wantProtocol: models.ProtocolDeepDrainage, wantMinutes: 12},
		{score: 70, wantScore: 70, wantProtocol: models.ProtocolDeepDrainage, wantMinutes: 12},
		{score: 69, wantScore: 69, wantProtocol: models.ProtocolStandardDrainage, wantMinutes: 9},
		{score: 40, wantScore: 40, wantProtocol: models.ProtocolStandardDrainage, wantMinutes: 9},
		{score: 39, wantScore: 39, wantProtocol: models.ProtocolQuickSculpt, wantMinutes: 6},
		{score: -20, wantScore: 0, wantProtocol: models.ProtocolQuickSculpt, wantMinutes: 6},
		{score: 500, wantScore: 100, wantProtocol: models.ProtocolDeepDrainage, wantMinutes: 12},
	}

	for _, tt := range tests {
		r := BuildRoutine(tt.score, date, models.LocaleEN, testAssetBase)
		if r.AverageScore != tt.wantScore {
			t.Errorf("score %d: AverageScore = %d, want %d", tt.score, r.AverageScore, tt.wantScore)
		}
		if r.Protocol != tt.wantProtocol {
			t.Errorf("score %d: Protocol = %s, want %s", tt.score, r.Protocol, tt.wantProtocol)
		}
		if r.DurationMinutes != tt.wantMinutes {
			t.Errorf("score %d: DurationMinutes = %d, want %d", tt.score, r.DurationMinutes, tt.wantMinutes)
		}
	}
}

func TestBuildRoutineVariantByWeekday(t *testing.T) {
	// 2026-10-11 is a Sunday.
	sunday := time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		date := sunday.AddDate(0, 0, i)
		r := BuildRoutine(50, date, models.LocaleEN, testAssetBase)
		if r.Variant != models.WeekdayVariants[i] {
			t.Errorf("%s: Variant = %s, want %s", date.Weekday(), r.Variant, models.WeekdayVariants[i])
		}
		if r.Date != date.Format(RoutineDateLayout) {
			t.Errorf("Date = %s, want %s", r.Date, date.Format(RoutineDateLayout))
		}
	}
}

func TestBuildRoutineDeterministic(t *testing.T) {
	date := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	a := BuildRoutine(72, date, models.LocaleES, testAssetBase)
	b := BuildRoutine(72, date, models.LocaleES, testAssetBase)
	if a != b {
		t.Errorf("BuildRoutine not deterministic: %+v vs %+v", a, b)
	}

	want := "https://assets.example.com/routines/lymphatic_deep_drainage/weekend_reset.mp4"
	if a.VideoURL != want {
		t.Errorf("VideoURL = %s, want %s", a.VideoURL, want)
	}
	if a.Title != "Reinicio de fin de semana · Drenaje linfático profundo" {
		t.Errorf("Title = %q", a.Title)
	}
}

func TestRoutineTitleTablesComplete(t *testing.T) {
	protocols := []models.Protocol{models.ProtocolDeepDrainage, models.ProtocolStandardDrainage, models.ProtocolQuickSculpt}

	for _, l := range models.SupportedLocales() {
		for _, p := range protocols {
			if protocolTitles[l][p] == "" {
				t.Errorf("missing protocol title %s/%s", l, p)
			}
		}
		for _, v := range models.WeekdayVariants {
			if variantTitles[l][v] == "" {
				t.Errorf("missing variant title %s/%s", l, v)
			}
		}
	}
}

func TestBuildRoutineUnsupportedLocale(t *testing.T) {
	r := BuildRoutine(10, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), models.Locale("xx"), testAssetBase)
	if r.Locale != models.LocaleEN {
		t.Errorf("Locale = %s, want en", r.Locale)
	}
	if r.Title == "" {
		t.Error("Title should not be empty")
	}
}

func TestParseRoutineDate(t *testing.T) {
	d, err := ParseRoutineDate(" 2026-10-14 ")
	if err != nil {
		t.Fatalf("ParseRoutineDate() error = %v", err)
	}
	if d.Location() != time.UTC || d.Weekday() != time.Wednesday {
		t.Errorf("ParseRoutineDate() = %v (%s)", d, d.Weekday())
	}

	for _, bad := range []string{"", "2026/10/14", "14-10-2026", "2026-13-01"} {
		if _, err := ParseRoutineDate(bad); err == nil {
			t.Errorf("ParseRoutineDate(%q) expected error", bad)
		}
	}
}
