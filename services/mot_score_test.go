package services

import (
	"testing"

	"autotrader-analyzer/models"
)

func historyWith(comments ...[]string) *models.MOTRecord {
	rec := &models.MOTRecord{Expiry: "1 January 2026"}
	for _, c := range comments {
		rec.History = append(rec.History, models.MOTEntry{
			TestDate:   "1 January 2024",
			Mileage:    "40,000",
			ExpiryDate: "1 January 2025",
			Comments:   c,
		})
	}
	return rec
}

func TestMOTScoreUnknownHistory(t *testing.T) {
	if got := MOTScore(nil); got != 0 {
		t.Errorf("MOTScore(nil) = %v; want 0", got)
	}
}

func TestMOTScoreCleanHistory(t *testing.T) {
	rec := historyWith([]string{}, []string{})
	if got := MOTScore(rec); got != 1.0 {
		t.Errorf("MOTScore(clean) = %v; want 1.0", got)
	}
}

func TestMOTScoreSingleAdvisory(t *testing.T) {
	rec := historyWith([]string{"ADVISORY: Tyre worn close to legal limit"})
	if got := MOTScore(rec); got != 0.98 {
		t.Errorf("MOTScore(one advisory) = %v; want 0.98", got)
	}
}

func TestMOTScoreSeriousWeighsFiveTimes(t *testing.T) {
	rec := historyWith([]string{"FAIL: Brake pipe corroded"})
	if got := MOTScore(rec); got != 0.95 {
		t.Errorf("MOTScore(one fail) = %v; want 0.95", got)
	}

	rec = historyWith([]string{"Important: monitor and repair if necessary"})
	if got := MOTScore(rec); got != 0.95 {
		t.Errorf("MOTScore(one important, mixed case) = %v; want 0.95", got)
	}
}

func TestMOTScoreClampsAtZero(t *testing.T) {
	var comments []string
	for i := 0; i < 25; i++ {
		comments = append(comments, "ADVISORY: something minor")
	}
	// 25 advisories alone cost 50 points; the serious ones push raw below zero
	for i := 0; i < 15; i++ {
		comments = append(comments, "FAIL: something serious")
	}
	rec := historyWith(comments)
	if got := MOTScore(rec); got != 0 {
		t.Errorf("MOTScore(overloaded history) = %v; want 0 (clamped)", got)
	}
}

func TestMOTScoreCountsAcrossEntries(t *testing.T) {
	rec := historyWith(
		[]string{"ADVISORY: Oil leak"},
		[]string{"ADVISORY: Wiper smearing"},
	)
	if got := MOTScore(rec); got != 0.96 {
		t.Errorf("MOTScore(two entries, one advisory each) = %v; want 0.96", got)
	}
}
