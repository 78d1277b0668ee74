package services

import (
	"strings"

	"autotrader-analyzer/models"
)

// Comment weights: serious findings depress the score five times faster than
// minor advisories.
const (
	advisoryWeight = 2
	seriousWeight  = 5
)

// MOTScore converts a history record into a condition score in [0,1]. A nil
// record (unknown plate or exhausted fetch) scores 0. Otherwise every comment containing
// "ADVISORY" costs 2 points and every comment containing "FAIL" or
// "IMPORTANT" costs 5, off a base of 100, saturating at 0.
func MOTScore(record *models.MOTRecord) float64 {
	if record == nil {
		return 0
	}

	advisories, serious := 0, 0
	for _, entry := range record.History {
		for _, comment := range entry.Comments {
			upper := strings.ToUpper(comment)
			if strings.Contains(upper, "ADVISORY") {
				advisories++
			}
			if strings.Contains(upper, "FAIL") || strings.Contains(upper, "IMPORTANT") {
				serious++
			}
		}
	}

	raw := 100 - (advisories*advisoryWeight + serious*seriousWeight)
	if raw < 0 {
		raw = 0
	}
	return float64(raw) / 100
}
