package services

import (
	"math"
	"testing"

	"autotrader-analyzer/models"
	"autotrader-analyzer/utils"
)

func newTestScorer() *Scorer {
	return NewScorer(utils.NewLogger(false), DefaultWeights())
}

func car(link, price, mileage, reg string, motScore float64) *models.Car {
	return &models.Car{
		Link:         link,
		RawPrice:     price,
		RawMileage:   mileage,
		Registration: reg,
		MOTScore:     motScore,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"£7,995", 7995, true},
		{"£12,000.50", 12000.50, true},
		{"8500", 8500, true},
		{"", 0, false},
		{"POA", 0, false},
	}

	for _, tt := range tests {
		got, ok := parsePrice(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parsePrice(%q) = (%v, %v); want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseMileage(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"32,554 miles", 32554, true},
		{"8,000", 8000, true},
		{"no mileage listed", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseMileage(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseMileage(%q) = (%v, %v); want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"2018 (18 reg)", 2018, true},
		{"2021", 2021, true},
		{"(68 reg)", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseYear(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseYear(%q) = (%v, %v); want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestScoreDropsUnparseableRecords(t *testing.T) {
	s := newTestScorer()
	cars := []*models.Car{
		car("https://example.com/car-details/1", "£5,000", "40,000 miles", "2018 (18 reg)", 1),
		car("https://example.com/car-details/2", "POA", "30,000 miles", "2019 (19 reg)", 1),
	}

	ranked := s.Score(cars)
	if len(ranked) != 1 {
		t.Fatalf("ranked %d cars; want 1 (unparseable price dropped)", len(ranked))
	}
	if ranked[0].Link != "https://example.com/car-details/1" {
		t.Errorf("surviving car = %s; want car-details/1", ranked[0].Link)
	}
}

func TestScoreIdenticalColumnHasNoSignal(t *testing.T) {
	s := newTestScorer()
	cars := []*models.Car{
		car("a", "£5,000", "40,000 miles", "2018", 0),
		car("b", "£5,000", "20,000 miles", "2020", 0),
		car("c", "£5,000", "30,000 miles", "2019", 0),
	}

	ranked := s.Score(cars)
	for _, c := range ranked {
		if c.PriceScore != 0 {
			t.Errorf("%s: PriceScore = %v; want 0 for an identical price column", c.Link, c.PriceScore)
		}
		if math.IsNaN(c.TotalScore) {
			t.Errorf("%s: TotalScore is NaN", c.Link)
		}
	}
}

func TestScoreNormalizationAndWeights(t *testing.T) {
	s := newTestScorer()
	cheap := car("cheap", "£4,000", "20,000", "2020", 1)
	dear := car("dear", "£8,000", "60,000", "2016", 0)
	ranked := s.Score([]*models.Car{dear, cheap})

	if ranked[0].Link != "cheap" {
		t.Fatalf("ranked[0] = %s; want cheap", ranked[0].Link)
	}

	// cheap is best in every column: sub-scores 1, total = sum of weights
	if !almostEqual(ranked[0].TotalScore, 1.0) {
		t.Errorf("cheap TotalScore = %v; want 1.0", ranked[0].TotalScore)
	}
	if !almostEqual(ranked[1].TotalScore, 0.0) {
		t.Errorf("dear TotalScore = %v; want 0.0", ranked[1].TotalScore)
	}
}

func TestScoreRankingOrder(t *testing.T) {
	s := NewScorer(utils.NewLogger(false), Weights{Price: 0, Mileage: 0, Year: 0, MOT: 1})
	// identical numeric columns: total score is exactly the MOT score
	a := car("a", "£5,000", "30,000", "2018", 0.9)
	b := car("b", "£5,000", "30,000", "2018", 0.4)
	c := car("c", "£5,000", "30,000", "2018", 0.7)

	ranked := s.Score([]*models.Car{a, b, c})
	wantOrder := []string{"a", "c", "b"}
	for i, want := range wantOrder {
		if ranked[i].Link != want {
			t.Errorf("ranked[%d] = %s; want %s", i, ranked[i].Link, want)
		}
	}
}

func TestScoreStableForTies(t *testing.T) {
	s := NewScorer(utils.NewLogger(false), Weights{Price: 0, Mileage: 0, Year: 0, MOT: 1})
	first := car("first", "£5,000", "30,000", "2018", 0.5)
	second := car("second", "£5,000", "30,000", "2018", 0.5)

	ranked := s.Score([]*models.Car{first, second})
	if ranked[0].Link != "first" || ranked[1].Link != "second" {
		t.Errorf("tie order = [%s, %s]; want original order preserved", ranked[0].Link, ranked[1].Link)
	}
}

func TestScoreEmptyBatch(t *testing.T) {
	s := newTestScorer()
	if ranked := s.Score(nil); len(ranked) != 0 {
		t.Errorf("Score(nil) returned %d cars; want 0", len(ranked))
	}
}
