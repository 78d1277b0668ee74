package services

import (
	"testing"

	"autotrader-analyzer/models"
	"autotrader-analyzer/utils"
)

func rankedSample() []*models.Car {
	return []*models.Car{
		{Name: "Ford Fiesta", Price: 7995, Location: "Leeds", Plate: "AB12 CDE",
			MOT: &models.MOTRecord{}, TotalScore: 0.91},
		{Name: "Vauxhall Corsa", Price: 6500, Location: "Leeds", Plate: "XY34 FGH",
			TotalScore: 0.74},
		{Name: "VW Golf", Price: 11200, Location: "York", Plate: models.NoPlate,
			TotalScore: 0.42},
	}
}

func TestReportCounts(t *testing.T) {
	svc := NewReportService(utils.NewLogger(false))
	r := svc.Generate(rankedSample())

	if r.TotalCars != 3 {
		t.Errorf("TotalCars = %d; want 3", r.TotalCars)
	}
	if r.PlatesResolved != 2 {
		t.Errorf("PlatesResolved = %d; want 2", r.PlatesResolved)
	}
	if r.HistoriesFound != 1 {
		t.Errorf("HistoriesFound = %d; want 1", r.HistoriesFound)
	}
}

func TestReportPrices(t *testing.T) {
	svc := NewReportService(utils.NewLogger(false))
	r := svc.Generate(rankedSample())

	if r.MinPrice != 6500 {
		t.Errorf("MinPrice = %v; want 6500", r.MinPrice)
	}
	if r.MaxPrice != 11200 {
		t.Errorf("MaxPrice = %v; want 11200", r.MaxPrice)
	}
	if r.AveragePrice != 8565 {
		t.Errorf("AveragePrice = %v; want 8565", r.AveragePrice)
	}
}

func TestReportTopRankedAndLocations(t *testing.T) {
	svc := NewReportService(utils.NewLogger(false))
	r := svc.Generate(rankedSample())

	if len(r.TopRanked) != 3 {
		t.Errorf("TopRanked len = %d; want 3", len(r.TopRanked))
	}
	if r.TopRanked[0].Name != "Ford Fiesta" {
		t.Errorf("TopRanked[0] = %q; want Ford Fiesta", r.TopRanked[0].Name)
	}
	if r.CarsByLocation["Leeds"] != 2 {
		t.Errorf("Leeds count = %d; want 2", r.CarsByLocation["Leeds"])
	}
}

func TestReportEmptyInput(t *testing.T) {
	svc := NewReportService(utils.NewLogger(false))
	r := svc.Generate(nil)
	if r.TotalCars != 0 {
		t.Errorf("expected empty report for empty input")
	}
}
