package services

import (
	"fmt"
	"sort"
	"strings"

	"autotrader-analyzer/models"
	"autotrader-analyzer/utils"
)

// RunReport holds the summary computed over the ranked batch.
type RunReport struct {
	TotalCars      int
	PlatesResolved int
	HistoriesFound int
	AveragePrice   float64
	MinPrice       float64
	MaxPrice       float64
	TopRanked      []*models.Car
	CarsByLocation map[string]int
}

// ReportService summarises a completed run.
type ReportService struct {
	logger *utils.Logger
}

// NewReportService creates a ReportService with the given logger.
func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate computes the run summary from the ranked batch.
func (s *ReportService) Generate(cars []*models.Car) *RunReport {
	report := &RunReport{CarsByLocation: make(map[string]int)}
	if len(cars) == 0 {
		return report
	}

	report.TotalCars = len(cars)
	report.MinPrice = cars[0].Price
	report.MaxPrice = cars[0].Price

	var total float64
	for _, c := range cars {
		if c.Plate != models.NoPlate {
			report.PlatesResolved++
		}
		if c.MOT != nil {
			report.HistoriesFound++
		}
		total += c.Price
		if c.Price < report.MinPrice {
			report.MinPrice = c.Price
		}
		if c.Price > report.MaxPrice {
			report.MaxPrice = c.Price
		}
		if c.Location != "" && c.Location != "N/A" {
			report.CarsByLocation[c.Location]++
		}
	}
	report.AveragePrice = round2(total / float64(len(cars)))

	// cars arrive already sorted by total score
	if len(cars) > 5 {
		report.TopRanked = cars[:5]
	} else {
		report.TopRanked = cars
	}

	return report
}

// Print renders the summary to stdout.
func (s *ReportService) Print(r *RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🚗 AUTOTRADER RUN SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Cars ranked       : \033[1m%d\033[0m\n", r.TotalCars)
	fmt.Printf("  Plates resolved   : \033[1m%d\033[0m\n", r.PlatesResolved)
	fmt.Printf("  MOT histories     : \033[1m%d\033[0m\n", r.HistoriesFound)
	fmt.Println()

	fmt.Printf("\033[1;33m  Price Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.TotalCars > 0 {
		fmt.Printf("  Average price : \033[1;32m£%.2f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32m£%.2f\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32m£%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Top 5 Ranked Cars\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopRanked) == 0 {
		fmt.Printf("  No ranked cars\n")
	} else {
		for i, c := range r.TopRanked {
			name := truncate(c.Name, 36)
			fmt.Printf("  \033[1m%d.\033[0m %-38s \033[1;32m%.4f\033[0m\n", i+1, name, c.TotalScore)
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Cars by Location\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.CarsByLocation) == 0 {
		fmt.Printf("  No location data\n")
	} else {
		type locCount struct {
			loc   string
			count int
		}
		var locs []locCount
		for loc, cnt := range r.CarsByLocation {
			locs = append(locs, locCount{loc, cnt})
		}
		sort.Slice(locs, func(i, j int) bool {
			return locs[i].count > locs[j].count
		})
		for _, lc := range locs {
			bar := strings.Repeat("█", lc.count)
			fmt.Printf("  %-30s %s (%d)\n", truncate(lc.loc, 28), bar, lc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
