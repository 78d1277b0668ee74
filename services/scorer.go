package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"autotrader-analyzer/models"
	"autotrader-analyzer/utils"
)

// yearRegexp captures the 4-digit registration year from strings like
// "2018 (18 reg)".
var yearRegexp = regexp.MustCompile(`\d{4}`)

// Weights holds the relative importance of each scoring column. They are
// expected to sum to 1.0.
type Weights struct {
	Price   float64
	Mileage float64
	Year    float64
	MOT     float64
}

// DefaultWeights returns the reference weighting.
func DefaultWeights() Weights {
	return Weights{Price: 0.3, Mileage: 0.2, Year: 0.2, MOT: 0.3}
}

// Scorer ranks a batch of cars by a weighted combination of price, mileage,
// registration year and MOT condition. Scores are relative to the batch:
// each column is min-max normalized over the surviving records, so they can
// only be computed once the whole batch is in.
type Scorer struct {
	logger  *utils.Logger
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(logger *utils.Logger, weights Weights) *Scorer {
	return &Scorer{logger: logger, weights: weights}
}

// Score parses the raw numeric columns, drops records that cannot be ranked,
// normalizes each column over the batch, fills in the score fields and
// returns the survivors ordered by total score descending. The sort is
// stable, so exact ties keep their original relative order.
func (s *Scorer) Score(cars []*models.Car) []*models.Car {
	survivors := make([]*models.Car, 0, len(cars))
	for _, car := range cars {
		price, ok := parsePrice(car.RawPrice)
		if !ok {
			s.logger.Warn("[scorer] Dropping %s: unparseable price %q", car.Link, car.RawPrice)
			continue
		}
		mileage, ok := parseMileage(car.RawMileage)
		if !ok {
			s.logger.Warn("[scorer] Dropping %s: unparseable mileage %q", car.Link, car.RawMileage)
			continue
		}
		year, ok := parseYear(car.Registration)
		if !ok {
			s.logger.Warn("[scorer] Dropping %s: no registration year in %q", car.Link, car.Registration)
			continue
		}

		car.Price, car.Mileage, car.Year = price, mileage, year
		survivors = append(survivors, car)
	}

	if dropped := len(cars) - len(survivors); dropped > 0 {
		s.logger.Info("[scorer] Ranking %d of %d cars (%d dropped)", len(survivors), len(cars), dropped)
	}
	if len(survivors) == 0 {
		return survivors
	}

	normPrice, priceSpread := normalizer(survivors, func(c *models.Car) float64 { return c.Price })
	normMileage, mileageSpread := normalizer(survivors, func(c *models.Car) float64 { return c.Mileage })
	normYear, yearSpread := normalizer(survivors, func(c *models.Car) float64 { return c.Year })

	for _, car := range survivors {
		// a column with no spread carries no ranking signal; its sub-score
		// is 0 for every row rather than a division by zero
		if priceSpread {
			car.PriceScore = 1 - normPrice(car.Price)
		}
		if mileageSpread {
			car.MileageScore = 1 - normMileage(car.Mileage)
		}
		if yearSpread {
			car.YearScore = normYear(car.Year)
		}
		car.TotalScore = s.weights.Price*car.PriceScore +
			s.weights.Mileage*car.MileageScore +
			s.weights.Year*car.YearScore +
			s.weights.MOT*car.MOTScore
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].TotalScore > survivors[j].TotalScore
	})
	return survivors
}

// normalizer returns a min-max normalization closure over one column of the
// batch plus whether the column has any spread at all.
func normalizer(cars []*models.Car, column func(*models.Car) float64) (func(float64) float64, bool) {
	min, max := column(cars[0]), column(cars[0])
	for _, c := range cars[1:] {
		v := column(c)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return func(float64) float64 { return 0 }, false
	}
	span := max - min
	return func(v float64) float64 { return (v - min) / span }, true
}

// parsePrice strips the currency symbol and thousands separators:
// "£7,995" → 7995.
func parsePrice(raw string) (float64, bool) {
	cleaned := strings.NewReplacer("£", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseMileage keeps only the digits: "32,554 miles" → 32554.
func parseMileage(raw string) (float64, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseYear extracts the first 4-digit run from the registration column.
func parseYear(raw string) (float64, bool) {
	match := yearRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
