package models

import (
	"fmt"
	"strings"
	"time"
)

// NoPlate is recorded when plate consensus fails: either no image produced a
// validated read, or no candidate was corroborated by a second image.
const NoPlate = "No number plate detected"

// RawCar holds the unprocessed strings scraped from an advert page, before
// any parsing, plate detection or history lookup.
type RawCar struct {
	Link         string
	Name         string
	Type         string
	RawPrice     string
	RawMileage   string
	Registration string
	Seller       string
	Location     string
	ImageURLs    []string
	ScrapedAt    time.Time
}

// MOTEntry is one periodic inspection record for a vehicle.
type MOTEntry struct {
	TestDate   string
	Mileage    string
	ExpiryDate string
	Comments   []string
}

// MOTRecord is the full inspection history for one plate. It is fetched
// all-or-nothing: a partially read history is never exposed to callers.
type MOTRecord struct {
	Expiry  string
	History []MOTEntry
}

// FlattenHistory renders the history entries into the single-cell format used
// by the output spreadsheet, one entry per line.
func (r *MOTRecord) FlattenHistory() string {
	if r == nil || len(r.History) == 0 {
		return "N/A"
	}
	lines := make([]string, 0, len(r.History))
	for _, e := range r.History {
		lines = append(lines, fmt.Sprintf("Test Date: %s, Mileage: %s, Expiry Date: %s, Comments: %s",
			e.TestDate, e.Mileage, e.ExpiryDate, strings.Join(e.Comments, "; ")))
	}
	return strings.Join(lines, "\n")
}

// Car is the enriched record for one listing. Attributes are filled in
// incrementally by successive pipeline stages; the score fields are only
// meaningful after the whole batch has been ranked, since normalization is
// relative to the batch.
type Car struct {
	Link         string
	Name         string
	Type         string
	RawPrice     string
	RawMileage   string
	Registration string
	Seller       string
	Location     string

	Plate string     // NoPlate when consensus failed
	MOT   *MOTRecord // nil when the plate is unknown or the fetch was exhausted

	Price   float64
	Mileage float64
	Year    float64

	PriceScore   float64
	MileageScore float64
	YearScore    float64
	MOTScore     float64
	TotalScore   float64
}

// MOTExpiry returns the expiry string for the output row, "N/A" when there is
// no history record.
func (c *Car) MOTExpiry() string {
	if c.MOT == nil || c.MOT.Expiry == "" {
		return "N/A"
	}
	return c.MOT.Expiry
}
