package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"autotrader-analyzer/models"
)

// header is the fixed column layout of the output artifact.
var header = []string{
	"Link", "Car Name", "Type", "Price", "Mileage", "Registration Year",
	"Seller", "Location", "Number Plate", "MOT Expiry", "MOT History",
	"Price Score", "Mileage Score", "Year Score", "MOT Score", "Total Score",
}

// CSVWriter persists listing rows to a CSV file. Rows are flushed through to
// disk as each listing finishes, so a crash mid-batch loses nothing already
// processed; once scoring completes the file is rewritten in ranked order.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	c := &CSVWriter{path: path}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CSVWriter) reset() error {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}

	c.file = f
	c.writer = w
	return nil
}

// Append writes one finished listing row and flushes it to disk.
func (c *CSVWriter) Append(car *models.Car) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(row(car)); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Rewrite replaces the whole file with the given cars in order, typically
// after final scores are computed and the batch is sorted.
func (c *CSVWriter) Rewrite(cars []*models.Car) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.file.Close(); err != nil {
		return fmt.Errorf("csv: close before rewrite: %w", err)
	}
	if err := c.reset(); err != nil {
		return err
	}

	for _, car := range cars {
		if err := c.writer.Write(row(car)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}

func row(car *models.Car) []string {
	return []string{
		car.Link,
		car.Name,
		car.Type,
		car.RawPrice,
		car.RawMileage,
		car.Registration,
		car.Seller,
		car.Location,
		car.Plate,
		car.MOTExpiry(),
		car.MOT.FlattenHistory(),
		formatScore(car.PriceScore),
		formatScore(car.MileageScore),
		formatScore(car.YearScore),
		formatScore(car.MOTScore),
		formatScore(car.TotalScore),
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
