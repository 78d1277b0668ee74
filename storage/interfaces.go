package storage

import "autotrader-analyzer/models"

// RowWriter is the interface for the incrementally written output artifact.
type RowWriter interface {
	Append(car *models.Car) error
	Rewrite(cars []*models.Car) error
	Close() error
}

// ResultWriter is the interface for persisting the final ranked batch.
type ResultWriter interface {
	Write(cars []*models.Car) error
	Close() error
}
