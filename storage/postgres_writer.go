package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"autotrader-analyzer/models"
)

// PostgresWriter persists the ranked batch to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS cars (
			id            SERIAL PRIMARY KEY,
			link          TEXT          UNIQUE NOT NULL,
			name          TEXT          NOT NULL DEFAULT '',
			type          TEXT          NOT NULL DEFAULT '',
			price         NUMERIC(12,2) NOT NULL DEFAULT 0,
			mileage       NUMERIC(12,1) NOT NULL DEFAULT 0,
			year          INT           NOT NULL DEFAULT 0,
			seller        TEXT          NOT NULL DEFAULT '',
			location      TEXT          NOT NULL DEFAULT '',
			plate         TEXT          NOT NULL DEFAULT '',
			mot_expiry    TEXT          NOT NULL DEFAULT 'N/A',
			mot_history   TEXT          NOT NULL DEFAULT 'N/A',
			price_score   NUMERIC(6,4)  NOT NULL DEFAULT 0,
			mileage_score NUMERIC(6,4)  NOT NULL DEFAULT 0,
			year_score    NUMERIC(6,4)  NOT NULL DEFAULT 0,
			mot_score     NUMERIC(6,4)  NOT NULL DEFAULT 0,
			total_score   NUMERIC(6,4)  NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_cars_total_score ON cars(total_score);
		CREATE INDEX IF NOT EXISTS idx_cars_plate       ON cars(plate);
		CREATE INDEX IF NOT EXISTS idx_cars_location    ON cars(location);
	`)
	return err
}

// Clear deletes all existing cars from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM cars")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts the ranked cars, clearing old data first.
func (pw *PostgresWriter) Write(cars []*models.Car) error {
	if len(cars) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(cars); i += batchSize {
		end := i + batchSize
		if end > len(cars) {
			end = len(cars)
		}
		if err := pw.insertBatch(cars[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Car) error {
	const cols = 16
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, c := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := 0; j < cols; j++ {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			c.Link, c.Name, c.Type, c.Price, c.Mileage, int(c.Year),
			c.Seller, c.Location, c.Plate, c.MOTExpiry(), c.MOT.FlattenHistory(),
			c.PriceScore, c.MileageScore, c.YearScore, c.MOTScore, c.TotalScore)
	}

	query := fmt.Sprintf(`
		INSERT INTO cars (link, name, type, price, mileage, year, seller, location,
			plate, mot_expiry, mot_history, price_score, mileage_score, year_score,
			mot_score, total_score)
		VALUES %s
		ON CONFLICT (link) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
