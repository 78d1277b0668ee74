package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autotrader-analyzer/config"
	"autotrader-analyzer/links"
	"autotrader-analyzer/models"
	"autotrader-analyzer/mot"
	"autotrader-analyzer/scraper/autotrader"
	"autotrader-analyzer/services"
	"autotrader-analyzer/storage"
	"autotrader-analyzer/utils"
	"autotrader-analyzer/vision"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Verbose)

	logger.Info("=== AutoTrader Listing Analyzer starting ===")
	logger.Info("Config — links: %s | concurrency: %d | rate: %dms | MOT attempts: %d",
		cfg.LinksPath, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.MOTMaxAttempts)

	// interruption between listings is graceful; finished rows stay on disk
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	carLinks, err := links.Read(cfg.LinksPath)
	if err != nil {
		logger.Error("Failed to read links file: %v", err)
		os.Exit(1)
	}
	if len(carLinks) == 0 {
		logger.Error("No usable links in %s. Exiting.", cfg.LinksPath)
		os.Exit(1)
	}
	logger.Info("Loaded %d unique listing links", len(carLinks))

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Warn("PostgreSQL unavailable, continuing with CSV only: %v", err)
		pgWriter = nil
	} else {
		defer pgWriter.Close()
	}

	recognizer, err := vision.NewGoogleVision(ctx, cfg.GoogleCredentialsFile)
	if err != nil {
		logger.Error("Failed to create text-recognition client: %v", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	allocCtx, cancelBrowser := autotrader.NewBrowser(ctx, cfg, logger)
	defer cancelBrowser()

	scraper := autotrader.New(allocCtx, cfg, logger)
	plateReader := vision.NewPlateReader(
		vision.NewDownloader(30*time.Second),
		vision.NewDetector(logger, cfg.PlateImageDir),
		recognizer,
		utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		logger,
	)
	motFetcher := mot.NewFetcher(allocCtx, logger, cfg.MOTBaseURL,
		cfg.MOTMaxAttempts, cfg.MOTBaseDelay, cfg.MOTSettleDelay)

	// Phase 1: scrape each advert, resolve its plate, write the row through.
	var cars []*models.Car
	for i, link := range carLinks {
		if ctx.Err() != nil {
			logger.Warn("Interrupted — stopping after %d of %d listings", len(cars), len(carLinks))
			break
		}

		logger.Info("Listing %d/%d: %s", i+1, len(carLinks), link)
		raw, err := scraper.FetchDetails(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("Listing failed, skipping: %v", err)
			continue
		}

		car := &models.Car{
			Link:         raw.Link,
			Name:         raw.Name,
			Type:         raw.Type,
			RawPrice:     raw.RawPrice,
			RawMileage:   raw.RawMileage,
			Registration: raw.Registration,
			Seller:       raw.Seller,
			Location:     raw.Location,
			Plate:        plateReader.Read(ctx, raw.ImageURLs),
		}
		cars = append(cars, car)

		if err := csvWriter.Append(car); err != nil {
			logger.Error("CSV write-through failed: %v", err)
		}
	}

	if len(cars) == 0 {
		logger.Error("No listings were scraped. Exiting.")
		os.Exit(1)
	}
	logger.Info("Scraped %d listings — fetching MOT histories...", len(cars))

	// Phase 2: one history lookup per distinct plate. Sequential because the
	// history source rate limits.
	histories := make(map[string]*models.MOTRecord)
	for _, car := range cars {
		if ctx.Err() != nil {
			break
		}
		if car.Plate == models.NoPlate {
			continue
		}

		record, seen := histories[car.Plate]
		if !seen {
			var err error
			record, err = motFetcher.Fetch(ctx, car.Plate)
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				if errors.Is(err, mot.ErrFetchExhausted) {
					logger.Error("MOT history unavailable for %s: %v", car.Plate, err)
				} else {
					logger.Error("MOT fetch failed for %s: %v", car.Plate, err)
				}
				record = nil
			}
			histories[car.Plate] = record
		}

		car.MOT = record
		car.MOTScore = services.MOTScore(record)
	}

	// Phase 3: rank the batch and rewrite the output sorted.
	scorer := services.NewScorer(logger, services.Weights{
		Price:   cfg.WeightPrice,
		Mileage: cfg.WeightMileage,
		Year:    cfg.WeightYear,
		MOT:     cfg.WeightMOT,
	})
	ranked := scorer.Score(cars)

	if len(ranked) == 0 {
		logger.Error("All listings were dropped during scoring. Raw rows remain in %s", cfg.CSVOutputPath)
		os.Exit(1)
	}

	if err := csvWriter.Rewrite(ranked); err != nil {
		logger.Error("Final CSV rewrite failed: %v", err)
	} else {
		logger.Info("Ranked results saved to %s", cfg.CSVOutputPath)
	}

	if pgWriter != nil {
		if err := pgWriter.Write(ranked); err != nil {
			logger.Error("PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Ranked results stored in PostgreSQL (table: cars)")
		}
	}

	reportSvc := services.NewReportService(logger)
	reportSvc.Print(reportSvc.Generate(ranked))

	fmt.Printf("  Done. Ranked results → %s | PostgreSQL (cars table)\n\n", cfg.CSVOutputPath)
}
