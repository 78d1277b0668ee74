package vision

import (
	"context"
	"sync"

	"autotrader-analyzer/models"
	"autotrader-analyzer/utils"
)

// PlateReader runs the per-listing plate pipeline: download each gallery
// image, propose a plate region, recognize its text, validate the grammar,
// and resolve a consensus plate across all images.
type PlateReader struct {
	downloader *Downloader
	detector   *Detector
	recognizer TextRecognizer
	pool       *utils.WorkerPool
	logger     *utils.Logger
}

// NewPlateReader wires the plate pipeline together. The worker pool fans the
// images of one listing out concurrently; this is safe because detection and
// recognition are pure per-image and the consensus depends only on candidate
// counts, not order.
func NewPlateReader(downloader *Downloader, detector *Detector, recognizer TextRecognizer,
	pool *utils.WorkerPool, logger *utils.Logger) *PlateReader {
	return &PlateReader{
		downloader: downloader,
		detector:   detector,
		recognizer: recognizer,
		pool:       pool,
		logger:     logger,
	}
}

// Read returns the consensus plate for a listing's gallery, or models.NoPlate
// when the evidence is insufficient. Any single image failing to download,
// detect or recognize only removes that image's vote.
func (p *PlateReader) Read(ctx context.Context, imageURLs []string) string {
	var (
		mu         sync.Mutex
		candidates []string
	)

	for idx, imageURL := range imageURLs {
		idx, imageURL := idx, imageURL
		p.pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}

			img, err := p.downloader.Fetch(ctx, imageURL)
			if err != nil {
				p.logger.Debug("[plate] Image %d skipped: %v", idx+1, err)
				return
			}

			crop := p.detector.Detect(img, idx+1)
			if crop == nil {
				p.logger.Debug("[plate] Image %d: no plate region", idx+1)
				return
			}

			text, err := p.recognizer.Recognize(ctx, Preprocess(crop))
			if err != nil {
				p.logger.Debug("[plate] Image %d: recognition failed: %v", idx+1, err)
				return
			}

			plates := ValidatePlates(text)
			if len(plates) == 0 {
				return
			}

			mu.Lock()
			candidates = append(candidates, plates...)
			mu.Unlock()
		})
	}
	p.pool.Wait()

	plate, ok := ResolveConsensus(candidates)
	if !ok {
		p.logger.Debug("[plate] No consensus from %d candidate reads", len(candidates))
		return models.NoPlate
	}
	return plate
}
