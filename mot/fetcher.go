package mot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"autotrader-analyzer/models"
	"autotrader-analyzer/utils"
)

// ErrFetchExhausted is returned once every attempt at a plate's history has
// failed. A caller never sees a partial record: the history is all-or-nothing.
var ErrFetchExhausted = errors.New("mot: history fetch exhausted")

// fetchState drives the retry machine. A fetch is a loop of single logical
// attempts; distinguishing the states keeps attempt failures, back-off waits
// and terminal exhaustion apart instead of funnelling them through one raised
// error.
type fetchState int

const (
	stateIdle fetchState = iota
	stateRequesting
	stateSuccess
	stateFailed
)

// entryData mirrors the per-test block extracted from the history page.
type entryData struct {
	TestDate   string   `json:"test_date"`
	Mileage    string   `json:"mileage"`
	ExpiryDate string   `json:"expiry_date"`
	Comments   []string `json:"comments"`
}

// Fetcher retrieves MOT history records from the free check site, which rate
// limits aggressively and fails often enough to need exponential back-off.
type Fetcher struct {
	logger      *utils.Logger
	baseURL     string
	maxAttempts int
	baseDelay   time.Duration
	settle      time.Duration

	// one attempt chain at a time; the upstream source rate limits per client
	mu sync.Mutex

	// attempt is swappable so the retry machine is testable without a browser
	attempt func(ctx context.Context, plate string) (*models.MOTRecord, error)
}

// NewFetcher creates a Fetcher that drives the given chromedp allocator
// context. baseDelay seeds the exponential back-off; settle is the pause
// after revealing the full history, respecting the upstream rate limit.
func NewFetcher(allocCtx context.Context, logger *utils.Logger, baseURL string,
	maxAttempts int, baseDelay, settle time.Duration) *Fetcher {
	f := &Fetcher{
		logger:      logger,
		baseURL:     baseURL,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		settle:      settle,
	}
	f.attempt = func(ctx context.Context, plate string) (*models.MOTRecord, error) {
		return f.browserAttempt(allocCtx, plate)
	}
	return f
}

// Fetch runs the retry state machine for one plate. It returns the complete
// history record, or ErrFetchExhausted wrapping the last failure once all
// attempts are consumed.
func (f *Fetcher) Fetch(ctx context.Context, plate string) (*models.MOTRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		state   = stateIdle
		record  *models.MOTRecord
		lastErr error
		attempt int
		delay   = f.baseDelay
	)

	for {
		switch state {
		case stateIdle:
			if attempt >= f.maxAttempts {
				return nil, fmt.Errorf("%w: plate %s after %d attempts: %v",
					ErrFetchExhausted, plate, f.maxAttempts, lastErr)
			}
			if attempt > 0 {
				f.logger.Warn("[mot] Plate %s attempt %d/%d failed: %v — retrying in %v",
					plate, attempt, f.maxAttempts, lastErr, delay)
				if err := utils.SleepContext(ctx, delay); err != nil {
					return nil, fmt.Errorf("mot: fetch interrupted: %w", err)
				}
				delay *= 2
			}
			attempt++
			state = stateRequesting

		case stateRequesting:
			rec, err := f.attempt(ctx, plate)
			if err != nil {
				lastErr = err
				state = stateFailed
				break
			}
			record = rec
			state = stateSuccess

		case stateFailed:
			state = stateIdle

		case stateSuccess:
			f.logger.Info("[mot] Plate %s: %d history entries (attempt %d)",
				plate, len(record.History), attempt)
			return record, nil
		}
	}
}

// browserAttempt is one logical attempt: load the plate's detail page, wait
// for the expiry text, reveal the full history, pause the settle interval,
// then read every history block.
func (f *Fetcher) browserAttempt(allocCtx context.Context, plate string) (*models.MOTRecord, error) {
	tabCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 120*time.Second)
	defer cancelTimeout()

	var expiry string
	var raw []entryData

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(f.baseURL+"/cardetails/"+url.PathEscape(plate)),
		chromedp.WaitVisible(`#mot-expiry-text`, chromedp.ByID),
		chromedp.Text(`#mot-expiry-text`, &expiry, chromedp.ByID),
		chromedp.Click(`div.freechecksection.shadow.seefullmothistory.showspinner a`, chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.WaitVisible(`.table-main`, chromedp.ByQuery),
		chromedp.Evaluate(`
			(function() {
				var out = [];
				var blocks = document.querySelectorAll('.table-main');
				for (var i = 0; i < blocks.length; i++) {
					var block = blocks[i];
					var dateEl = block.querySelector('.testdate');
					var mileageEls = block.querySelectorAll('.mileagenumber');
					var commentEls = block.querySelectorAll('.commentsp');

					var comments = [];
					for (var j = 0; j < commentEls.length; j++) {
						comments.push(commentEls[j].innerText.trim());
					}

					out.push({
						test_date:   dateEl ? dateEl.innerText.trim() : '',
						mileage:     mileageEls.length > 0 ? mileageEls[0].innerText.trim() : '',
						expiry_date: mileageEls.length > 1 ? mileageEls[1].innerText.trim() : '',
						comments:    comments
					});
				}
				return out;
			})()
		`, &raw),
	)
	if err != nil {
		return nil, fmt.Errorf("mot: attempt for %s: %w", plate, err)
	}

	entries, err := parseEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("mot: attempt for %s: %w", plate, err)
	}

	return &models.MOTRecord{
		Expiry:  strings.TrimSpace(strings.TrimPrefix(expiry, "Expires: ")),
		History: entries,
	}, nil
}

// parseEntries validates the raw per-test blocks. A missing next-due value is
// tolerated and recorded as "N/A"; a missing test date or mileage means the
// read itself went wrong and fails the attempt.
func parseEntries(raw []entryData) ([]models.MOTEntry, error) {
	entries := make([]models.MOTEntry, 0, len(raw))
	for i, e := range raw {
		if e.TestDate == "" || e.Mileage == "" {
			return nil, fmt.Errorf("incomplete history entry %d", i+1)
		}
		expiry := e.ExpiryDate
		if expiry == "" {
			expiry = "N/A"
		}
		entries = append(entries, models.MOTEntry{
			TestDate:   e.TestDate,
			Mileage:    e.Mileage,
			ExpiryDate: expiry,
			Comments:   e.Comments,
		})
	}
	return entries, nil
}
