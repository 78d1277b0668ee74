package autotrader

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"autotrader-analyzer/config"
	"autotrader-analyzer/models"
	"autotrader-analyzer/utils"
)

// Scraper pulls the structured advert fields and gallery image URLs for one
// AutoTrader listing at a time. Cookie consent is session-scoped state: the
// banner is accepted once per browser session and never touched again.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	allocCtx context.Context
	retry    *utils.RetryConfig

	consentGiven bool
}

// New creates a Scraper bound to a browser allocator context.
func New(allocCtx context.Context, cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		allocCtx: allocCtx,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// advertData mirrors the fields pulled out of the advert page in one pass.
type advertData struct {
	Name         string `json:"name"`
	Price        string `json:"price"`
	Type         string `json:"type"`
	Mileage      string `json:"mileage"`
	Registration string `json:"registration"`
	Seller       string `json:"seller"`
	Location     string `json:"location"`
}

// FetchDetails loads one advert page and returns its raw fields plus the
// gallery image URLs. The advert title and price must be present; anything
// else degrades to "N/A".
func (s *Scraper) FetchDetails(ctx context.Context, link string) (*models.RawCar, error) {
	var details advertData
	var imageURLs []string

	err := s.retry.Do(ctx, "fetch-details", func() error {
		tabCtx, cancel := chromedp.NewContext(s.allocCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 90*time.Second)
		defer cancelTimeout()

		if err := chromedp.Run(tabCtx,
			chromedp.Navigate(link),
			chromedp.Sleep(3*time.Second),
		); err != nil {
			return fmt.Errorf("navigate: %w", err)
		}

		if !s.consentGiven {
			s.acceptCookies(tabCtx)
		}

		var d advertData
		if err := chromedp.Run(tabCtx,
			chromedp.Evaluate(`
				(function() {
					function text(sel) {
						var el = document.querySelector(sel);
						return el ? el.innerText.trim() : '';
					}

					// "Mileage" / "Registration" are label divs followed by a value <p>
					function keySpec(label) {
						var divs = document.querySelectorAll('div');
						for (var i = 0; i < divs.length; i++) {
							if (divs[i].childElementCount === 0 && divs[i].textContent.trim() === label) {
								var sib = divs[i].nextElementSibling;
								if (sib && sib.tagName === 'P') return sib.innerText.trim();
							}
						}
						return '';
					}

					var seller = '';
					var location = '';
					var section = document.querySelector('section[data-testid="advert-seller-details"]');
					if (section) {
						var span = section.querySelector('span');
						if (span) {
							seller = span.innerText.trim();
							var marker = 'Find out more';
							if (seller.endsWith(marker)) {
								seller = seller.slice(0, seller.length - marker.length).trim();
							}
						}
						var lines = section.innerText.split('\n');
						for (var i = 0; i < lines.length; i++) {
							if (lines[i].indexOf('miles away') !== -1) {
								// drop the trailing "N miles away"
								var words = lines[i].trim().split(/\s+/);
								location = words.slice(0, -3).join(' ');
								break;
							}
						}
					}

					return {
						name:         text('h1[data-gui="advert-title"]'),
						price:        text('h2[data-testid="advert-price"]'),
						type:         text('p[data-testid="advert-subtitle"]'),
						mileage:      keySpec('Mileage'),
						registration: keySpec('Registration'),
						seller:       seller || 'N/A',
						location:     location || 'N/A'
					};
				})()
			`, &d),
		); err != nil {
			return fmt.Errorf("extract details: %w", err)
		}

		if d.Name == "" || d.Price == "" {
			return fmt.Errorf("advert fields missing for %s", link)
		}

		urls, err := s.collectImageURLs(tabCtx)
		if err != nil {
			s.logger.Warn("[autotrader] Gallery failed for %s: %v", link, err)
			urls = nil
		}

		details = d
		imageURLs = urls
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.RawCar{
		Link:         link,
		Name:         details.Name,
		Type:         details.Type,
		RawPrice:     details.Price,
		RawMileage:   details.Mileage,
		Registration: details.Registration,
		Seller:       details.Seller,
		Location:     details.Location,
		ImageURLs:    imageURLs,
		ScrapedAt:    time.Now(),
	}, nil
}

// acceptCookies clicks the consent banner's "Accept All" button, checking
// same-origin iframes when the button is not on the top document. Failure is
// non-fatal: some sessions never show the banner.
func (s *Scraper) acceptCookies(tabCtx context.Context) {
	var clicked bool
	err := chromedp.Run(tabCtx,
		chromedp.Evaluate(`
			(function() {
				function tryClick(doc) {
					var btn = doc.querySelector('button[title="Accept All"]');
					if (btn) {
						btn.click();
						return true;
					}
					return false;
				}

				if (tryClick(document)) return true;

				var iframes = document.querySelectorAll('iframe');
				for (var i = 0; i < iframes.length; i++) {
					try {
						if (iframes[i].contentDocument && tryClick(iframes[i].contentDocument)) {
							return true;
						}
					} catch (e) {
						// cross-origin frame
					}
				}
				return false;
			})()
		`, &clicked),
	)
	if err != nil {
		s.logger.Warn("[autotrader] Cookie consent check failed: %v", err)
		return
	}
	if clicked {
		s.logger.Debug("[autotrader] Cookie banner accepted")
		s.consentGiven = true
	}
}

// collectImageURLs expands the gallery and returns every image source in the
// grid. An advert without the gallery button yields no URLs.
func (s *Scraper) collectImageURLs(tabCtx context.Context) ([]string, error) {
	var opened bool
	var urls []string

	err := chromedp.Run(tabCtx,
		chromedp.Evaluate(`
			(function() {
				var btn = document.querySelector('button[data-testid="gallery-view-more-button"]');
				if (btn) {
					btn.click();
					return true;
				}
				return false;
			})()
		`, &opened),
	)
	if err != nil {
		return nil, fmt.Errorf("open gallery: %w", err)
	}
	if !opened {
		return nil, nil
	}

	err = chromedp.Run(tabCtx,
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`
			(function() {
				var out = [];
				var grid = document.querySelector('div[data-testid="image-grid-component"]');
				if (!grid) return out;
				var imgs = grid.querySelectorAll('img');
				for (var i = 0; i < imgs.length; i++) {
					if (imgs[i].src) out.push(imgs[i].src);
				}
				return out;
			})()
		`, &urls),
	)
	if err != nil {
		return nil, fmt.Errorf("collect gallery images: %w", err)
	}
	return urls, nil
}

// NewBrowser builds the shared headless-browser allocator used by both the
// advert scraper and the MOT fetcher.
func NewBrowser(ctx context.Context, cfg *config.Config, logger *utils.Logger) (context.Context, context.CancelFunc) {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)

	// suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelSilent()
		cancelAlloc()
	}
	return silentCtx, cancel
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
