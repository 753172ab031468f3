// Package page renders a remote stock listing in headless Chrome so the
// extractor can read the DOM after client-side scripts have run.
package page

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"stock-report/utils"
)

// Renderer fetches fully rendered HTML through chromedp.
type Renderer struct {
	chromeBin string
	timeout   time.Duration
	logger    *utils.Logger
	retry     *utils.RetryConfig
}

// NewRenderer creates a Renderer. An empty chromeBin means "look it up".
func NewRenderer(chromeBin string, timeout time.Duration, retry *utils.RetryConfig, logger *utils.Logger) *Renderer {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &Renderer{chromeBin: chromeBin, timeout: timeout, logger: logger, retry: retry}
}

// Render navigates to url and returns the outer HTML of the document.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "file://") {
		return "", fmt.Errorf("page: unsupported url %q", url)
	}
	r.logger.Info("[page] Rendering %s (browser: %s)", url, displayBin(r.chromeBin))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(r.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var doc string
	err := r.retry.Do(browserCtx, "render-stock-page", func(ctx context.Context) error {
		tabCtx, cancelTab := chromedp.NewContext(ctx)
		defer cancelTab()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.OuterHTML("html", &doc, chromedp.ByQuery),
		)
	})
	if err != nil {
		return "", fmt.Errorf("page: %w", err)
	}

	r.logger.Debug("[page] Rendered %d bytes", len(doc))
	return doc, nil
}

func displayBin(bin string) string {
	if bin == "" {
		return "chromedp default"
	}
	return bin
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
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
