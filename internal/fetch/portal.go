// Package fetch downloads the supplier CSV feed from the vendor portal, which
// only hands the file out behind a browser login.
package fetch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/gypaetuscode/dropimator/internal/config"
)

// Portal element locations. The portal has no stable ids or classes, so the
// login form and the export link are addressed by position.
const (
	emailXPath    = `/html/body/div[3]/section[1]/div/div/form/div[1]/div[1]/div/input`
	passwordXPath = `/html/body/div[3]/section[1]/div/div/form/div[1]/div[2]/div/input`
	submitXPath   = `/html/body/div[3]/section[1]/div/div/form/div[2]/button`
	downloadXPath = `/html/body/div[3]/div[1]/div[1]/a`
)

const downloadTimeout = 90 * time.Second

// PortalDownloader drives a headless browser through the portal login and
// export-link click.
type PortalDownloader struct {
	cfg config.FeedConfig
}

// NewPortalDownloader creates a downloader for the configured portal
func NewPortalDownloader(cfg config.FeedConfig) *PortalDownloader {
	return &PortalDownloader{cfg: cfg}
}

// Download logs into the portal, clicks the CSV export link, and waits for
// the file to land in the download directory. Returns the downloaded path.
func (d *PortalDownloader) Download(ctx context.Context) (string, error) {
	if d.cfg.PortalURL == "" || d.cfg.PortalEmail == "" || d.cfg.PortalPassword == "" {
		return "", fmt.Errorf("CSV_URL, EMAIL and PASSWORD must all be configured")
	}

	downloadDir, err := filepath.Abs(d.cfg.DownloadDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, downloadTimeout)
	defer timeoutCancel()

	before, err := listCSVs(downloadDir)
	if err != nil {
		return "", err
	}

	log.Printf("🌐 Logging into portal at %s", d.cfg.PortalURL)
	err = chromedp.Run(browserCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(downloadDir),
		chromedp.Navigate(d.cfg.PortalURL),
		chromedp.WaitVisible(emailXPath, chromedp.BySearch),
		chromedp.SendKeys(emailXPath, d.cfg.PortalEmail, chromedp.BySearch),
		chromedp.SendKeys(passwordXPath, d.cfg.PortalPassword, chromedp.BySearch),
		chromedp.Click(submitXPath, chromedp.BySearch),
		chromedp.WaitVisible(downloadXPath, chromedp.BySearch),
		chromedp.Click(downloadXPath, chromedp.BySearch),
	)
	if err != nil {
		return "", fmt.Errorf("portal navigation: %w", err)
	}

	path, err := waitForDownload(browserCtx, downloadDir, before)
	if err != nil {
		return "", err
	}
	log.Printf("✅ Feed downloaded to %s", path)
	return path, nil
}

func listCSVs(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			seen[e.Name()] = true
		}
	}
	return seen, nil
}

// waitForDownload polls for a new, fully-written CSV. Chrome writes to a
// .crdownload file first, so a name only counts once that suffix is gone.
func waitForDownload(ctx context.Context, dir string, before map[string]bool) (string, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for the feed download")
		case <-ticker.C:
			entries, err := os.ReadDir(dir)
			if err != nil {
				return "", err
			}
			partial := false
			for _, e := range entries {
				if strings.HasSuffix(e.Name(), ".crdownload") {
					partial = true
				}
			}
			if partial {
				continue
			}
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() || before[name] || !strings.HasSuffix(strings.ToLower(name), ".csv") {
					continue
				}
				return filepath.Join(dir, name), nil
			}
		}
	}
}
