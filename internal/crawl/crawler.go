package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"wfip/internal/detect"
	"wfip/internal/metrics"
	"wfip/internal/model"
)

const (
	// DefaultMaxDepth limits how many link hops from the start URL are followed.
	DefaultMaxDepth = 1
	// DefaultMaxPages caps the total pages fetched in one crawl.
	DefaultMaxPages = 50

	maxBodySize = 5 << 20
)

var (
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	hrefRe        = regexp.MustCompile(`(?is)<a[^>]+href\s*=\s*["']([^"'#]+)["']`)
)

// PageResult holds the usages detected on a single crawled page.
type PageResult struct {
	URL    string
	Usages []model.FeatureUsage
}

// Crawler fetches pages from a site and runs signature detection over
// their inline CSS and JavaScript.
type Crawler struct {
	HTTPClient *http.Client
	Detector   *detect.Detector
	MaxDepth   int
	MaxPages   int
}

// New creates a Crawler with default limits.
func New(detector *detect.Detector) *Crawler {
	return &Crawler{
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		Detector:   detector,
		MaxDepth:   DefaultMaxDepth,
		MaxPages:   DefaultMaxPages,
	}
}

// Crawl walks same-origin links breadth-first starting at startURL.
// Pages that fail to fetch are logged and skipped.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]PageResult, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	if start.Scheme != "http" && start.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %q", start.Scheme)
	}

	type item struct {
		u     *url.URL
		depth int
	}

	queue := []item{{u: start, depth: 0}}
	visited := map[string]bool{start.String(): true}

	var results []PageResult
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if c.MaxPages > 0 && len(results) >= c.MaxPages {
			break
		}

		next := queue[0]
		queue = queue[1:]

		body, err := c.fetch(ctx, next.u.String())
		if err != nil {
			slog.Warn("Skipping page", "url", next.u.String(), "error", err)
			continue
		}
		metrics.CrawlPages.Inc()

		usages := c.scanPage(next.u.String(), body)
		results = append(results, PageResult{URL: next.u.String(), Usages: usages})

		if next.depth >= c.MaxDepth {
			continue
		}
		for _, link := range extractLinks(next.u, body) {
			if visited[link.String()] {
				continue
			}
			visited[link.String()] = true
			queue = append(queue, item{u: link, depth: next.depth + 1})
		}
	}

	return results, nil
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "wfip-crawler/1.0")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// scanPage runs detection over the embedded style and script content of a
// page. Locations carry the page URL so findings map back to the site.
func (c *Crawler) scanPage(pageURL, body string) []model.FeatureUsage {
	var usages []model.FeatureUsage

	for _, m := range styleBlockRe.FindAllStringSubmatch(body, -1) {
		usages = append(usages, c.Detector.ScanContent(pageURL+" <style>", m[1])...)
	}
	for _, m := range scriptBlockRe.FindAllStringSubmatch(body, -1) {
		usages = append(usages, c.Detector.ScanContent(pageURL+" <script>", m[1])...)
	}

	// Markup-level signatures (<dialog>, popover, inline styles) come from
	// the page with style and script bodies stripped, so nothing is
	// counted twice.
	markup := styleBlockRe.ReplaceAllString(body, "")
	markup = scriptBlockRe.ReplaceAllString(markup, "")
	usages = append(usages, c.Detector.ScanContent(pageURL, markup)...)

	return usages
}

func extractLinks(base *url.URL, body string) []*url.URL {
	var links []*url.URL
	for _, m := range hrefRe.FindAllStringSubmatch(body, -1) {
		ref, err := url.Parse(strings.TrimSpace(m[1]))
		if err != nil {
			continue
		}
		u := base.ResolveReference(ref)
		if u.Host != base.Host || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		u.Fragment = ""
		links = append(links, u)
	}
	return links
}
