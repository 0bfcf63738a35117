package ingest

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// RawPage is one scraped listing item before normalization.
type RawPage struct {
	URL     string
	Title   string
	Content string // inner HTML of the content selector
	Source  *SourceConfig
}

// CollyFetcher scrapes listing pages with rate limiting and retries,
// respecting robots.txt.
type CollyFetcher struct {
	UserAgent      string
	MaxRetries     int
	RequestTimeout time.Duration
	DomainDelay    time.Duration
	MaxBodySize    int
}

// NewCollyFetcher creates a CollyFetcher with sensible defaults.
func NewCollyFetcher() *CollyFetcher {
	return &CollyFetcher{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		MaxRetries:     3,
		RequestTimeout: 30 * time.Second,
		DomainDelay:    1 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
	}
}

func (f *CollyFetcher) buildCollector(source *SourceConfig) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	}

	domains := allowedDomains(source.Seeds)
	if len(domains) > 0 {
		opts = append(opts, colly.AllowedDomains(domains...))
	}

	c := colly.NewCollector(opts...)

	delay := f.DomainDelay
	if source.Fetch.RateLimitRPS > 0 {
		delay = time.Duration(float64(time.Second) / source.Fetch.RateLimitRPS)
	}
	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       delay,
		RandomDelay: delay / 2,
	})

	timeout := f.RequestTimeout
	if source.Fetch.TimeoutSeconds > 0 {
		timeout = time.Duration(source.Fetch.TimeoutSeconds) * time.Second
	}
	c.SetRequestTimeout(timeout)

	return c
}

// FetchListing walks a source's seed URLs and pagination, extracting one
// RawPage per listing container.
func (f *CollyFetcher) FetchListing(source *SourceConfig) ([]RawPage, error) {
	if source.Selectors.Container == "" {
		return nil, fmt.Errorf("source %s has no container selector", source.ID)
	}

	c := f.buildCollector(source)

	var pages []RawPage
	visited := 0
	maxPages := source.MaxPages
	if maxPages <= 0 {
		maxPages = 3
	}

	c.OnHTML(source.Selectors.Container, func(e *colly.HTMLElement) {
		page := RawPage{Source: source}

		if source.Selectors.Link != "" {
			attr := source.Selectors.LinkAttr
			if attr == "" {
				attr = "href"
			}
			if href := e.ChildAttr(source.Selectors.Link, attr); href != "" {
				page.URL = e.Request.AbsoluteURL(href)
			}
		}
		if source.Selectors.Title != "" {
			page.Title = cleanText(e.ChildText(source.Selectors.Title))
		}
		if source.Selectors.Content != "" {
			html, err := e.DOM.Find(source.Selectors.Content).Html()
			if err == nil {
				page.Content = html
			}
		}

		if page.Title == "" && page.URL == "" {
			return
		}
		pages = append(pages, page)
	})

	if source.Selectors.Next != "" {
		c.OnHTML(source.Selectors.Next, func(e *colly.HTMLElement) {
			visited++
			if visited >= maxPages {
				return
			}
			next := e.Request.AbsoluteURL(e.Attr("href"))
			if next != "" {
				if err := e.Request.Visit(next); err != nil {
					log.Printf("pagination stopped for %s: %v", source.ID, err)
				}
			}
		})
	}

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("fetch error for %s (%s): %v", source.ID, r.Request.URL, err)
	})

	var lastErr error
	for _, seed := range source.Seeds {
		for attempt := 0; attempt <= f.MaxRetries; attempt++ {
			lastErr = c.Visit(seed)
			if lastErr == nil {
				break
			}
			log.Printf("visit %s failed (attempt %d/%d): %v", seed, attempt+1, f.MaxRetries+1, lastErr)
		}
	}
	c.Wait()

	if len(pages) == 0 && lastErr != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.ID, lastErr)
	}
	return pages, nil
}

func allowedDomains(seeds []string) []string {
	seen := make(map[string]bool)
	var domains []string
	for _, seed := range seeds {
		u, err := url.Parse(seed)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.TrimPrefix(u.Host, "www.")
		for _, d := range []string{host, "www." + host} {
			if !seen[d] {
				seen[d] = true
				domains = append(domains, d)
			}
		}
	}
	return domains
}
