package imdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/giannisanni/movieratings/internal/providers"
)

// DefaultBaseURL is the public IMDb site.
const DefaultBaseURL = "https://www.imdb.com"

// SearchResult is one candidate from the find page. Name joins the title,
// year and principal cast the way the page lists them.
type SearchResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Poster string `json:"poster"`
}

// SearchPayload is the body returned by Search.
type SearchPayload struct {
	ResultCount int            `json:"result_count"`
	Results     []SearchResult `json:"results"`
}

// DetailsPayload is the body returned by Details.
type DetailsPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Poster      string  `json:"poster"`
	Year        string  `json:"year,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

// HTTPStatusError reports a non-2xx response from IMDb.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Client scrapes IMDb search and title pages.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ providers.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New returns an IMDb client. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "imdb" }

// Search queries the feature-film find page.
func (c *Client) Search(ctx context.Context, title string) ([]byte, error) {
	results, err := c.search(ctx, title)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SearchPayload{ResultCount: len(results), Results: results})
}

// Details resolves title through the find page and reads the first hit's
// title page.
func (c *Client) Details(ctx context.Context, title string) ([]byte, error) {
	results, err := c.search(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no title found for %q", title)
	}

	page, err := c.fetch(ctx, results[0].URL)
	if err != nil {
		return nil, err
	}

	details, err := parseTitlePage(page, c.baseURL)
	if err != nil {
		return nil, err
	}
	if details.URL == "" {
		details.URL = results[0].URL
	}
	if details.Poster == "" {
		details.Poster = results[0].Poster
	}
	return json.Marshal(details)
}

func (c *Client) search(ctx context.Context, title string) ([]SearchResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}

	findURL := c.baseURL + "/find/?q=" + url.QueryEscape(title) + "&s=tt&ttype=ft"
	page, err := c.fetch(ctx, findURL)
	if err != nil {
		return nil, err
	}
	return parseFindPage(page, c.baseURL)
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

var titleIDRE = regexp.MustCompile(`/title/(tt\d+)`)

// parseFindPage extracts title results from a find page.
func parseFindPage(html []byte, baseURL string) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	results := []SearchResult{}
	doc.Find("li.find-result-item").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.ipc-metadata-list-summary-item__t").First()
		href, _ := link.Attr("href")
		m := titleIDRE.FindStringSubmatch(href)
		if m == nil {
			return
		}

		title := normSpace(link.Text())
		year := normSpace(s.Find("ul.ipc-metadata-list-summary-item__tl li").First().Text())
		var cast []string
		s.Find("ul.ipc-metadata-list-summary-item__stl li").Each(func(_ int, li *goquery.Selection) {
			if t := normSpace(li.Text()); t != "" {
				cast = append(cast, t)
			}
		})

		poster, _ := s.Find("img.ipc-image").First().Attr("src")

		results = append(results, SearchResult{
			ID:     m[1],
			Name:   joinNonEmpty(title, year, strings.Join(cast, ", ")),
			URL:    baseURL + "/title/" + m[1] + "/",
			Poster: strings.TrimSpace(poster),
		})
	})
	return results, nil
}

type jsonLD struct {
	Type          string          `json:"@type"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	URL           string          `json:"url"`
	Image         string          `json:"image"`
	DatePublished string          `json:"datePublished"`
	Rating        json.RawMessage `json:"aggregateRating"`
}

// parseTitlePage reads the structured data block of a title page.
func parseTitlePage(html []byte, baseURL string) (DetailsPayload, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return DetailsPayload{}, err
	}

	var (
		ld    jsonLD
		found bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if err := json.Unmarshal([]byte(s.Text()), &ld); err != nil {
			return true
		}
		found = true
		return false
	})

	details := DetailsPayload{}
	if found {
		details.Name = ld.Name
		details.Description = ld.Description
		details.URL = resolveURL(baseURL, ld.URL)
		details.Poster = ld.Image
		if len(ld.DatePublished) >= 4 {
			details.Year = ld.DatePublished[:4]
		}
		details.Rating = ratingValue(ld.Rating)
	}

	if details.Description == "" {
		if d, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			details.Description = strings.TrimSpace(d)
		}
	}
	if details.Name == "" {
		if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			details.Name = strings.TrimSpace(t)
		}
	}
	if details.Name == "" && details.Description == "" {
		return DetailsPayload{}, errors.New("title page has no structured data")
	}
	return details, nil
}

func ratingValue(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var r struct {
		RatingValue float64 `json:"ratingValue"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return 0
	}
	return r.RatingValue
}

func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return ref
	}
	b, err := url.Parse(base + "/")
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
