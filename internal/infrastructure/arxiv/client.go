// Package arxiv queries the arXiv export API and maps Atom entries to papers.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/avast/retry-go/v4"
)

var _ output.PaperSearchPort = (*Client)(nil)

const (
	DefaultEndpoint = "http://export.arxiv.org/api/query"

	publishedLayout = "2006-01-02T15:04:05Z"
	notAvailable    = "N/A"
	maxBodySize     = 8 << 20
)

type Config struct {
	Endpoint   string
	MaxResults int
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
	Logger     output.LoggerPort
	Metrics    output.MetricsPort
	HTTPClient *http.Client
}

func DefaultConfig() Config {
	return Config{
		Endpoint:   DefaultEndpoint,
		MaxResults: entity.MaxSearchResults,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryWait:  5 * time.Second,
	}
}

type Client struct {
	endpoint   string
	maxResults int
	maxRetries int
	retryWait  time.Duration
	http       *http.Client
	logger     output.LoggerPort
	metrics    output.MetricsPort
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = entity.MaxSearchResults
	}
	if cfg.Metrics == nil {
		cfg.Metrics = output.NopMetrics{}
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		maxResults: cfg.MaxResults,
		maxRetries: cfg.MaxRetries,
		retryWait:  cfg.RetryWait,
		http:       httpClient,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

type feed struct {
	XMLName xml.Name `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []entry  `xml:"http://www.w3.org/2005/Atom entry"`
}

type entry struct {
	ID        string   `xml:"http://www.w3.org/2005/Atom id"`
	Title     string   `xml:"http://www.w3.org/2005/Atom title"`
	Summary   string   `xml:"http://www.w3.org/2005/Atom summary"`
	Published string   `xml:"http://www.w3.org/2005/Atom published"`
	Authors   []author `xml:"http://www.w3.org/2005/Atom author"`
}

type author struct {
	Name string `xml:"http://www.w3.org/2005/Atom name"`
}

// Search returns up to entity.MaxSearchResults papers for the topic, newest
// first, keeping only those whose publication year satisfies the comparison.
// Transport failures wrap entity.ErrSearchUnavailable and undecodable bodies
// wrap entity.ErrSearchResponse.
func (c *Client) Search(ctx context.Context, q entity.SearchQuery) (papers []entity.Paper, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveSearch(start, len(papers), err != nil)
	}()

	body, err := c.fetch(ctx, q.Topic)
	if err != nil {
		return nil, err
	}

	var f feed
	if err := xml.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSearchResponse, err)
	}

	papers = make([]entity.Paper, 0, len(f.Entries))
	for _, e := range f.Entries {
		p, ok := toPaper(e, q)
		if !ok {
			continue
		}
		papers = append(papers, p)
		if len(papers) == entity.MaxSearchResults {
			break
		}
	}

	c.debug("arXiv search completed",
		"topic", q.Topic,
		"entries", len(f.Entries),
		"papers", len(papers),
		"durationMs", time.Since(start).Milliseconds(),
	)
	return papers, nil
}

func (c *Client) fetch(ctx context.Context, topic string) ([]byte, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+topic)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(c.maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	target := c.endpoint + "?" + params.Encode()

	var body []byte
	err := retry.Do(
		func() error {
			b, err := c.get(ctx, target)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)+1),
		retry.Delay(c.retryWait),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if c.logger != nil {
				c.logger.Warn("Retrying arXiv request", "attempt", n+1, "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSearchUnavailable, err)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %s", resp.Status)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, retry.Unrecoverable(err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func toPaper(e entry, q entity.SearchQuery) (entity.Paper, bool) {
	if e.Published == "" {
		return entity.Paper{}, false
	}
	published, err := time.Parse(publishedLayout, e.Published)
	if err != nil {
		return entity.Paper{}, false
	}
	year := published.Year()
	if !q.Comparison.Matches(year, q.Year) {
		return entity.Paper{}, false
	}

	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		authors = append(authors, orNA(cleanText(a.Name)))
	}

	return entity.Paper{
		Title:     orNA(cleanText(e.Title)),
		Authors:   authors,
		Year:      year,
		Link:      orNA(collapseSpace(e.ID)),
		Summary:   orNA(cleanText(e.Summary)),
		Citations: entity.CitationsUnavailable,
	}, true
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
