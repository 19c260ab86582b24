// Package catalog_sync keeps the local cosmetics catalog aligned with the
// upstream cosmetics API. The sync never blocks settlements: it runs on its
// own schedule, writes through the catalog repository, and records every run
// in the sync log.
package catalog_sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cosmetic-storefront/internal/config"
)

// flexString tolerates the upstream feed's habit of sending either a plain
// string or an object with a "value" field for type and rarity
type flexString struct {
	Value string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value = s
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	f.Value = obj.Value
	return nil
}

// FeedItem is one cosmetic as the upstream API describes it
type FeedItem struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Type   flexString `json:"type"`
	Rarity flexString `json:"rarity"`
	Added  string     `json:"added"`
	Images struct {
		Icon      string `json:"icon"`
		SmallIcon string `json:"smallIcon"`
	} `json:"images"`
	Bundle *struct {
		ID string `json:"id"`
	} `json:"bundle"`
}

// ShopEntry is one storefront offer: a price attached to one or more items
type ShopEntry struct {
	RegularPrice *int64     `json:"regularPrice"`
	FinalPrice   *int64     `json:"finalPrice"`
	Items        []FeedItem `json:"items"`
}

type shopSection struct {
	Entries []ShopEntry `json:"entries"`
}

// ShopFeed is the upstream shop response flattened into one entry list.
// The upstream nests entries under several rotating buckets; callers only
// care about the union.
type ShopFeed struct {
	Entries []ShopEntry
}

type shopPayload struct {
	Entries         []ShopEntry  `json:"entries"`
	Featured        *shopSection `json:"featured"`
	Daily           *shopSection `json:"daily"`
	SpecialFeatured *shopSection `json:"specialFeatured"`
	SpecialDaily    *shopSection `json:"specialDaily"`
	Vaulted         *shopSection `json:"vaulted"`
	Offers          *shopSection `json:"offers"`
}

func (p *shopPayload) flatten() *ShopFeed {
	feed := &ShopFeed{Entries: p.Entries}
	for _, section := range []*shopSection{p.Featured, p.Daily, p.SpecialFeatured, p.SpecialDaily, p.Vaulted, p.Offers} {
		if section != nil {
			feed.Entries = append(feed.Entries, section.Entries...)
		}
	}
	return feed
}

// Client fetches catalog data from the upstream cosmetics API, falling back
// to a secondary base URL when the primary fails
type Client struct {
	httpClient  *http.Client
	baseURL     string
	fallbackURL string
	logger      *slog.Logger
}

// NewClient creates an upstream API client from the sync configuration
func NewClient(cfg *config.CatalogSyncConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:     cfg.BaseURL,
		fallbackURL: cfg.FallbackBaseURL,
		logger:      logger,
	}
}

// urls returns the candidate URLs for a path, primary first
func (c *Client) urls(path string) []string {
	urls := []string{c.baseURL + path}
	if c.fallbackURL != "" && c.fallbackURL != c.baseURL {
		urls = append(urls, c.fallbackURL+path)
	}
	return urls
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	var lastErr error
	for _, url := range c.urls(path) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to build catalog request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("Catalog feed request failed, trying next URL", "url", url, "error", err)
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			c.logger.Warn("Catalog feed returned non-OK status, trying next URL", "url", url, "status", resp.StatusCode)
			lastErr = fmt.Errorf("catalog feed %s returned status %d", url, resp.StatusCode)
			continue
		}

		if err := json.Unmarshal(body, out); err != nil {
			c.logger.Warn("Catalog feed returned undecodable body, trying next URL", "url", url, "error", err)
			lastErr = err
			continue
		}
		return nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no catalog feed URL configured")
	}
	return fmt.Errorf("all catalog feed URLs failed: %w", lastErr)
}

// FetchCosmetics retrieves the full cosmetics catalog
func (c *Client) FetchCosmetics(ctx context.Context) ([]FeedItem, error) {
	var envelope struct {
		Data []FeedItem `json:"data"`
	}
	if err := c.getJSON(ctx, "/cosmetics/br", &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// FetchNewCosmetics retrieves the cosmetics the upstream flags as new
func (c *Client) FetchNewCosmetics(ctx context.Context) ([]FeedItem, error) {
	var envelope struct {
		Data []FeedItem `json:"data"`
	}
	if err := c.getJSON(ctx, "/cosmetics/br?new=true", &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// FetchShop retrieves the current shop rotation. The upstream sometimes
// nests the payload one level deeper, so both shapes are accepted.
func (c *Client) FetchShop(ctx context.Context) (*ShopFeed, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.getJSON(ctx, "/shop", &envelope); err != nil {
		return nil, err
	}

	var payload shopPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode shop payload: %w", err)
	}
	feed := payload.flatten()
	if len(feed.Entries) > 0 {
		return feed, nil
	}

	var nested struct {
		Data shopPayload `json:"data"`
	}
	if err := json.Unmarshal(envelope.Data, &nested); err == nil {
		if inner := nested.Data.flatten(); len(inner.Entries) > 0 {
			return inner, nil
		}
	}
	return feed, nil
}
