// Package holiday materializes synthetic calendar events from the
// date.nager.at public-holiday feed. Holiday events carry no id and are
// never written to the document store.
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"daybook/internal/config"
	"daybook/internal/entity"
)

const defaultBaseURL = "https://date.nager.at/api/v3/PublicHolidays"

// PublicHoliday is one entry of the feed response.
type PublicHoliday struct {
	Date      string `json:"date"` // YYYY-MM-DD
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// Client fetches and filters public holidays. Country and allow-list are
// guarded by a mutex so the config watcher can swap them at runtime.
type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.RWMutex
	country   string
	allowList []string
}

// NewClient creates a feed client from holiday config.
func NewClient(cfg config.HolidayConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: timeout},
		country:   cfg.Country,
		allowList: cfg.AllowList,
	}
}

// UpdateFilters swaps the country and allow-list, used on config reload.
func (c *Client) UpdateFilters(country string, allowList []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if country != "" {
		c.country = country
	}
	c.allowList = allowList
}

// Events returns synthetic all-day events for the allow-listed holidays of
// the current and next year, deduplicated by (name, date).
func (c *Client) Events(ctx context.Context, now time.Time) ([]entity.Event, error) {
	c.mu.RLock()
	country := c.country
	allowList := append([]string(nil), c.allowList...)
	c.mu.RUnlock()

	var combined []PublicHoliday
	for _, year := range []int{now.Year(), now.Year() + 1} {
		holidays, err := c.fetchYear(ctx, year, country)
		if err != nil {
			return nil, err
		}
		combined = append(combined, holidays...)
	}

	seen := make(map[string]bool)
	var events []entity.Event
	for _, h := range combined {
		if !allowed(allowList, h.LocalName) {
			continue
		}
		key := h.LocalName + "-" + h.Date
		if seen[key] {
			continue
		}
		seen[key] = true

		day, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %q has malformed date %q: %w", h.LocalName, h.Date, err)
		}
		start := day.UTC()
		end := start.Add(24*time.Hour - time.Nanosecond)

		events = append(events, entity.Event{
			Title:    h.LocalName,
			Start:    start,
			End:      &end,
			Category: entity.CategoryHoliday,
			AllDay:   true,
		})
	}

	return events, nil
}

// fetchYear GETs one year of the feed.
func (c *Client) fetchYear(ctx context.Context, year int, country string) ([]PublicHoliday, error) {
	url := fmt.Sprintf("%s/%d/%s", c.baseURL, year, country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build holiday request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday feed returned %s for %d/%s", resp.Status, year, country)
	}

	var holidays []PublicHoliday
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("failed to decode holiday feed: %w", err)
	}
	return holidays, nil
}

// allowed matches a holiday name against the allow-list. Entries are
// doublestar globs; a plain name matches itself.
func allowed(patterns []string, name string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
