// Copyright 2025 NiveshPath Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package external proxies financial news, market and currency data. Each
// provider fetches from a configured upstream URL and serves built-in
// reference data when no upstream is configured.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// NewsItem is one financial news entry.
type NewsItem struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
	Source  string `json:"source"`
	URL     string `json:"url"`
}

// IndexSnapshot is one market index reading.
type IndexSnapshot struct {
	Index         string  `json:"index"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	LastUpdated   string  `json:"lastUpdated"`
}

// Mover is one stock in the gainers/losers lists.
type Mover struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Change float64 `json:"change"`
}

// MarketData is the NSE/BSE snapshot.
type MarketData struct {
	NSE        IndexSnapshot `json:"nse"`
	BSE        IndexSnapshot `json:"bse"`
	TopGainers []Mover       `json:"topGainers"`
	TopLosers  []Mover       `json:"topLosers"`
}

// CurrencyData holds INR exchange rates.
type CurrencyData struct {
	Base        string             `json:"base"`
	Date        string             `json:"date"`
	Rates       map[string]float64 `json:"rates"`
	LastUpdated string             `json:"lastUpdated"`
}

// Client serves the three external data feeds.
type Client struct {
	httpClient  *http.Client
	newsURL     string
	marketURL   string
	currencyURL string
	logger      *zap.Logger
}

// NewClient builds a client. Empty URLs select the built-in data for the
// corresponding feed.
func NewClient(newsURL, marketURL, currencyURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		newsURL:     newsURL,
		marketURL:   marketURL,
		currencyURL: currencyURL,
		logger:      logger,
	}
}

// News returns financial news items.
func (c *Client) News(ctx context.Context) ([]NewsItem, error) {
	if c.newsURL == "" {
		return builtinNews(), nil
	}
	var items []NewsItem
	if err := c.fetch(ctx, c.newsURL, &items); err != nil {
		c.logger.Warn("News upstream failed, serving built-in data", zap.Error(err))
		return builtinNews(), nil
	}
	return items, nil
}

// Markets returns the NSE/BSE market snapshot.
func (c *Client) Markets(ctx context.Context) (*MarketData, error) {
	if c.marketURL == "" {
		return builtinMarketData(), nil
	}
	var data MarketData
	if err := c.fetch(ctx, c.marketURL, &data); err != nil {
		c.logger.Warn("Market upstream failed, serving built-in data", zap.Error(err))
		return builtinMarketData(), nil
	}
	return &data, nil
}

// Currency returns INR exchange rates.
func (c *Client) Currency(ctx context.Context) (*CurrencyData, error) {
	if c.currencyURL == "" {
		return builtinCurrencyData(), nil
	}
	var data CurrencyData
	if err := c.fetch(ctx, c.currencyURL, &data); err != nil {
		c.logger.Warn("Currency upstream failed, serving built-in data", zap.Error(err))
		return builtinCurrencyData(), nil
	}
	return &data, nil
}

func (c *Client) fetch(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func builtinNews() []NewsItem {
	return []NewsItem{
		{
			ID:      1,
			Title:   "RBI Announces New Monetary Policy",
			Summary: "The Reserve Bank of India has announced its latest monetary policy with changes to key interest rates.",
			Date:    "2025-05-08",
			Source:  "RBI Press Release",
			URL:     "https://www.rbi.org.in/news/monetary-policy-2025",
		},
		{
			ID:      2,
			Title:   "Financial Inclusion Initiative Launched",
			Summary: "RBI launches new initiative to improve financial literacy and inclusion across rural India.",
			Date:    "2025-05-05",
			Source:  "Financial Express",
			URL:     "https://www.financialexpress.com/rbi-initiative-2025",
		},
	}
}

func builtinMarketData() *MarketData {
	return &MarketData{
		NSE: IndexSnapshot{
			Index:         "NIFTY 50",
			Value:         22456.80,
			Change:        145.30,
			ChangePercent: 0.65,
			LastUpdated:   "2025-05-09T10:30:00Z",
		},
		BSE: IndexSnapshot{
			Index:         "SENSEX",
			Value:         73890.45,
			Change:        412.75,
			ChangePercent: 0.56,
			LastUpdated:   "2025-05-09T10:30:00Z",
		},
		TopGainers: []Mover{
			{Symbol: "HDFCBANK", Name: "HDFC Bank", Change: 2.34},
			{Symbol: "INFY", Name: "Infosys", Change: 1.89},
		},
		TopLosers: []Mover{
			{Symbol: "TATASTEEL", Name: "Tata Steel", Change: -1.45},
			{Symbol: "SUNPHARMA", Name: "Sun Pharma", Change: -0.98},
		},
	}
}

func builtinCurrencyData() *CurrencyData {
	return &CurrencyData{
		Base: "INR",
		Date: "2025-05-09",
		Rates: map[string]float64{
			"USD": 0.012,
			"EUR": 0.011,
			"GBP": 0.0094,
			"JPY": 1.82,
			"AUD": 0.018,
			"CAD": 0.016,
			"SGD": 0.016,
			"AED": 0.044,
		},
		LastUpdated: "2025-05-09T10:30:00Z",
	}
}
