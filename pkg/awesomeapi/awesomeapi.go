// Package awesomeapi is a minimal client for the AwesomeAPI currency quote
// service (economia.awesomeapi.com.br).
package awesomeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	URL     string        `split_words:"true" default:"https://economia.awesomeapi.com.br"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("awesomeapi url is required")
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Quote is the parsed /json/last payload for one currency pair.
type Quote struct {
	Code string
	Bid  float64
	Ask  float64
	AsOf time.Time
}

type pairPayload struct {
	Code      string `json:"code"`
	Bid       string `json:"bid"`
	Ask       string `json:"ask"`
	Timestamp string `json:"timestamp"`
}

// Last fetches the latest quote of code (ISO 4217, e.g. "USD") against BRL.
func (c *Client) Last(ctx context.Context, code string) (Quote, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Quote{}, errors.New("currency code is empty")
	}

	endpoint := fmt.Sprintf("%s/json/last/%s-BRL", c.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("awesomeapi request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("awesomeapi response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("awesomeapi status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// The payload is keyed by the concatenated pair, e.g. {"USDBRL": {...}}.
	var payload map[string]pairPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Quote{}, fmt.Errorf("awesomeapi payload: %w", err)
	}
	pair, ok := payload[code+"BRL"]
	if !ok {
		return Quote{}, fmt.Errorf("awesomeapi payload has no %s-BRL pair", code)
	}

	bid, err := strconv.ParseFloat(pair.Bid, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("awesomeapi bid %q: %w", pair.Bid, err)
	}
	ask, err := strconv.ParseFloat(pair.Ask, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("awesomeapi ask %q: %w", pair.Ask, err)
	}

	asOf := time.Now()
	if ts, err := strconv.ParseInt(pair.Timestamp, 10, 64); err == nil {
		asOf = time.Unix(ts, 0)
	}

	return Quote{Code: code, Bid: bid, Ask: ask, AsOf: asOf}, nil
}
