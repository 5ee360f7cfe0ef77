package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"AraDetector/internal/domain/models"
	drepo "AraDetector/internal/domain/repository"
	"AraDetector/internal/service/ratelimit"
	"AraDetector/pkg/config"
	"AraDetector/pkg/logger"
)

const sourceWatchlist = "watchlist"

// Client reads order book, broker summary, history, profile and watchlist data over HTTP.
type Client struct {
	base  *httpBase
	paths pathSet
}

type pathSet struct {
	orderBook, broker, history, profile, watchlist string
}

func New(cfg *config.Config, limiter *ratelimit.Limiter, l *logger.Logger) (*Client, error) {
	base, err := newHTTPBase(cfg, limiter, l, []string{
		models.SourceOrderBook, models.SourceBroker, models.SourceHistory, models.SourceProfile, sourceWatchlist,
	})
	if err != nil {
		return nil, err
	}
	p := cfg.MarketData.Paths
	return &Client{
		base: base,
		paths: pathSet{
			orderBook: p.OrderBook,
			broker:    p.BrokerSummary,
			history:   p.History,
			profile:   p.Profile,
			watchlist: p.Watchlist,
		},
	}, nil
}

// envelope is the upstream response wrapper.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) OrderBook(ctx context.Context, instrument string) (*models.RawOrderBook, error) {
	var out models.RawOrderBook
	if err := c.fetchObject(ctx, models.SourceOrderBook, expand(c.paths.orderBook, instrument), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BrokerSummary(ctx context.Context, instrument, date string) (*models.RawBrokerSummary, error) {
	q := map[string][]string{"from": {date}, "to": {date}}
	var out models.RawBrokerSummary
	if err := c.fetchObject(ctx, models.SourceBroker, expand(c.paths.broker, instrument), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context, instrument, from, to string, limit int) ([]models.RawSession, error) {
	q := map[string][]string{"from": {from}, "to": {to}, "limit": {strconv.Itoa(limit)}}
	var out []models.RawSession
	if err := c.fetchList(ctx, models.SourceHistory, expand(c.paths.history, instrument), q, &out); err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Client) Profile(ctx context.Context, instrument string) (*models.RawProfile, error) {
	var out models.RawProfile
	if err := c.fetchObject(ctx, models.SourceProfile, expand(c.paths.profile, instrument), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Watchlist(ctx context.Context) ([]models.RawWatchlistItem, error) {
	var out []models.RawWatchlistItem
	if err := c.fetchList(ctx, sourceWatchlist, c.paths.watchlist, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchObject decodes the data member, or the whole body when there is none.
func (c *Client) fetchObject(ctx context.Context, source, path string, q map[string][]string, dest interface{}) error {
	data, err := c.fetchData(ctx, source, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", source, err)
	}
	return nil
}

// fetchList accepts data as a bare array or as an object holding the array under "result".
func (c *Client) fetchList(ctx context.Context, source, path string, q map[string][]string, dest interface{}) error {
	data, err := c.fetchData(ctx, source, path, q)
	if err != nil {
		return err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '{' {
		var wrapped struct {
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return fmt.Errorf("decode %s: %w", source, err)
		}
		data = wrapped.Result
		if len(data) == 0 {
			return nil
		}
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", source, err)
	}
	return nil
}

func (c *Client) fetchData(ctx context.Context, source, path string, q map[string][]string) (json.RawMessage, error) {
	var raw []byte
	if err := c.base.getJSON(ctx, source, path, q, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
			return env.Data, nil
		}
	}
	return raw, nil
}

var _ drepo.MarketData = (*Client)(nil)
