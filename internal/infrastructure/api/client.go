// Package api implements the REST side of the backend contract. Shapes
// mirror the dashboard endpoints; the client only decodes, it never owns
// them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/royen99/cryptobot-monitor/internal/domain"
)

const requestTimeout = 10 * time.Second

// Client talks to the dashboard backend. A token bucket caps the request
// rate so tick-driven refresh bursts cannot outrun the throttle layer.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		logger:  logger,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return errors.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

func (c *Client) Status(ctx context.Context) (domain.BotStatus, error) {
	// The endpoint returns null before the bot has ever reported in.
	var st *domain.BotStatus
	if err := c.getJSON(ctx, "/api/status", &st); err != nil {
		return domain.BotStatus{}, err
	}
	if st == nil {
		return domain.BotStatus{}, nil
	}
	return *st, nil
}

func (c *Client) Badges(ctx context.Context) ([]domain.MarketSnapshot, error) {
	var out struct {
		Coins []domain.MarketSnapshot `json:"coins"`
	}
	if err := c.getJSON(ctx, "/api/coins/badges", &out); err != nil {
		return nil, err
	}
	return out.Coins, nil
}

func (c *Client) Balances(ctx context.Context) ([]domain.BalanceEntry, error) {
	var out []domain.BalanceEntry
	if err := c.getJSON(ctx, "/api/balances", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Summary(ctx context.Context) (domain.PortfolioSummary, error) {
	var out domain.PortfolioSummary
	if err := c.getJSON(ctx, "/api/portfolio/summary", &out); err != nil {
		return domain.PortfolioSummary{}, err
	}
	return out, nil
}

func (c *Client) Trades(ctx context.Context, limit int) ([]domain.Trade, error) {
	var out struct {
		Trades []domain.Trade `json:"trades"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/trades?limit=%d", limit), &out); err != nil {
		return nil, err
	}
	return out.Trades, nil
}

func (c *Client) States(ctx context.Context) ([]domain.TradingState, error) {
	var out []domain.TradingState
	if err := c.getJSON(ctx, "/api/state", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PriceHistory(ctx context.Context, symbol string, hours int) (domain.PriceSeries, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("hours", fmt.Sprintf("%d", hours))

	var out domain.PriceSeries
	if err := c.getJSON(ctx, "/api/price_history?"+q.Encode(), &out); err != nil {
		return domain.PriceSeries{}, err
	}
	return out, nil
}

func (c *Client) ConfigInfo(ctx context.Context) (domain.ConfigInfo, error) {
	var out domain.ConfigInfo
	if err := c.getJSON(ctx, "/api/config/info", &out); err != nil {
		return domain.ConfigInfo{}, err
	}
	return out, nil
}

// SubmitCommand posts a manual BUY/SELL/CANCEL. On a non-2xx response the
// body is surfaced verbatim as the error detail; that text is the only
// error users ever see.
func (c *Client) SubmitCommand(ctx context.Context, cmd domain.ManualCommand) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return errors.Wrap(err, "encode command")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/manual_commands", bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "POST /api/manual_commands")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return errors.Errorf("manual command rejected: %s", strings.TrimSpace(string(body)))
	}
	return nil
}
