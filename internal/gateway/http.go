package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"YieldRadar/internal/model"
)

// HTTPProvider implements Provider against a REST API returning the
// {status, data|error} envelope.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPProvider creates a provider with a bounded per-call timeout.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Name() string { return "http" }

// envelope is the payload-level success indicator wrapping every response.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func (p *HTTPProvider) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	u := p.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if p.APIKey != "" {
		req.Header.Set("X-API-Key", p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &RemoteError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode envelope: %v", err)}
	}
	if env.Status != "success" {
		return &RemoteError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: env.Error}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &RemoteError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode data: %v", err)}
	}
	return nil
}

func (p *HTTPProvider) PoolList(ctx context.Context, f PoolFilter) ([]model.PoolRecord, error) {
	q := url.Values{}
	if f.Source != "" {
		q.Set("source", f.Source)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinTVL > 0 {
		q.Set("min_tvl", strconv.FormatFloat(f.MinTVL, 'f', -1, 64))
	}
	if f.MinAPR > 0 {
		q.Set("min_apr", strconv.FormatFloat(f.MinAPR, 'f', -1, 64))
	}
	if f.MinVolume > 0 {
		q.Set("min_volume", strconv.FormatFloat(f.MinVolume, 'f', -1, 64))
	}
	if f.Token != "" {
		q.Set("token", f.Token)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(f.PerPage))
	}
	if f.SortBy != "" {
		q.Set("sort", f.SortBy)
	}
	var pools []model.PoolRecord
	if err := p.getJSON(ctx, "pools", "/api/v1/pools", q, &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

func (p *HTTPProvider) PoolDetail(ctx context.Context, poolID string) (*model.PoolRecord, error) {
	var pool model.PoolRecord
	if err := p.getJSON(ctx, "pool_detail", "/api/v1/pools/"+url.PathEscape(poolID), nil, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

func (p *HTTPProvider) PoolHistory(ctx context.Context, poolID string, days int, interval string) ([]model.PoolHistoryPoint, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	if interval != "" {
		q.Set("interval", interval)
	}
	var points []model.PoolHistoryPoint
	if err := p.getJSON(ctx, "pool_history", "/api/v1/pools/"+url.PathEscape(poolID)+"/history", q, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (p *HTTPProvider) SimulateInvestment(ctx context.Context, poolID string, amount float64, days int) (*model.SimulationResult, error) {
	q := url.Values{}
	q.Set("pool_id", poolID)
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	q.Set("days", strconv.Itoa(days))
	var sim model.SimulationResult
	if err := p.getJSON(ctx, "simulate", "/api/v1/simulate", q, &sim); err != nil {
		return nil, err
	}
	return &sim, nil
}

func (p *HTTPProvider) TokenSentiment(ctx context.Context, symbol string) (*model.SentimentSnapshot, error) {
	var snap model.SentimentSnapshot
	if err := p.getJSON(ctx, "sentiment", "/api/v1/sentiment/"+url.PathEscape(symbol), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (p *HTTPProvider) TokenPrice(ctx context.Context, symbol string) (*model.TokenPrice, error) {
	var price model.TokenPrice
	if err := p.getJSON(ctx, "price", "/api/v1/prices/"+url.PathEscape(symbol), nil, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

func (p *HTTPProvider) MarketConditions(ctx context.Context) (*model.MarketConditions, error) {
	var mc model.MarketConditions
	if err := p.getJSON(ctx, "market", "/api/v1/market", nil, &mc); err != nil {
		return nil, err
	}
	return &mc, nil
}
