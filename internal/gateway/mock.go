package gateway

import (
	"context"
	"fmt"
	"sync"

	"YieldRadar/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// Calls counts provider invocations per endpoint; Fail marks endpoints that
// should return a transport failure.
type MockProvider struct {
	mu sync.Mutex

	Pools      []model.PoolRecord
	History    []model.PoolHistoryPoint
	Simulation *model.SimulationResult
	Sentiments map[string]float64
	Prices     map[string]model.TokenPrice
	Conditions model.MarketConditions

	Fail  map[string]bool
	Calls map[string]int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sentiments: make(map[string]float64),
		Prices:     make(map[string]model.TokenPrice),
		Fail:       make(map[string]bool),
		Calls:      make(map[string]int),
	}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) record(endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[endpoint]++
	if m.Fail[endpoint] {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("mock failure")}
	}
	return nil
}

func (m *MockProvider) PoolList(_ context.Context, _ PoolFilter) ([]model.PoolRecord, error) {
	if err := m.record("pools"); err != nil {
		return nil, err
	}
	return m.Pools, nil
}

func (m *MockProvider) PoolDetail(_ context.Context, poolID string) (*model.PoolRecord, error) {
	if err := m.record("pool_detail"); err != nil {
		return nil, err
	}
	for i := range m.Pools {
		if m.Pools[i].ID == poolID {
			return &m.Pools[i], nil
		}
	}
	return nil, &RemoteError{Endpoint: "pool_detail", StatusCode: 404, Message: "pool not found"}
}

func (m *MockProvider) PoolHistory(_ context.Context, _ string, _ int, _ string) ([]model.PoolHistoryPoint, error) {
	if err := m.record("pool_history"); err != nil {
		return nil, err
	}
	return m.History, nil
}

func (m *MockProvider) SimulateInvestment(_ context.Context, poolID string, amount float64, days int) (*model.SimulationResult, error) {
	if err := m.record("simulate"); err != nil {
		return nil, err
	}
	if m.Simulation != nil {
		return m.Simulation, nil
	}
	return &model.SimulationResult{PoolID: poolID, Amount: amount, Days: days}, nil
}

func (m *MockProvider) TokenSentiment(_ context.Context, symbol string) (*model.SentimentSnapshot, error) {
	if err := m.record("sentiment"); err != nil {
		return nil, err
	}
	score, ok := m.Sentiments[symbol]
	if !ok {
		return nil, &RemoteError{Endpoint: "sentiment", StatusCode: 404, Message: "no sentiment for " + symbol}
	}
	return &model.SentimentSnapshot{Symbol: symbol, Score: score}, nil
}

func (m *MockProvider) TokenPrice(_ context.Context, symbol string) (*model.TokenPrice, error) {
	if err := m.record("price"); err != nil {
		return nil, err
	}
	price, ok := m.Prices[symbol]
	if !ok {
		return nil, &RemoteError{Endpoint: "price", StatusCode: 404, Message: "no price for " + symbol}
	}
	return &price, nil
}

func (m *MockProvider) MarketConditions(_ context.Context) (*model.MarketConditions, error) {
	if err := m.record("market"); err != nil {
		return nil, err
	}
	mc := m.Conditions
	return &mc, nil
}

// CallCount returns how many provider calls endpoint has received.
func (m *MockProvider) CallCount(endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[endpoint]
}
