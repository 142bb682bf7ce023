package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockBankGateway simulates an always-approving bank rail for
// non-production and testing paths.
type MockBankGateway struct {
	latency time.Duration
}

func NewMockBankGateway(latency time.Duration) *MockBankGateway {
	if latency <= 0 {
		latency = 150 * time.Millisecond
	}
	return &MockBankGateway{latency: latency}
}

func (g *MockBankGateway) Charge(ctx context.Context, _ Credentials, _ ChargeRequest) (ChargeResult, error) {
	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		return ChargeResult{}, ctx.Err()
	}
	return ChargeResult{Success: true, ProviderRef: "mock_" + uuid.NewString()}, nil
}

func (g *MockBankGateway) BalanceQuery(ctx context.Context, _ Credentials) (decimal.Decimal, error) {
	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	}
	return decimal.RequireFromString("1000000.00"), nil
}
