package monitor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/blocksentry/sentry/business/core/gas"
	"github.com/blocksentry/sentry/foundation/etherscan"
)

// Source represents the upstream behavior required to poll gas prices and
// the ether price quote.
type Source interface {
	GasOracle(ctx context.Context) (etherscan.GasOracle, error)
	EthPrice(ctx context.Context) (etherscan.EthPrice, error)
}

// Fetcher normalizes upstream responses into typed values.
type Fetcher struct {
	src Source
	now func() time.Time
}

// NewFetcher constructs a fetcher for the specified source.
func NewFetcher(src Source, now func() time.Time) *Fetcher {
	if now == nil {
		now = time.Now
	}

	return &Fetcher{
		src: src,
		now: now,
	}
}

// FetchSample queries the gas oracle. A tier that does not parse fails the
// whole sample.
func (f *Fetcher) FetchSample(ctx context.Context) (gas.Sample, error) {
	oracle, err := f.src.GasOracle(ctx)
	if err != nil {
		return gas.Sample{}, fmt.Errorf("gas oracle: %w", err)
	}

	var s gas.Sample
	tiers := []struct {
		name  string
		value string
		dest  *float64
	}{
		{"SafeGasPrice", oracle.SafeGasPrice, &s.Safe},
		{"ProposeGasPrice", oracle.ProposeGasPrice, &s.Average},
		{"FastGasPrice", oracle.FastGasPrice, &s.Fast},
		{"suggestBaseFee", oracle.SuggestBaseFee, &s.BaseFee},
	}

	for _, tier := range tiers {
		v, err := strconv.ParseFloat(tier.value, 64)
		if err != nil {
			return gas.Sample{}, fmt.Errorf("parsing %s %q: %w", tier.name, tier.value, err)
		}
		*tier.dest = v
	}
	s.ObservedAt = f.now()

	return s, nil
}

// FetchRate queries the ether price and returns the USD rate.
func (f *Fetcher) FetchRate(ctx context.Context) (float64, error) {
	price, err := f.src.EthPrice(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth price: %w", err)
	}

	rate, err := strconv.ParseFloat(price.ETHUSD, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ethusd %q: %w", price.ETHUSD, err)
	}

	if rate <= 0 {
		return 0, fmt.Errorf("invalid ethusd rate %v", rate)
	}

	return rate, nil
}
