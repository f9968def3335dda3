// Package gas contains the gas price model, the rolling history used for
// charting and the savings estimator.
package gas

import (
	"time"

	"github.com/ethereum/go-ethereum/params"
)

// Sample is a single observation of the gas oracle. Prices are in gwei.
type Sample struct {
	Safe       float64   `json:"safe"`
	Average    float64   `json:"average"`
	Fast       float64   `json:"fast"`
	BaseFee    float64   `json:"base_fee"`
	ObservedAt time.Time `json:"observed_at"`
}

// CostAt returns the cost in ether of spending gasUnits at the specified
// price in gwei.
func CostAt(tierGwei float64, gasUnits uint64) float64 {
	return tierGwei * float64(gasUnits) * params.GWei / params.Ether
}
