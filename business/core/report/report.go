// Package report provides the transaction report for an address.
package report

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/blocksentry/sentry/foundation/etherscan"
	"github.com/ethereum/go-ethereum/params"
)

// ErrAddressRequired is returned when the address is empty or blank.
var ErrAddressRequired = errors.New("address is required")

// Lister represents the upstream behavior required to list transactions.
type Lister interface {
	TxList(ctx context.Context, address string) ([]etherscan.Transaction, error)
}

// Namer represents the behavior required to name well known addresses.
type Namer interface {
	Lookup(address string) string
}

// Core manages the report query.
type Core struct {
	lister Lister
	names  Namer
}

// NewCore constructs a core for report api access. The namer is optional.
func NewCore(lister Lister, names Namer) *Core {
	return &Core{
		lister: lister,
		names:  names,
	}
}

// Query returns the raw transaction list for the address. A blank address is
// rejected before any upstream call.
func (c *Core) Query(ctx context.Context, address string) ([]etherscan.Transaction, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}

	txs, err := c.lister.TxList(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("query: address[%s]: %w", address, err)
	}

	return txs, nil
}

// Report runs the query and formats the rows for display.
func (c *Core) Report(ctx context.Context, address string) ([]Row, error) {
	txs, err := c.Query(ctx, address)
	if err != nil {
		return nil, err
	}

	rows := Rows(txs)
	if c.names != nil {
		for i := range rows {
			rows[i].FromName = c.names.Lookup(rows[i].From)
			rows[i].ToName = c.names.Lookup(rows[i].To)
		}
	}

	return rows, nil
}

// =============================================================================

// Row is a transaction formatted for a table.
type Row struct {
	Hash      string `json:"hash"`
	HashShort string `json:"hash_short"`
	From      string `json:"from"`
	FromShort string `json:"from_short"`
	FromName  string `json:"from_name,omitempty"`
	To        string `json:"to"`
	ToShort   string `json:"to_short"`
	ToName    string `json:"to_name,omitempty"`
	ValueETH  string `json:"value_eth"`
}

// Rows formats the transactions in the order provided.
func Rows(txs []etherscan.Transaction) []Row {
	rows := make([]Row, len(txs))
	for i, tx := range txs {
		rows[i] = Row{
			Hash:      tx.Hash,
			HashShort: Elide(tx.Hash),
			From:      tx.From,
			FromShort: Elide(tx.From),
			To:        tx.To,
			ToShort:   Elide(tx.To),
			ValueETH:  FormatEther(tx.Value),
		}
	}

	return rows
}

// Elide shortens long hex strings to their first 6 and last 4 characters.
func Elide(s string) string {
	const head, tail = 6, 4

	if len(s) <= head+tail {
		return s
	}

	return s[:head] + "..." + s[len(s)-tail:]
}

// FormatEther converts a base 10 wei amount to ether with 6 decimals. The
// value is divided by 1e18 first, so 1500000000000000000 formats as 1.500000
// and not as the raw wei count. An amount that does not parse formats as zero.
func FormatEther(wei string) string {
	v, ok := new(big.Int).SetString(strings.TrimSpace(wei), 10)
	if !ok {
		return "0.000000"
	}

	eth := new(big.Float).Quo(new(big.Float).SetInt(v), big.NewFloat(params.Ether))
	return eth.Text('f', 6)
}
