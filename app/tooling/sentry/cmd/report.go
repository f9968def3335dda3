package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/blocksentry/sentry/business/core/report"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <address>",
	Short: "Print the recent transactions of an address.",
	Args:  cobra.ExactArgs(1),
	Run:   reportRun,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func reportRun(cmd *cobra.Command, args []string) {
	address := normalizeAddress(args[0])

	var rows []report.Row
	if err := call(http.MethodGet, "/v1/report?address="+url.QueryEscape(address), nil, &rows); err != nil {
		log.Fatal(err)
	}

	fmt.Println("For Address:", address)
	printRows(os.Stdout, rows)
}

// normalizeAddress returns the checksummed form of a hex address. Anything
// that is not a hex address is passed through so the service reports on it.
func normalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return address
	}

	return common.HexToAddress(address).Hex()
}

func printRows(w io.Writer, rows []report.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No transactions found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HASH\tFROM\tTO\tVALUE (ETH)")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.HashShort, label(row.FromShort, row.FromName), label(row.ToShort, row.ToName), row.ValueETH)
	}
	tw.Flush()
}

func label(short string, name string) string {
	if name == "" {
		return short
	}
	return fmt.Sprintf("%s (%s)", short, name)
}
