package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/blocksentry/sentry/business/core/gas"
	"github.com/blocksentry/sentry/business/core/monitor"
	"github.com/spf13/cobra"
)

var refresh bool

var gasCmd = &cobra.Command{
	Use:   "gas",
	Short: "Print the current gas prices and savings estimate.",
	Run:   gasRun,
}

func init() {
	rootCmd.AddCommand(gasCmd)
	gasCmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Poll the gas oracle before printing.")
}

func gasRun(cmd *cobra.Command, args []string) {
	method, path := http.MethodGet, "/v1/gas/current"
	if refresh {
		method, path = http.MethodPost, "/v1/gas/refresh"
	}

	var snap monitor.Snapshot
	if err := call(method, path, nil, &snap); err != nil {
		log.Fatal(err)
	}

	printSnapshot(os.Stdout, snap)
}

func printSnapshot(w io.Writer, snap monitor.Snapshot) {
	if snap.Sample == nil {
		fmt.Fprintln(w, "No gas sample available yet.")
		return
	}

	s := snap.Sample
	fmt.Fprintf(w, "Updated:  %s\n", s.ObservedAt.Local().Format("15:04:05"))
	fmt.Fprintf(w, "Safe:     %v gwei\n", s.Safe)
	fmt.Fprintf(w, "Average:  %v gwei\n", s.Average)
	fmt.Fprintf(w, "Fast:     %v gwei\n", s.Fast)
	fmt.Fprintf(w, "Base fee: %v gwei\n", s.BaseFee)
	if snap.EthUSD > 0 {
		fmt.Fprintf(w, "ETH/USD:  %.2f\n", snap.EthUSD)
	}

	if snap.Estimate != nil {
		fmt.Fprintln(w)
		printEstimate(w, *snap.Estimate)
	}
}

func printEstimate(w io.Writer, est gas.Estimate) {
	fmt.Fprintf(w, "Profile:  %s (%d gas)\n", est.Profile.Label, est.Profile.GasUnits)
	fmt.Fprintf(w, "Fast:     %.6f ETH\n", est.FastCost)
	fmt.Fprintf(w, "Safe:     %.6f ETH\n", est.SafeCost)
	fmt.Fprintf(w, "Savings:  %.6f ETH", est.EtherDelta)
	if est.USDDelta > 0 {
		fmt.Fprintf(w, " ($%.2f)", est.USDDelta)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Window:   %s (time of day heuristic)\n", est.WindowLabel)
}
