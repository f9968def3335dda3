package cmd

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/blocksentry/sentry/business/core/gas"
	"github.com/blocksentry/sentry/business/core/monitor"
	"github.com/spf13/cobra"
)

var profile string

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print the savings estimate for a transaction profile.",
	Run:   estimateRun,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the transaction profiles.",
	Run:   profilesRun,
}

var selectCmd = &cobra.Command{
	Use:   "select <profile>",
	Short: "Change the profile the monitor estimates for.",
	Args:  cobra.ExactArgs(1),
	Run:   selectRun,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(selectCmd)
	estimateCmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile key, the selected profile when empty.")
}

func estimateRun(cmd *cobra.Command, args []string) {
	path := "/v1/gas/estimate"
	if profile != "" {
		path += "?profile=" + url.QueryEscape(profile)
	}

	var est gas.Estimate
	if err := call(http.MethodGet, path, nil, &est); err != nil {
		log.Fatal(err)
	}

	printEstimate(os.Stdout, est)
}

func profilesRun(cmd *cobra.Command, args []string) {
	var profiles []gas.Profile
	if err := call(http.MethodGet, "/v1/gas/profiles", nil, &profiles); err != nil {
		log.Fatal(err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tGAS\tDESCRIPTION")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Key, p.Label, p.GasUnits, p.Description)
	}
	tw.Flush()
}

func selectRun(cmd *cobra.Command, args []string) {
	var snap monitor.Snapshot
	if err := call(http.MethodPut, "/v1/gas/profile/"+url.PathEscape(args[0]), nil, &snap); err != nil {
		log.Fatal(err)
	}

	printSnapshot(os.Stdout, snap)
}
