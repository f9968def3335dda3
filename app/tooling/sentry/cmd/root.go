// Package cmd contains the sentry command line client.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/blocksentry/sentry/business/web/errs"
	"github.com/spf13/cobra"
)

var (
	serviceURL string
	timeout    time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&serviceURL, "url", "u", "http://localhost:3000", "Url of the monitor service.")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 40*time.Second, "Request timeout.")
}

var rootCmd = &cobra.Command{
	Use:   "sentry",
	Short: "Watch ethereum gas prices and inspect address activity",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// call performs a request against the service and decodes the response into
// out. Error responses are returned using the message sent by the service.
func call(method string, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimSuffix(serviceURL, "/")+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er errs.Response
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
			return fmt.Errorf("%s %s: %s", method, path, resp.Status)
		}
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, er.Error)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
