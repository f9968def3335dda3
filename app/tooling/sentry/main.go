// This program is a command line client for the gas monitor service.
package main

import "github.com/blocksentry/sentry/app/tooling/sentry/cmd"

func main() {
	cmd.Execute()
}
