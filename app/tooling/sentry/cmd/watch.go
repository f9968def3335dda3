package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/blocksentry/sentry/business/core/activity"
	"github.com/blocksentry/sentry/business/core/monitor"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchActivity bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream gas updates or the activity feed.",
	Run:   watchRun,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&watchActivity, "activity", "a", false, "Stream the demo activity feed instead of gas updates.")
}

func watchRun(cmd *cobra.Command, args []string) {
	path := "/v1/gas/events"
	if watchActivity {
		path = "/v1/activity/events"
	}

	c, _, err := websocket.DefaultDialer.Dial(wsURL(serviceURL)+path, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-shutdown
		c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.Close()
	}()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}

		if watchActivity {
			var p activity.Payload
			if err := json.Unmarshal(msg, &p); err != nil {
				continue
			}
			fmt.Printf("%-12s %-8s risk %s\n", p.Address, p.Amount, p.Risk)
			continue
		}

		var snap monitor.Snapshot
		if err := json.Unmarshal(msg, &snap); err != nil || snap.Sample == nil {
			continue
		}

		s := snap.Sample
		line := fmt.Sprintf("%s  safe %v  average %v  fast %v gwei", s.ObservedAt.Local().Format("15:04:05"), s.Safe, s.Average, s.Fast)
		if snap.Estimate != nil {
			line += fmt.Sprintf("  save %.6f ETH on %s", snap.Estimate.EtherDelta, snap.Estimate.Profile.Key)
		}
		fmt.Println(line)
	}
}

// wsURL converts an http service url to its websocket form.
func wsURL(u string) string {
	u = strings.TrimSuffix(u, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
