package cmd

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the assistant a question.",
	Args:  cobra.MinimumNArgs(1),
	Run:   askRun,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func askRun(cmd *cobra.Command, args []string) {
	req := struct {
		Message string `json:"message"`
	}{
		Message: strings.Join(args, " "),
	}

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := call(http.MethodPost, "/api/gemini", req, &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Reply)
}
