package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blocksentry/sentry/foundation/gemini"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestReply(t *testing.T) {
	tt := []struct {
		name   string
		status int
		body   string
		reply  string
		err    error
		fails  bool
	}{
		{
			name:   "reply",
			status: http.StatusOK,
			body:   `{"candidates":[{"content":{"role":"model","parts":[{"text":"Gas is "},{"text":"cheap."}]},"finishReason":"STOP"}]}`,
			reply:  "Gas is cheap.",
		},
		{
			name:   "no-candidates",
			status: http.StatusOK,
			body:   `{"candidates":[]}`,
			err:    gemini.ErrNoCandidates,
			fails:  true,
		},
		{
			name:   "api-error",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`,
			fails:  true,
		},
		{
			name:   "html",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			fails:  true,
		},
	}

	t.Log("Given the need to proxy chat messages.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				var got struct {
					Contents []struct {
						Parts []struct {
							Text string `json:"text"`
						} `json:"parts"`
					} `json:"contents"`
				}
				var path, key string

				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					path = r.URL.Path
					key = r.URL.Query().Get("key")
					json.NewDecoder(r.Body).Decode(&got)
					w.WriteHeader(tst.status)
					w.Write([]byte(tst.body))
				}))
				defer srv.Close()

				client := gemini.New(gemini.Config{APIKey: "KEY", BaseURL: srv.URL, Model: "test-model"})

				reply, err := client.Reply(context.Background(), "is gas cheap?")
				if tst.fails {
					if err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould fail.", failed, testID)
					}
					if tst.err != nil && !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould fail with %v : %v", failed, testID, tst.err, err)
					}
					t.Logf("\t%s\tTest %d:\tShould fail.", success, testID)
					return
				}

				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould get a reply : %s", failed, testID, err)
				}
				if reply != tst.reply {
					t.Logf("\t%s\tTest %d:\tgot: %q", failed, testID, reply)
					t.Logf("\t%s\tTest %d:\texp: %q", failed, testID, tst.reply)
					t.Fatalf("\t%s\tTest %d:\tShould join the candidate parts.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould join the candidate parts.", success, testID)

				if path != "/models/test-model:generateContent" || key != "KEY" {
					t.Fatalf("\t%s\tTest %d:\tShould call the model endpoint : %s %s", failed, testID, path, key)
				}
				if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "is gas cheap?" {
					t.Fatalf("\t%s\tTest %d:\tShould send the message : %+v", failed, testID, got)
				}
				t.Logf("\t%s\tTest %d:\tShould send the message to the model endpoint.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}
