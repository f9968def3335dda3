package public_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/blocksentry/sentry/app/services/monitor/handlers/public"
	"github.com/blocksentry/sentry/business/core/gas"
	"github.com/blocksentry/sentry/business/core/monitor"
	"github.com/blocksentry/sentry/business/core/report"
	"github.com/blocksentry/sentry/business/web/errs"
	"github.com/blocksentry/sentry/business/web/mid"
	"github.com/blocksentry/sentry/foundation/etherscan"
	"github.com/blocksentry/sentry/foundation/events"
	"github.com/blocksentry/sentry/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type source struct{}

func (source) GasOracle(ctx context.Context) (etherscan.GasOracle, error) {
	return etherscan.GasOracle{SafeGasPrice: "10", ProposeGasPrice: "15", FastGasPrice: "25", SuggestBaseFee: "9.5"}, nil
}

func (source) EthPrice(ctx context.Context) (etherscan.EthPrice, error) {
	return etherscan.EthPrice{ETHUSD: "2000"}, nil
}

type lister struct {
	calls int
	txs   []etherscan.Transaction
	err   error
}

func (l *lister) TxList(ctx context.Context, address string) ([]etherscan.Transaction, error) {
	l.calls++
	return l.txs, l.err
}

type replier struct {
	reply string
	err   error
}

func (r replier) Reply(ctx context.Context, message string) (string, error) {
	return r.reply, r.err
}

type harness struct {
	mon      *monitor.Monitor
	lister   *lister
	gasEvts  *events.Events
	activity *events.Events
	handler  http.Handler
}

func newHarness(t *testing.T, chat public.Replier) *harness {
	log := zap.NewNop().Sugar()

	mon, err := monitor.New(monitor.Config{
		Source:   source{},
		Interval: time.Hour,
		Location: time.UTC,
		Now: func() time.Time {
			return time.Date(2024, 3, 1, 3, 15, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a monitor : %v", failed, err)
	}
	t.Cleanup(mon.Stop)

	h := harness{
		mon:      mon,
		lister:   &lister{},
		gasEvts:  events.New(),
		activity: events.New(),
	}
	t.Cleanup(h.gasEvts.Shutdown)
	t.Cleanup(h.activity.Shutdown)

	app := web.NewApp(make(chan os.Signal, 1), mid.Errors(log), mid.Panics())
	public.Routes(app, public.Config{
		Log:          log,
		Monitor:      mon,
		Report:       report.NewCore(h.lister, nil),
		Chat:         chat,
		GasEvts:      h.gasEvts,
		ActivityEvts: h.activity,
	})
	h.handler = app

	return &h
}

func (h *harness) do(method string, target string, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errs.Response {
	var er errs.Response
	if err := json.NewDecoder(w.Body).Decode(&er); err != nil {
		t.Fatalf("\t%s\tShould be able to decode the error response : %v", failed, err)
	}
	return er
}

// =============================================================================

func TestSecurityAnalysis(t *testing.T) {
	t.Log("Given the need to fetch transactions for an address.")
	{
		t.Logf("\tTest 0:\tWhen the address is missing.")
		{
			h := newHarness(t, replier{})

			w := h.do(http.MethodGet, "/api/security-analysis?address=%20", "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 0:\tShould receive a 400 : %d", failed, w.Code)
			}
			if er := decodeError(t, w); er.Error != "Address is required" {
				t.Fatalf("\t%s\tTest 0:\tShould receive the required message : %q", failed, er.Error)
			}
			if h.lister.calls != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould not call upstream.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the request without calling upstream.", success)
		}

		t.Logf("\tTest 1:\tWhen upstream fails.")
		{
			h := newHarness(t, replier{})
			h.lister.err = etherscan.ErrNotOK

			w := h.do(http.MethodGet, "/api/security-analysis?address=0xbad", "")
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("\t%s\tTest 1:\tShould receive a 500 : %d", failed, w.Code)
			}
			if er := decodeError(t, w); er.Error != "Failed to fetch transactions" {
				t.Fatalf("\t%s\tTest 1:\tShould receive the generic message : %q", failed, er.Error)
			}
			t.Logf("\t%s\tTest 1:\tShould receive a generic 500.", success)
		}

		t.Logf("\tTest 2:\tWhen upstream returns transactions.")
		{
			h := newHarness(t, replier{})
			h.lister.txs = []etherscan.Transaction{{Hash: "0xaa", Value: "1"}, {Hash: "0xbb", Value: "2"}}

			w := h.do(http.MethodGet, "/api/security-analysis?address=0xgood", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 2:\tShould receive a 200 : %d", failed, w.Code)
			}

			var resp struct {
				Result []etherscan.Transaction `json:"result"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to decode the response : %v", failed, err)
			}
			if len(resp.Result) != 2 || resp.Result[0].Hash != "0xaa" {
				t.Fatalf("\t%s\tTest 2:\tShould receive the list in order : %+v", failed, resp.Result)
			}
			t.Logf("\t%s\tTest 2:\tShould receive the list in order.", success)
		}

		t.Logf("\tTest 3:\tWhen the address has no transactions.")
		{
			h := newHarness(t, replier{})

			w := h.do(http.MethodGet, "/api/security-analysis?address=0xquiet", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 3:\tShould receive a 200 : %d", failed, w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != `{"result":[]}` {
				t.Fatalf("\t%s\tTest 3:\tShould receive an empty list : %s", failed, got)
			}
			t.Logf("\t%s\tTest 3:\tShould receive an empty list.", success)
		}
	}
}

func TestReport(t *testing.T) {
	t.Log("Given the need to format a transaction report.")
	{
		h := newHarness(t, replier{})
		h.lister.txs = []etherscan.Transaction{{
			Hash:  "0x1234567890abcdef",
			From:  "0xaaaaaaaaaaaaaaaaaaaa",
			To:    "0xbbbb",
			Value: "1500000000000000000",
		}}

		w := h.do(http.MethodGet, "/v1/report?address=0xgood", "")
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a 200 : %d", failed, w.Code)
		}

		var rows []report.Row
		if err := json.NewDecoder(w.Body).Decode(&rows); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the rows : %v", failed, err)
		}
		if len(rows) != 1 || rows[0].HashShort != "0x1234...cdef" || rows[0].ToShort != "0xbbbb" || rows[0].ValueETH != "1.500000" {
			t.Fatalf("\t%s\tShould receive formatted rows : %+v", failed, rows)
		}
		t.Logf("\t%s\tShould receive formatted rows.", success)
	}
}

func TestChat(t *testing.T) {
	type table struct {
		name   string
		body   string
		chat   replier
		status int
		reply  string
		errMsg string
	}

	tt := []table{
		{name: "reply", body: `{"message":"is this safe?"}`, chat: replier{reply: "yes"}, status: http.StatusOK, reply: "yes"},
		{name: "blank", body: `{"message":"   "}`, chat: replier{reply: "yes"}, status: http.StatusBadRequest, errMsg: "data validation error"},
		{name: "missing", body: `{}`, chat: replier{reply: "yes"}, status: http.StatusBadRequest, errMsg: "data validation error"},
		{name: "malformed", body: `{"message":`, chat: replier{reply: "yes"}, status: http.StatusBadRequest},
		{name: "upstream", body: `{"message":"hi"}`, chat: replier{err: errors.New("quota")}, status: http.StatusInternalServerError, errMsg: "failed to generate reply"},
	}

	t.Log("Given the need to proxy chat messages.")
	{
		for testID, tst := range tt {
			tf := func(t *testing.T) {
				h := newHarness(t, tst.chat)

				w := h.do(http.MethodPost, "/api/gemini", tst.body)
				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive a %d : %d", failed, testID, tst.status, w.Code)
				}

				if tst.status == http.StatusOK {
					var resp struct {
						Reply string `json:"reply"`
					}
					if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to decode the reply : %v", failed, testID, err)
					}
					if resp.Reply != tst.reply {
						t.Fatalf("\t%s\tTest %d:\tShould receive %q : %q", failed, testID, tst.reply, resp.Reply)
					}
					t.Logf("\t%s\tTest %d:\tShould receive the reply.", success, testID)
					return
				}

				er := decodeError(t, w)
				if tst.errMsg != "" && er.Error != tst.errMsg {
					t.Fatalf("\t%s\tTest %d:\tShould receive %q : %q", failed, testID, tst.errMsg, er.Error)
				}
				t.Logf("\t%s\tTest %d:\tShould receive a %d.", success, testID, tst.status)
			}

			t.Run(tst.name, tf)
		}
	}
}

func TestGas(t *testing.T) {
	t.Log("Given the need to serve gas monitoring state.")
	{
		h := newHarness(t, replier{})

		t.Logf("\tTest 0:\tWhen no sample has been fetched.")
		{
			w := h.do(http.MethodGet, "/v1/gas/estimate", "")
			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("\t%s\tTest 0:\tShould receive a 503 : %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 0:\tShould receive a 503.", success)
		}

		t.Logf("\tTest 1:\tWhen a refresh is requested.")
		{
			w := h.do(http.MethodPost, "/v1/gas/refresh", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 1:\tShould receive a 200 : %d", failed, w.Code)
			}

			var snap monitor.Snapshot
			if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to decode the state : %v", failed, err)
			}
			if snap.Sample == nil || snap.Sample.Fast != 25 || snap.EthUSD != 2000 {
				t.Fatalf("\t%s\tTest 1:\tShould receive the new sample : %+v", failed, snap)
			}
			if len(snap.History) != 1 || snap.History[0].Label != "03:15" {
				t.Fatalf("\t%s\tTest 1:\tShould receive one history point : %+v", failed, snap.History)
			}
			t.Logf("\t%s\tTest 1:\tShould receive the new sample.", success)
		}

		t.Logf("\tTest 2:\tWhen an estimate is requested for the selected profile.")
		{
			w := h.do(http.MethodGet, "/v1/gas/estimate", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 2:\tShould receive a 200 : %d", failed, w.Code)
			}

			var est gas.Estimate
			if err := json.NewDecoder(w.Body).Decode(&est); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to decode the estimate : %v", failed, err)
			}
			if est.Profile.Key != gas.DefaultProfile || est.Window != gas.WindowNow {
				t.Fatalf("\t%s\tTest 2:\tShould receive the default profile estimate : %+v", failed, est)
			}
			t.Logf("\t%s\tTest 2:\tShould receive the default profile estimate.", success)
		}

		t.Logf("\tTest 3:\tWhen an unknown profile is requested.")
		{
			if w := h.do(http.MethodGet, "/v1/gas/estimate?profile=bogus", ""); w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 3:\tShould receive a 400 for an estimate : %d", failed, w.Code)
			}
			if w := h.do(http.MethodPut, "/v1/gas/profile/bogus", ""); w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 3:\tShould receive a 400 for a selection : %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 3:\tShould receive a 400.", success)
		}

		t.Logf("\tTest 4:\tWhen a profile is selected.")
		{
			w := h.do(http.MethodPut, "/v1/gas/profile/simple", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 4:\tShould receive a 200 : %d", failed, w.Code)
			}

			var snap monitor.Snapshot
			if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
				t.Fatalf("\t%s\tTest 4:\tShould be able to decode the state : %v", failed, err)
			}
			if snap.Profile.Key != "simple" || snap.Estimate == nil || snap.Estimate.Profile.Key != "simple" {
				t.Fatalf("\t%s\tTest 4:\tShould receive the recomputed estimate : %+v", failed, snap)
			}
			t.Logf("\t%s\tTest 4:\tShould receive the recomputed estimate.", success)
		}

		t.Logf("\tTest 5:\tWhen the profiles are listed.")
		{
			w := h.do(http.MethodGet, "/v1/gas/profiles", "")

			var profiles []gas.Profile
			if err := json.NewDecoder(w.Body).Decode(&profiles); err != nil {
				t.Fatalf("\t%s\tTest 5:\tShould be able to decode the profiles : %v", failed, err)
			}
			if len(profiles) != len(gas.Profiles()) {
				t.Fatalf("\t%s\tTest 5:\tShould receive every profile : %d", failed, len(profiles))
			}
			t.Logf("\t%s\tTest 5:\tShould receive every profile.", success)
		}
	}
}

func TestGasEvents(t *testing.T) {
	t.Log("Given the need to stream monitor updates.")
	{
		h := newHarness(t, replier{})
		h.mon.Poll(context.Background())

		srv := httptest.NewServer(h.handler)
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/gas/events"
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to connect : %v", failed, err)
		}
		defer c.Close()
		c.SetReadDeadline(time.Now().Add(5 * time.Second))

		var snap monitor.Snapshot
		if err := c.ReadJSON(&snap); err != nil {
			t.Fatalf("\t%s\tShould receive the current state first : %v", failed, err)
		}
		if snap.Sample == nil || snap.Sample.Safe != 10 {
			t.Fatalf("\t%s\tShould receive the current sample : %+v", failed, snap)
		}
		t.Logf("\t%s\tShould receive the current state first.", success)

		h.gasEvts.Send([]byte(`{"update":1}`))

		_, msg, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("\t%s\tShould receive the published update : %v", failed, err)
		}
		if string(msg) != `{"update":1}` {
			t.Fatalf("\t%s\tShould receive the published update : %s", failed, msg)
		}
		t.Logf("\t%s\tShould receive the published update.", success)
	}
}
