// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/blocksentry/sentry/business/core/gas"
	"github.com/blocksentry/sentry/business/core/monitor"
	"github.com/blocksentry/sentry/business/core/report"
	"github.com/blocksentry/sentry/business/sys/metrics"
	"github.com/blocksentry/sentry/business/sys/validate"
	"github.com/blocksentry/sentry/business/web/errs"
	"github.com/blocksentry/sentry/foundation/etherscan"
	"github.com/blocksentry/sentry/foundation/events"
	"github.com/blocksentry/sentry/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Replier represents the behavior required to answer a chat message.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Handlers manages the set of monitor endpoints.
type Handlers struct {
	Log          *zap.SugaredLogger
	Monitor      *monitor.Monitor
	Report       *report.Core
	Assistant    Replier
	WS           websocket.Upgrader
	GasEvts      *events.Events
	ActivityEvts *events.Events
}

// SecurityAnalysis returns the raw transaction list for an address.
func (h Handlers) SecurityAnalysis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs, err := h.Report.Query(ctx, r.URL.Query().Get("address"))
	if err != nil {
		if errors.Is(err, report.ErrAddressRequired) {
			return errs.NewTrusted(errors.New("Address is required"), http.StatusBadRequest)
		}

		h.Log.Errorw("security analysis", "traceid", web.GetTraceID(ctx), "ERROR", err)
		return errs.NewTrusted(errors.New("Failed to fetch transactions"), http.StatusInternalServerError)
	}

	if txs == nil {
		txs = []etherscan.Transaction{}
	}

	return web.Respond(ctx, w, securityAnalysis{Result: txs}, http.StatusOK)
}

// TxReport returns the formatted report rows for an address.
func (h Handlers) TxReport(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	rows, err := h.Report.Report(ctx, r.URL.Query().Get("address"))
	if err != nil {
		if errors.Is(err, report.ErrAddressRequired) {
			return errs.NewTrusted(errors.New("Address is required"), http.StatusBadRequest)
		}

		h.Log.Errorw("report", "traceid", web.GetTraceID(ctx), "ERROR", err)
		return errs.NewTrusted(errors.New("Failed to fetch transactions"), http.StatusInternalServerError)
	}

	return web.Respond(ctx, w, rows, http.StatusOK)
}

// Chat forwards a message to the assistant and returns the reply.
func (h Handlers) Chat(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req chatRequest
	if err := web.Decode(r, &req); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	reply, err := h.Assistant.Reply(ctx, req.Message)
	if err != nil {
		h.Log.Errorw("chat", "traceid", web.GetTraceID(ctx), "ERROR", err)
		return errs.NewTrusted(errors.New("failed to generate reply"), http.StatusInternalServerError)
	}

	return web.Respond(ctx, w, chatReply{Reply: reply}, http.StatusOK)
}

// Current returns the latest sample, rate, selected profile and estimate.
func (h Handlers) Current(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Monitor.Snapshot(), http.StatusOK)
}

// History returns the chart points, oldest first.
func (h Handlers) History(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Monitor.Snapshot().History, http.StatusOK)
}

// Profiles returns the set of transaction profiles.
func (h Handlers) Profiles(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, gas.Profiles(), http.StatusOK)
}

// SelectProfile changes the selected profile.
func (h Handlers) SelectProfile(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	snap, err := h.Monitor.SelectProfile(web.Param(r, "key"))
	if err != nil {
		if errors.Is(err, gas.ErrUnknownProfile) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	return web.Respond(ctx, w, snap, http.StatusOK)
}

// Estimate returns the savings estimate for a profile.
func (h Handlers) Estimate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	est, err := h.Monitor.Estimate(r.URL.Query().Get("profile"))
	if err != nil {
		switch {
		case errors.Is(err, gas.ErrUnknownProfile):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, monitor.ErrNoSample):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return err
	}

	return web.Respond(ctx, w, est, http.StatusOK)
}

// Refresh polls the upstream immediately.
func (h Handlers) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Monitor.Refresh(ctx), http.StatusOK)
}

// GasEvents handles a web socket to stream monitor updates to a client. The
// current state is written first.
func (h Handlers) GasEvents(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.stream(ctx, w, r, h.GasEvts, func(c *websocket.Conn) error {
		return c.WriteJSON(h.Monitor.Snapshot())
	})
}

// ActivityEvents handles a web socket to stream the demo activity feed.
func (h Handlers) ActivityEvents(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	metrics.ActivityClients.Inc()
	defer metrics.ActivityClients.Dec()

	return h.stream(ctx, w, r, h.ActivityEvts, nil)
}

// stream upgrades the connection and writes every event until the client
// goes away or the events are shut down.
func (h Handlers) stream(ctx context.Context, w http.ResponseWriter, r *http.Request, evts *events.Events, first func(c *websocket.Conn) error) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// Clear the deadlines the server set for the request.
	c.NetConn().SetDeadline(time.Time{})

	ch := evts.Acquire(v.TraceID)
	defer evts.Release(v.TraceID)

	if first != nil {
		if err := first(c); err != nil {
			return nil
		}
	}

	// The client never sends data, reading detects the disconnect.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}

		case <-gone:
			return nil
		}
	}
}
