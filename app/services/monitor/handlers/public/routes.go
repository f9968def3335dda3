package public

import (
	"net/http"

	"github.com/blocksentry/sentry/business/core/monitor"
	"github.com/blocksentry/sentry/business/core/report"
	"github.com/blocksentry/sentry/foundation/events"
	"github.com/blocksentry/sentry/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log          *zap.SugaredLogger
	Monitor      *monitor.Monitor
	Report       *report.Core
	Chat         Replier
	GasEvts      *events.Events
	ActivityEvts *events.Events
}

// Routes binds all the public routes.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:       cfg.Log,
		Monitor:   cfg.Monitor,
		Report:    cfg.Report,
		Assistant: cfg.Chat,
		WS: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		GasEvts:      cfg.GasEvts,
		ActivityEvts: cfg.ActivityEvts,
	}

	const api = "api"

	app.Handle(http.MethodGet, api, "/security-analysis", pbl.SecurityAnalysis)
	app.Handle(http.MethodPost, api, "/gemini", pbl.Chat)

	const version = "v1"

	app.Handle(http.MethodGet, version, "/gas/current", pbl.Current)
	app.Handle(http.MethodGet, version, "/gas/history", pbl.History)
	app.Handle(http.MethodGet, version, "/gas/profiles", pbl.Profiles)
	app.Handle(http.MethodPut, version, "/gas/profile/:key", pbl.SelectProfile)
	app.Handle(http.MethodGet, version, "/gas/estimate", pbl.Estimate)
	app.Handle(http.MethodPost, version, "/gas/refresh", pbl.Refresh)
	app.Handle(http.MethodGet, version, "/gas/events", pbl.GasEvents)
	app.Handle(http.MethodGet, version, "/report", pbl.TxReport)
	app.Handle(http.MethodGet, version, "/activity/events", pbl.ActivityEvents)
}
