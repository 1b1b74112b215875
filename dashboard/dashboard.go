// Package dashboard streams a running simulation's per-patch OutputEntry
// values to any number of concurrently connected websocket clients, and
// exposes /metrics and /healthz alongside the stream.
package dashboard

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ivanpozdin/patchsim/metrics"
	"github.com/ivanpozdin/patchsim/patch"
)

// Dashboard streams a running simulation's per-patch OutputEntry values to
// any number of concurrently connected websocket clients at /ws, and
// exposes /metrics (when Metrics is non-nil) and /healthz.
type Dashboard struct {
	hub     *hub
	metrics *metrics.Metrics
}

// New starts a Dashboard's fan-out goroutine. m may be nil, in which case
// /metrics responds 404. Close must be called to release the goroutine.
func New(m *metrics.Metrics) *Dashboard {
	h := newHub()
	go h.run()
	return &Dashboard{hub: h, metrics: m}
}

// Publish broadcasts entry to every currently connected client, dropping it
// for any client whose outbound queue is full.
func (d *Dashboard) Publish(entry patch.OutputEntry) {
	d.hub.Publish(entry)
}

// Close stops the fan-out goroutine and disconnects every subscriber.
func (d *Dashboard) Close() {
	d.hub.Close()
}

// Router returns the http.Handler serving /ws, /metrics, and /healthz.
func (d *Dashboard) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", d.serveWebsocket)
	r.HandleFunc("/healthz", d.serveHealthz)
	if d.metrics != nil {
		r.Handle("/metrics", d.metrics.Handler())
	}
	return r
}

func (d *Dashboard) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	sub := d.hub.subscribe()
	defer d.hub.unsubscribe(sub)

	c, err := newClient(sub, w, r)
	if err != nil {
		return
	}
	_ = c.sync(r.Context())
}

func (d *Dashboard) serveHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
