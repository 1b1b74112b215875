package dashboard

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/ivanpozdin/patchsim/metrics"
	"github.com/ivanpozdin/patchsim/patch"
)

func TestDashboard_WebsocketClientReceivesPublishedEntry(t *testing.T) {
	dash := New(nil)
	defer dash.Close()

	srv := httptest.NewServer(dash.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	entry := patch.OutputEntry{
		Tick:    3,
		PatchID: 1,
		Stats:   map[string]patch.Statistics{"all": {Susceptible: 2}},
	}

	dash.Publish(entry)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var received patch.OutputEntry
	for {
		if err := conn.ReadJSON(&received); err != nil {
			t.Fatalf("reading published entry: %v", err)
		}
		if received.Tick == entry.Tick {
			break
		}
	}
	require.Equal(t, entry.PatchID, received.PatchID)
	require.Equal(t, 2, received.Stats["all"].Susceptible)
}

func TestDashboard_HealthzRespondsOK(t *testing.T) {
	dash := New(nil)
	defer dash.Close()

	srv := httptest.NewServer(dash.Router())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
}

func TestDashboard_MetricsRouteServesRegisteredFamilies(t *testing.T) {
	m := metrics.New()
	m.RecordTick("0", 1.0)
	dash := New(m)
	defer dash.Close()

	srv := httptest.NewServer(dash.Router())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
}

func TestDashboard_MetricsRouteAbsentWhenNil(t *testing.T) {
	dash := New(nil)
	defer dash.Close()

	srv := httptest.NewServer(dash.Router())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 404, resp.StatusCode)
}

func TestHub_SlowSubscriberDropsRatherThanBlocksPublish(t *testing.T) {
	h := newHub()
	go h.run()
	defer h.Close()

	sub := h.subscribe()
	defer h.unsubscribe(sub)

	for i := 0; i < subscriberBuffer+5; i++ {
		h.Publish(patch.OutputEntry{Tick: i})
	}

	require.Len(t, sub, subscriberBuffer)
}

func TestHub_UnsubscribedClientStopsReceiving(t *testing.T) {
	h := newHub()
	go h.run()
	defer h.Close()

	sub := h.subscribe()
	h.unsubscribe(sub)

	h.Publish(patch.OutputEntry{Tick: 1, Stats: map[string]patch.Statistics{}})

	_, open := <-sub
	require.False(t, open)
}
