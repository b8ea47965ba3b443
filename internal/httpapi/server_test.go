package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atharv-dange/vaani/internal/config"
	"github.com/atharv-dange/vaani/internal/dialog"
	"github.com/atharv-dange/vaani/internal/history"
	"github.com/atharv-dange/vaani/internal/observability"
	"github.com/atharv-dange/vaani/internal/protocol"
)

type fakeController struct {
	mu    sync.Mutex
	wakes int
	stops int
	snap  dialog.Snapshot
	bus   chan any
}

func newFakeController() *fakeController {
	return &fakeController{
		snap: dialog.Snapshot{State: dialog.StateIdle},
		bus:  make(chan any, 16),
	}
}

func (f *fakeController) Wake() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wakes++
}

func (f *fakeController) RequestStop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeController) Snapshot() dialog.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeController) setSnapshot(snap dialog.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

func (f *fakeController) counts() (wakes, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wakes, f.stops
}

func (f *fakeController) Subscribe() (<-chan any, func()) {
	return f.bus, func() {}
}

func newTestServer(t *testing.T, name string, ctrl Controller, store history.Store) *httptest.Server {
	t.Helper()
	metrics := observability.NewMetrics("test_httpapi_" + name + "_" + time.Now().Format("150405000000000"))
	srv := New(config.Config{}, ctrl, store, metrics)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestWakeEndpoint(t *testing.T) {
	ctrl := newFakeController()
	ts := newTestServer(t, "wake", ctrl, history.NewInMemoryStore())

	res, err := http.Post(ts.URL+"/v1/assistant/wake", "application/json", nil)
	if err != nil {
		t.Fatalf("wake request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("wake status = %d, want %d", res.StatusCode, http.StatusAccepted)
	}
	if wakes, _ := ctrl.counts(); wakes != 1 {
		t.Fatalf("wakes = %d, want 1", wakes)
	}
}

func TestStopWithoutSessionConflicts(t *testing.T) {
	ctrl := newFakeController()
	ts := newTestServer(t, "stopidle", ctrl, history.NewInMemoryStore())

	res, err := http.Post(ts.URL+"/v1/assistant/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("stop request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("stop status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
	if _, stops := ctrl.counts(); stops != 0 {
		t.Fatalf("stop forwarded with no live session")
	}
}

func TestStopWithLiveSession(t *testing.T) {
	ctrl := newFakeController()
	ctrl.setSnapshot(dialog.Snapshot{State: dialog.StateActiveListening, SessionID: "s1"})
	ts := newTestServer(t, "stop", ctrl, history.NewInMemoryStore())

	res, err := http.Post(ts.URL+"/v1/assistant/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("stop request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("stop status = %d, want %d", res.StatusCode, http.StatusAccepted)
	}
	if _, stops := ctrl.counts(); stops != 1 {
		t.Fatalf("stops = %d, want 1", stops)
	}
}

func TestStateEndpoint(t *testing.T) {
	ctrl := newFakeController()
	ctrl.setSnapshot(dialog.Snapshot{
		State:      dialog.StateSpeaking,
		SessionID:  "s42",
		RetryCount: 1,
	})
	ts := newTestServer(t, "state", ctrl, history.NewInMemoryStore())

	res, err := http.Get(ts.URL + "/v1/assistant/state")
	if err != nil {
		t.Fatalf("state request error = %v", err)
	}
	defer res.Body.Close()

	var snap dialog.Snapshot
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if snap.State != dialog.StateSpeaking || snap.SessionID != "s42" || snap.RetryCount != 1 {
		t.Fatalf("state = %+v", snap)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	store := history.NewInMemoryStore()
	_ = store.Append(context.Background(), history.Turn{
		SessionID:    "s1",
		UserText:     "set an alarm",
		ResponseText: "When should the alarm go off?",
	})
	ts := newTestServer(t, "history", newFakeController(), store)

	res, err := http.Get(ts.URL + "/v1/assistant/history/s1?limit=5")
	if err != nil {
		t.Fatalf("history request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d", res.StatusCode)
	}

	var payload struct {
		SessionID string         `json:"session_id"`
		Turns     []history.Turn `json:"turns"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(payload.Turns) != 1 || payload.Turns[0].UserText != "set an alarm" {
		t.Fatalf("history payload = %+v", payload)
	}
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	ts := newTestServer(t, "badlimit", newFakeController(), history.NewInMemoryStore())

	res, err := http.Get(ts.URL + "/v1/assistant/history/s1?limit=0")
	if err != nil {
		t.Fatalf("history request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("history status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestWebsocketEventFeedAndControl(t *testing.T) {
	ctrl := newFakeController()
	ts := newTestServer(t, "ws", ctrl, history.NewInMemoryStore())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/assistant/ws"
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	if res != nil {
		res.Body.Close()
	}
	defer conn.Close()

	ctrl.bus <- protocol.StateChanged{
		Type:  protocol.TypeStateChanged,
		State: string(dialog.StateActiveListening),
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got protocol.StateChanged
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Type != protocol.TypeStateChanged || got.State != string(dialog.StateActiveListening) {
		t.Fatalf("event = %+v", got)
	}

	if err := conn.WriteJSON(protocol.ClientControl{Type: protocol.TypeClientControl, Action: "wake"}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if wakes, _ := ctrl.counts(); wakes == 1 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("control message never reached the controller")
}

func TestWebsocketRejectsInvalidMessage(t *testing.T) {
	ctrl := newFakeController()
	ts := newTestServer(t, "wsbad", ctrl, history.NewInMemoryStore())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/assistant/ws"
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	if res != nil {
		res.Body.Close()
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got protocol.ErrorEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read error event: %v", err)
	}
	if got.Code != "invalid_client_message" {
		t.Fatalf("error event = %+v", got)
	}
}
