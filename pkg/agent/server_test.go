package agent

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func startTestServer(t *testing.T, h Handler) (*Agent, *httptest.Server) {
	t.Helper()
	a := New(Config{Name: "Test Service", Host: "127.0.0.1"})
	if h != nil {
		a.OnMessage(h)
	}
	srv := httptest.NewServer(a.Routes())
	t.Cleanup(srv.Close)
	return a, srv
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	a, srv := startTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "Test Service" || body["service_id"] != a.ID() {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestInvokeAsyncAccepted(t *testing.T) {
	t.Parallel()
	done := make(chan Envelope, 1)
	_, srv := startTestServer(t, func(msg Envelope) { done <- msg })

	resp, body := postJSON(t, srv.URL+"/invoke/async", map[string]interface{}{
		"id":       "async-1",
		"metadata": map[string]interface{}{"k": "v"},
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if body["status"] != "ok" || body["accepted_id"] != "async-1" {
		t.Fatalf("unexpected body: %v", body)
	}
	select {
	case env := <-done:
		if env.Data()["k"] != "v" {
			t.Fatalf("handler saw %v", env.Data())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestInvokeAsyncMalformed(t *testing.T) {
	t.Parallel()
	_, srv := startTestServer(t, func(msg Envelope) {})

	resp, err := http.Post(srv.URL+"/invoke/async", "application/json", bytes.NewReader([]byte("not json")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != CodeMalformedPayload {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestInvokeSyncRoundTrip(t *testing.T) {
	t.Parallel()
	var a *Agent
	a, srv := startTestServer(t, nil)
	a.OnMessage(func(msg Envelope) {
		a.Deliver(msg.ID, map[string]interface{}{"answer": 42})
	})

	resp, body := postJSON(t, srv.URL+"/invoke/sync", map[string]interface{}{
		"id":       "sync-1",
		"sender":   "agent:test:aaaaaa",
		"metadata": map[string]interface{}{"q": "life"},
		"timeout":  5.0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" || body["id"] != "sync-1" {
		t.Fatalf("unexpected body: %v", body)
	}
	result := body["result"].(map[string]interface{})
	if result["answer"] != float64(42) {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestInvokeSyncTimeoutBody(t *testing.T) {
	t.Parallel()
	_, srv := startTestServer(t, func(msg Envelope) {
		// Never delivers.
	})

	resp, body := postJSON(t, srv.URL+"/invoke/sync", map[string]interface{}{
		"id":      "sync-slow",
		"timeout": 0.05,
	})
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", resp.StatusCode)
	}
	if body["status"] != "timeout" || body["id"] != "sync-slow" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["result"] != nil {
		t.Fatalf("timeout result must be null, got %v", body["result"])
	}
}

func TestInvokeSyncMalformedBodyDelivered(t *testing.T) {
	t.Parallel()
	_, srv := startTestServer(t, func(msg Envelope) {})

	resp, err := http.Post(srv.URL+"/invoke/sync", "application/json", bytes.NewReader([]byte("[1,2,3]")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	// Malformed input is a delivered error result, not a transport failure.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	result, ok := body["result"].(map[string]interface{})
	if !ok || result["code"] != CodeMalformedPayload {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestInvokeSyncNoHandler(t *testing.T) {
	t.Parallel()
	_, srv := startTestServer(t, nil)

	resp, _ := postJSON(t, srv.URL+"/invoke/sync", map[string]interface{}{"id": "sync-none"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestMethodGuards(t *testing.T) {
	t.Parallel()
	_, srv := startTestServer(t, func(msg Envelope) {})

	if resp, err := http.Get(srv.URL + "/invoke/sync"); err != nil {
		t.Fatalf("GET: %v", err)
	} else {
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("GET /invoke/sync = %d, want 405", resp.StatusCode)
		}
	}
	if resp, err := http.Post(srv.URL+"/health", "application/json", nil); err != nil {
		t.Fatalf("POST: %v", err)
	} else {
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("POST /health = %d, want 405", resp.StatusCode)
		}
	}
}

func TestExtraRouteMounted(t *testing.T) {
	t.Parallel()
	a := New(Config{Name: "Test Service", Host: "127.0.0.1"})
	a.Handle("/custom", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"custom": true})
	})
	srv := httptest.NewServer(a.Routes())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/custom")
	if err != nil {
		t.Fatalf("GET /custom: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
