package agent

import (
	"context"
	"testing"
	"time"
)

func TestClientCallSyncAgainstRuntime(t *testing.T) {
	t.Parallel()
	var a *Agent
	a, srv := startTestServer(t, nil)
	a.OnMessage(func(msg Envelope) {
		a.Deliver(msg.ID, map[string]interface{}{"echo": msg.Data()["input"]})
	})

	c := NewClient("agent:caller:bbbbbb")
	result, err := c.CallSync(context.Background(), srv.URL, map[string]interface{}{"input": "ping"}, 5*time.Second)
	if err != nil {
		t.Fatalf("CallSync: %v", err)
	}
	m, ok := result.(map[string]interface{})
	if !ok || m["echo"] != "ping" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestClientCallSyncTimeout(t *testing.T) {
	t.Parallel()
	_, srv := startTestServer(t, func(msg Envelope) {
		// Never delivers.
	})

	c := NewClient("agent:caller:bbbbbb")
	_, err := c.CallSync(context.Background(), srv.URL, map[string]interface{}{}, 100*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}

func TestClientCallSyncUnreachable(t *testing.T) {
	t.Parallel()
	c := NewClient("agent:caller:bbbbbb")
	_, err := c.CallSync(context.Background(), "http://127.0.0.1:1", map[string]interface{}{}, time.Second)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUnreachable(err) {
		t.Fatalf("expected unreachable classification, got %v", err)
	}
}

func TestClientCallAsync(t *testing.T) {
	t.Parallel()
	done := make(chan struct{}, 1)
	_, srv := startTestServer(t, func(msg Envelope) { done <- struct{}{} })

	c := NewClient("agent:caller:bbbbbb")
	id, err := c.CallAsync(context.Background(), srv.URL, map[string]interface{}{"fire": "forget"})
	if err != nil {
		t.Fatalf("CallAsync: %v", err)
	}
	if id == "" {
		t.Fatal("empty accepted id")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}
