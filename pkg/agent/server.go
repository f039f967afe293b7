package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	serverShutdownTimeout = 3 * time.Second
	// DefaultSyncTimeout bounds a synchronous wait when the caller does not
	// send one. Matches the per-call budget the orchestrator uses.
	DefaultSyncTimeout = 30 * time.Second
	maxRequestBody     = 1 << 20
)

type apiServer struct {
	srv *http.Server
}

// Routes builds the HTTP surface for this agent. Exposed separately from
// Start so tests can mount it on httptest servers.
func (a *Agent) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.handleHealth)
	mux.HandleFunc("/invoke/async", a.handleInvokeAsync)
	mux.HandleFunc("/invoke/sync", a.handleInvokeSync)
	for pattern, fn := range a.extra {
		mux.HandleFunc(pattern, fn)
	}
	return mux
}

// Start serves the agent's HTTP surface in a background goroutine.
func (a *Agent) Start() error {
	if a.server != nil {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.server = &apiServer{srv: srv}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("[%s] Listen error: %v\n", a.cfg.Name, err)
		}
	}()
	fmt.Printf("[%s] HTTP server started on http://%s | ID: %s\n", a.cfg.Name, addr, a.agentID)
	return nil
}

func (a *Agent) Stop() error {
	if a.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	return a.server.srv.Shutdown(ctx)
}

func (a *Agent) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"service":    a.cfg.Name,
		"service_id": a.agentID,
	})
}

func (a *Agent) handleInvokeAsync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{"error": "method not allowed"})
		return
	}
	env, callErr := readEnvelope(r)
	if callErr != nil {
		// Malformed input still gets a structured, accepted response: there
		// is no waiter to fulfil on the async path.
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status": "error",
			"error":  callErr.Detail,
			"code":   callErr.Code,
		})
		return
	}
	a.AcceptAsync(env)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":      "ok",
		"accepted_id": env.ID,
	})
}

func (a *Agent) handleInvokeSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{"error": "method not allowed"})
		return
	}
	env, callErr := readEnvelope(r)
	if callErr != nil {
		// Delivered error result, not a transport failure.
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"id":     env.ID,
			"result": ErrorResult(callErr.Code, callErr.Detail),
		})
		return
	}

	a.mu.Lock()
	hasHandler := a.handler != nil
	a.mu.Unlock()
	if !hasHandler {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status": "error",
			"error":  "no handler registered",
			"id":     env.ID,
		})
		return
	}

	timeout := DefaultSyncTimeout
	if raw, ok := env.Payload["timeout"].(float64); ok && raw > 0 {
		timeout = time.Duration(raw * float64(time.Second))
	}

	result, ok := a.AcceptSync(env, timeout)
	if !ok {
		writeJSON(w, http.StatusGatewayTimeout, map[string]interface{}{
			"status": "timeout",
			"id":     env.ID,
			"result": nil,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"id":     env.ID,
		"result": result,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func readEnvelope(r *http.Request) (Envelope, *CallError) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return Envelope{ID: "unknown"}, &CallError{Code: CodeMalformedPayload, Detail: err.Error()}
	}
	env, nerr := NormalizeEnvelope(body)
	if nerr != nil {
		ce := nerr.(*CallError)
		return Envelope{ID: "unknown"}, ce
	}
	return env, nil
}
