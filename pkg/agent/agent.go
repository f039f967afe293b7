package agent

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handler processes one envelope and eventually calls Deliver with the
// envelope id. It runs on its own goroutine and must not assume a waiting
// caller: fire-and-forget dispatch uses the same signature.
type Handler func(msg Envelope)

type Config struct {
	Name         string
	Description  string
	Capabilities []string
	Host         string
	Port         int
}

// Agent bridges a fire-and-forget handler to synchronous request/response
// callers. The id→waiter table is the only shared mutable state; the mutex
// covers insert/remove only, never the blocking wait itself.
type Agent struct {
	cfg     Config
	agentID string
	server  *apiServer

	mu      sync.Mutex
	handler Handler
	waiters map[string]chan interface{}
	extra   map[string]http.HandlerFunc
}

func New(cfg Config) *Agent {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(cfg.Name)), " ", "-")
	if slug == "" {
		slug = "service"
	}
	return &Agent{
		cfg:     cfg,
		agentID: fmt.Sprintf("agent:%s:%s", slug, strings.ReplaceAll(uuid.NewString(), "-", "")[:6]),
		waiters: make(map[string]chan interface{}),
		extra:   make(map[string]http.HandlerFunc),
	}
}

// Handle mounts an additional route on the service's HTTP surface. Must be
// called before Start.
func (a *Agent) Handle(pattern string, fn http.HandlerFunc) {
	a.extra[pattern] = fn
}

func (a *Agent) ID() string   { return a.agentID }
func (a *Agent) Name() string { return a.cfg.Name }

// OnMessage registers the single message handler for this service.
func (a *Agent) OnMessage(h Handler) {
	a.mu.Lock()
	a.handler = h
	a.mu.Unlock()
}

// Deliver fulfils the wait registered for id. Delivering to an unknown id is
// a no-op, never an error: a late or duplicate delivery after timeout must
// not corrupt state. The first delivery for an id wins; later ones land here
// after the waiter has been removed and fall through.
func (a *Agent) Deliver(id string, result interface{}) {
	a.mu.Lock()
	ch, ok := a.waiters[id]
	if ok {
		delete(a.waiters, id)
	}
	a.mu.Unlock()
	if !ok {
		return
	}
	ch <- result // buffered, exactly one send possible per waiter
}

// AcceptAsync dispatches the handler on a new goroutine and returns
// immediately. No ordering guarantee relative to other concurrent calls.
func (a *Agent) AcceptAsync(env Envelope) {
	go a.dispatch(env)
}

// AcceptSync registers a waiter keyed by the envelope id before dispatching
// the handler, closing the race between handler completion and wait
// registration. It blocks until Deliver is invoked for that id or the
// timeout elapses. Either way the waiter is removed exactly once.
func (a *Agent) AcceptSync(env Envelope, timeout time.Duration) (interface{}, bool) {
	ch := make(chan interface{}, 1)
	a.mu.Lock()
	a.waiters[env.ID] = ch
	a.mu.Unlock()
	defer a.removeWaiter(env.ID, ch)

	go a.dispatch(env)

	if timeout < 0 {
		timeout = 0
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case v := <-ch:
		return v, true
	case <-timer.C:
		return nil, false
	}
}

// removeWaiter drops a waiter only if the table still holds that exact
// channel: after a delivery the slot may already carry a newer registration
// for a reused caller-supplied id, which must survive its own wait.
func (a *Agent) removeWaiter(id string, ch chan interface{}) {
	a.mu.Lock()
	if a.waiters[id] == ch {
		delete(a.waiters, id)
	}
	a.mu.Unlock()
}

// dispatch runs the handler with fault isolation: a panic is logged and
// fulfilled as a structured handler_fault result so no waiter is left
// hanging and no late error leaks as a transport failure.
func (a *Agent) dispatch(env Envelope) {
	a.mu.Lock()
	h := a.handler
	a.mu.Unlock()
	if h == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[%s] Handler panic for %s: %v\n", a.cfg.Name, env.ID, r)
			a.Deliver(env.ID, ErrorResult(CodeHandlerFault, fmt.Sprintf("%v", r)))
		}
	}()
	h(env)
}

// pendingWaiters is used by tests to assert the table does not leak.
func (a *Agent) pendingWaiters() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.waiters)
}
