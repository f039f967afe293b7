package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const (
	healthPollInterval  = 500 * time.Millisecond
	healthPollDeadline  = 15 * time.Second
	healthCheckInterval = 5 * time.Second
	healthFailLimit     = 3
	restartBackoff      = 2 * time.Second
)

// Sub-services come up before the orchestrator so its first pipeline run
// finds every capability reachable.
var launchOrder = []string{
	rolePolicy,
	roleEligibility,
	roleMatcher,
	roleCredential,
	roleApply,
	roleOrchestrator,
}

type supervisorSettings struct {
	Host       string
	Workspace  string
	ConfigPath string
	Ports      map[string]int
}

type managedService struct {
	role string
	port int
	cmd  *exec.Cmd
	// done is closed by the reaper goroutine once the child has been
	// waited on. Only the reaper calls cmd.Wait.
	done chan struct{}
}

// supervisor spawns each role as a child process of the same binary,
// health-checks it, and restarts it when it dies or goes unresponsive.
type supervisor struct {
	settings supervisorSettings
	client   *http.Client

	mu       sync.Mutex
	services map[string]*managedService
	stopping bool
}

func runSupervisor(settings supervisorSettings) {
	fmt.Println("[Supervisor] Starting policy navigator services...")
	fmt.Printf("[Supervisor] Workspace: %s\n", settings.Workspace)

	sup := &supervisor{
		settings: settings,
		client:   &http.Client{Timeout: 2 * time.Second},
		services: make(map[string]*managedService),
	}

	for _, role := range launchOrder {
		if err := sup.launch(role); err != nil {
			fmt.Printf("[Supervisor] Failed to launch %s: %v\n", role, err)
			sup.shutdown()
			os.Exit(1)
		}
	}
	fmt.Println("[Supervisor] All services running.")

	go sup.watch()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	fmt.Println("[Supervisor] Shutting down...")
	sup.shutdown()
	fmt.Println("[Supervisor] Stopped.")
}

// launch starts one role, waits for its health endpoint, and registers it
// for monitoring.
func (s *supervisor) launch(role string) error {
	port := s.settings.Ports[role]
	cmd, err := s.spawn(role, port)
	if err != nil {
		return err
	}
	svc := &managedService{role: role, port: port, cmd: cmd, done: make(chan struct{})}

	s.mu.Lock()
	s.services[role] = svc
	s.mu.Unlock()
	go s.reapAndRestart(svc)

	if err := s.awaitHealthy(svc); err != nil {
		s.mu.Lock()
		if s.services[role] == svc {
			delete(s.services, role)
		}
		s.mu.Unlock()
		cmd.Process.Kill()
		<-svc.done
		return err
	}
	fmt.Printf("[Supervisor] %s healthy on port %d (pid %d)\n", role, port, cmd.Process.Pid)
	return nil
}

func (s *supervisor) spawn(role string, port int) (*exec.Cmd, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve own binary: %w", err)
	}
	args := []string{
		"-service", role,
		"-port", fmt.Sprintf("%d", port),
		"-host", s.settings.Host,
		"-workspace", s.settings.Workspace,
	}
	if s.settings.ConfigPath != "" {
		args = append(args, "-config", s.settings.ConfigPath)
	}
	cmd := exec.Command(self, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), s.urlEnv()...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", role, err)
	}
	return cmd, nil
}

// urlEnv tells children where their sibling services live.
func (s *supervisor) urlEnv() []string {
	base := func(role string) string {
		return fmt.Sprintf("http://%s:%d", s.settings.Host, s.settings.Ports[role])
	}
	return []string{
		"POLICY_URL=" + base(rolePolicy),
		"ELIGIBILITY_URL=" + base(roleEligibility),
		"MATCHER_URL=" + base(roleMatcher),
		"CREDENTIAL_URL=" + base(roleCredential),
		"APPLY_URL=" + base(roleApply),
	}
}

func (s *supervisor) awaitHealthy(svc *managedService) error {
	deadline := time.Now().Add(healthPollDeadline)
	for time.Now().Before(deadline) {
		if s.healthy(svc) {
			return nil
		}
		time.Sleep(healthPollInterval)
	}
	return fmt.Errorf("%s did not become healthy within %s", svc.role, healthPollDeadline)
}

func (s *supervisor) healthy(svc *managedService) bool {
	url := fmt.Sprintf("http://%s:%d/health", s.settings.Host, svc.port)
	resp, err := s.client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Status == "ok"
}

// reapAndRestart owns the single Wait on the child, closes done once the
// process has been reaped, and relaunches it when it exits for any reason
// other than supervisor shutdown or a failed launch.
func (s *supervisor) reapAndRestart(svc *managedService) {
	err := svc.cmd.Wait()
	close(svc.done)

	s.mu.Lock()
	registered := s.services[svc.role] == svc
	if registered {
		delete(s.services, svc.role)
	}
	restart := registered && !s.stopping
	s.mu.Unlock()
	if !restart {
		return
	}

	fmt.Printf("[Supervisor] %s exited (%v), restarting in %s\n", svc.role, err, restartBackoff)
	time.Sleep(restartBackoff)
	if err := s.launch(svc.role); err != nil {
		fmt.Printf("[Supervisor] Restart of %s failed: %v\n", svc.role, err)
	}
}

// watch periodically health-checks every service and force-restarts any
// that fails three checks in a row. Killing the process is enough: the
// reaper goroutine handles the relaunch.
func (s *supervisor) watch() {
	failures := make(map[string]int)
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		if s.stopping {
			s.mu.Unlock()
			return
		}
		current := make([]*managedService, 0, len(s.services))
		for _, svc := range s.services {
			current = append(current, svc)
		}
		s.mu.Unlock()

		for _, svc := range current {
			if s.healthy(svc) {
				failures[svc.role] = 0
				continue
			}
			failures[svc.role]++
			fmt.Printf("[Supervisor] %s health check failed (%d/%d)\n", svc.role, failures[svc.role], healthFailLimit)
			if failures[svc.role] >= healthFailLimit {
				failures[svc.role] = 0
				fmt.Printf("[Supervisor] %s unresponsive, killing for restart\n", svc.role)
				svc.cmd.Process.Kill()
			}
		}
	}
}

// shutdown stops children in reverse launch order, orchestrator first.
func (s *supervisor) shutdown() {
	s.mu.Lock()
	s.stopping = true
	services := make(map[string]*managedService, len(s.services))
	for role, svc := range s.services {
		services[role] = svc
	}
	s.mu.Unlock()

	for i := len(launchOrder) - 1; i >= 0; i-- {
		role := launchOrder[i]
		svc, ok := services[role]
		if !ok {
			continue
		}
		svc.cmd.Process.Signal(syscall.SIGTERM)
	}
	for _, svc := range services {
		select {
		case <-svc.done:
		case <-time.After(5 * time.Second):
			svc.cmd.Process.Kill()
			<-svc.done
		}
	}
}
