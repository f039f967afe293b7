package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pelletier/go-toml/v2"

	"policynav/pkg/orchestrator"
)

type startupPortsConfig struct {
	Orchestrator int `toml:"orchestrator"`
	Policy       int `toml:"policy"`
	Eligibility  int `toml:"eligibility"`
	Matcher      int `toml:"matcher"`
	Credential   int `toml:"credential"`
	Apply        int `toml:"apply"`
}

type startupProfile struct {
	Host           string             `toml:"host"`
	Workspace      string             `toml:"workspace"`
	CallTimeoutSec int                `toml:"call_timeout_sec"`
	PartialLimit   int                `toml:"partial_limit"`
	Ports          startupPortsConfig `toml:"ports"`
}

func main() {
	service := flag.String("service", roleSupervisor, "Role to run: supervisor, orchestrator, policy, eligibility, matcher, credential, apply")
	port := flag.Int("port", 0, "Listen port (default depends on role)")
	host := flag.String("host", "127.0.0.1", "Listen host")
	workspace := flag.String("workspace", "./workspace", "Workspace directory (stores databases and signing keys)")
	dbPath := flag.String("db", "", "Path to service database (default under workspace)")
	configPath := flag.String("config", "", "Optional path to startup profile TOML")
	flag.Parse()

	profile, err := loadStartupProfile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load startup profile: %v", err)
	}
	if profile != nil && strings.TrimSpace(profile.Host) != "" && *host == "127.0.0.1" {
		*host = strings.TrimSpace(profile.Host)
	}
	if profile != nil && strings.TrimSpace(profile.Workspace) != "" && *workspace == "./workspace" {
		*workspace = strings.TrimSpace(profile.Workspace)
	}

	role := strings.ToLower(strings.TrimSpace(*service))
	os.MkdirAll(*workspace, 0755)

	if role == roleSupervisor {
		runSupervisor(supervisorSettings{
			Host:       *host,
			Workspace:  *workspace,
			ConfigPath: *configPath,
			Ports:      resolvePorts(profile),
		})
		return
	}

	settings := serviceSettings{
		Host:      *host,
		Port:      rolePort(role, *port, profile),
		Workspace: *workspace,
		DBPath:    *dbPath,
		URLs:      resolveServiceURLs(*host, profile),
		Config:    orchestratorConfig(profile),
	}
	ag, err := buildService(role, settings)
	if err != nil {
		log.Fatalf("Failed to build %s service: %v", role, err)
	}
	if err := ag.Start(); err != nil {
		log.Fatalf("Failed to start %s service: %v", role, err)
	}
	fmt.Printf("[%s] Running on %s:%d | ID: %s\n", ag.Name(), settings.Host, settings.Port, ag.ID())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	if err := ag.Stop(); err != nil {
		fmt.Printf("[%s] Shutdown error: %v\n", ag.Name(), err)
	}
	fmt.Printf("[%s] Stopped.\n", ag.Name())
}

func loadStartupProfile(path string) (*startupProfile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profile startupProfile
	if err := toml.Unmarshal(b, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// resolvePorts merges profile ports over the built-in defaults.
func resolvePorts(profile *startupProfile) map[string]int {
	ports := make(map[string]int, len(defaultPorts))
	for role, p := range defaultPorts {
		ports[role] = p
	}
	if profile != nil {
		overrides := map[string]int{
			roleOrchestrator: profile.Ports.Orchestrator,
			rolePolicy:       profile.Ports.Policy,
			roleEligibility:  profile.Ports.Eligibility,
			roleMatcher:      profile.Ports.Matcher,
			roleCredential:   profile.Ports.Credential,
			roleApply:        profile.Ports.Apply,
		}
		for role, p := range overrides {
			if p > 0 {
				ports[role] = p
			}
		}
	}
	for role := range ports {
		if env := envPort(role); env > 0 {
			ports[role] = env
		}
	}
	return ports
}

// rolePort picks the listen port: explicit flag, then PORT env, then
// profile/defaults.
func rolePort(role string, flagPort int, profile *startupProfile) int {
	if flagPort > 0 {
		return flagPort
	}
	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			return p
		}
	}
	return resolvePorts(profile)[role]
}

// envPort reads an override like POLICY_PORT or ORCHESTRATOR_PORT.
func envPort(role string) int {
	raw := strings.TrimSpace(os.Getenv(strings.ToUpper(role) + "_PORT"))
	if raw == "" {
		return 0
	}
	p, err := strconv.Atoi(raw)
	if err != nil || p <= 0 {
		return 0
	}
	return p
}

// resolveServiceURLs builds sub-service base URLs for the orchestrator.
// Explicit *_URL env values win over host/port derivation.
func resolveServiceURLs(host string, profile *startupProfile) orchestrator.ServiceURLs {
	ports := resolvePorts(profile)
	pick := func(envKey, role string) string {
		if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
			return strings.TrimSuffix(v, "/")
		}
		return fmt.Sprintf("http://%s:%d", host, ports[role])
	}
	return orchestrator.ServiceURLs{
		Policy:      pick("POLICY_URL", rolePolicy),
		Eligibility: pick("ELIGIBILITY_URL", roleEligibility),
		Matcher:     pick("MATCHER_URL", roleMatcher),
		Credential:  pick("CREDENTIAL_URL", roleCredential),
	}
}

func orchestratorConfig(profile *startupProfile) orchestrator.Config {
	cfg := orchestrator.Config{}
	if profile != nil {
		if profile.CallTimeoutSec > 0 {
			cfg.CallTimeout = time.Duration(profile.CallTimeoutSec) * time.Second
		}
		if profile.PartialLimit > 0 {
			cfg.PartialLimit = profile.PartialLimit
		}
	}
	return cfg
}
