package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"policynav/pkg/agent"
	"policynav/pkg/credential"
	"policynav/pkg/docs"
	"policynav/pkg/orchestrator"
	"policynav/pkg/schemes"
)

// Service roles launched from the single binary.
const (
	rolePolicy       = "policy"
	roleEligibility  = "eligibility"
	roleMatcher      = "matcher"
	roleCredential   = "credential"
	roleApply        = "apply"
	roleOrchestrator = "orchestrator"
	roleSupervisor   = "supervisor"
)

var defaultPorts = map[string]int{
	roleOrchestrator: 5000,
	rolePolicy:       5001,
	roleEligibility:  5002,
	roleMatcher:      5003,
	roleCredential:   5004,
	roleApply:        5005,
}

type serviceSettings struct {
	Host      string
	Port      int
	Workspace string
	DBPath    string
	URLs      orchestrator.ServiceURLs
	Config    orchestrator.Config
}

// buildService wires up the agent for one role.
func buildService(role string, s serviceSettings) (*agent.Agent, error) {
	switch role {
	case rolePolicy:
		return buildPolicyService(s)
	case roleEligibility:
		return buildEligibilityService(s)
	case roleMatcher:
		return buildMatcherService(s)
	case roleCredential:
		return buildCredentialService(s)
	case roleApply:
		return buildApplyService(s)
	case roleOrchestrator:
		return buildOrchestratorService(s)
	default:
		return nil, fmt.Errorf("unknown service role: %s", role)
	}
}

func buildPolicyService(s serviceSettings) (*agent.Agent, error) {
	dbPath := s.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(s.Workspace, "schemes.db")
	}
	catalog, err := schemes.OpenCatalog(dbPath)
	if err != nil {
		return nil, err
	}
	if err := catalog.SeedIfEmpty(schemes.FallbackSchemes()); err != nil {
		return nil, err
	}

	ag := agent.New(agent.Config{
		Name:         "Policy Service",
		Description:  "Serves the government scheme catalog",
		Capabilities: []string{"scheme_catalog"},
		Host:         s.Host,
		Port:         s.Port,
	})
	ag.OnMessage(func(msg agent.Envelope) {
		var req struct {
			Request string `json:"request"`
		}
		if err := msg.DecodeData(&req); err != nil {
			ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeMalformedPayload, err.Error()))
			return
		}
		switch req.Request {
		case "", "get_all_schemes":
			all := catalog.ActiveOrFallback()
			fmt.Printf("[Policy Service] Serving %d schemes\n", len(all))
			ag.Deliver(msg.ID, map[string]interface{}{
				"schemes": all,
				"total":   len(all),
			})
		default:
			ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeMalformedPayload,
				fmt.Sprintf("unknown request: %s", req.Request)))
		}
	})
	return ag, nil
}

func buildEligibilityService(s serviceSettings) (*agent.Agent, error) {
	ag := agent.New(agent.Config{
		Name:         "Eligibility Service",
		Description:  "Evaluates citizen profiles against scheme rules",
		Capabilities: []string{"eligibility_check"},
		Host:         s.Host,
		Port:         s.Port,
	})
	ag.OnMessage(func(msg agent.Envelope) {
		var req struct {
			Citizen   schemes.CitizenProfile `json:"citizen"`
			Schemes   []schemes.Scheme       `json:"schemes"`
			ReturnAll bool                   `json:"return_all"`
		}
		if err := msg.DecodeData(&req); err != nil {
			ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeMalformedPayload, err.Error()))
			return
		}
		evaluated := schemes.EvaluateAll(req.Citizen, req.Schemes, true)
		eligible := make([]schemes.Evaluation, 0, len(evaluated))
		for _, ev := range evaluated {
			if ev.Eligible {
				eligible = append(eligible, ev)
			}
		}
		fmt.Printf("[Eligibility Service] Evaluated %d schemes, %d eligible\n", len(evaluated), len(eligible))
		if req.ReturnAll {
			ag.Deliver(msg.ID, map[string]interface{}{
				"all_evaluated": evaluated,
				"eligible":      eligible,
				"total":         len(evaluated),
			})
			return
		}
		ag.Deliver(msg.ID, map[string]interface{}{
			"eligible": eligible,
			"total":    len(eligible),
		})
	})
	return ag, nil
}

func buildMatcherService(s serviceSettings) (*agent.Agent, error) {
	ranker := schemes.NewRanker()
	ag := agent.New(agent.Config{
		Name:         "Matcher Service",
		Description:  "Ranks schemes by relevance to a citizen profile",
		Capabilities: []string{"scheme_ranking"},
		Host:         s.Host,
		Port:         s.Port,
	})
	ag.OnMessage(func(msg agent.Envelope) {
		var req struct {
			Citizen schemes.CitizenProfile `json:"citizen"`
			Evals   []schemes.Evaluation   `json:"eligible_schemes"`
		}
		if err := msg.DecodeData(&req); err != nil {
			ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeMalformedPayload, err.Error()))
			return
		}
		ranked := ranker.Rank(req.Citizen, req.Evals)
		fmt.Printf("[Matcher Service] Ranked %d schemes\n", len(ranked))
		ag.Deliver(msg.ID, map[string]interface{}{
			"ranked": ranked,
			"total":  len(ranked),
		})
	})
	return ag, nil
}

func buildCredentialService(s serviceSettings) (*agent.Agent, error) {
	ag := agent.New(agent.Config{
		Name:         "Credential Service",
		Description:  "Issues signed eligibility credentials",
		Capabilities: []string{"vc_issuance"},
		Host:         s.Host,
		Port:         s.Port,
	})
	issuer, err := credential.NewIssuer(ag.ID(), filepath.Join(s.Workspace, "issuer.key"))
	if err != nil {
		return nil, err
	}
	ag.OnMessage(func(msg agent.Envelope) {
		var req struct {
			Citizen schemes.CitizenProfile `json:"citizen"`
			Schemes []schemes.Ranked       `json:"eligible_schemes"`
		}
		if err := msg.DecodeData(&req); err != nil {
			ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeMalformedPayload, err.Error()))
			return
		}
		vc, err := issuer.Issue(req.Citizen, req.Schemes)
		if err != nil {
			fmt.Printf("[Credential Service] Issuance refused: %v\n", err)
			ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeHandlerFault, err.Error()))
			return
		}
		fmt.Printf("[Credential Service] Issued credential %s for %s\n", vc.ID, vc.Subject.ID)
		ag.Deliver(msg.ID, map[string]interface{}{"vc": vc})
	})
	return ag, nil
}

func buildApplyService(s serviceSettings) (*agent.Agent, error) {
	dbPath := s.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(s.Workspace, "applications.db")
	}
	store, err := docs.OpenApplications(dbPath)
	if err != nil {
		return nil, err
	}

	ag := agent.New(agent.Config{
		Name:         "Apply Service",
		Description:  "Answers document checklists and records applications",
		Capabilities: []string{"application_processing", "doc_validation"},
		Host:         s.Host,
		Port:         s.Port,
	})
	ag.OnMessage(func(msg agent.Envelope) {
		var req struct {
			Action     string                 `json:"action"`
			SchemeID   string                 `json:"scheme_id"`
			SchemeName string                 `json:"scheme_name"`
			Category   string                 `json:"category"`
			Email      string                 `json:"citizen_email"`
			Docs       map[string]interface{} `json:"docs"`
		}
		if err := msg.DecodeData(&req); err != nil {
			ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeMalformedPayload, err.Error()))
			return
		}
		if req.Action == "" {
			req.Action = "get_docs"
		}
		switch req.Action {
		case "get_docs":
			ag.Deliver(msg.ID, map[string]interface{}{
				"scheme_id":     req.SchemeID,
				"required_docs": docs.RequiredDocs(req.SchemeID, req.Category),
				"steps":         docs.Steps(),
			})
		case "submit":
			saved, err := store.Save(docs.Application{
				CitizenEmail: req.Email,
				SchemeID:     req.SchemeID,
				SchemeName:   req.SchemeName,
				Category:     req.Category,
				Docs:         req.Docs,
			})
			if err != nil {
				ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeHandlerFault, err.Error()))
				return
			}
			required := docs.RequiredDocs(req.SchemeID, req.Category)
			fmt.Printf("[Apply Service] Application %s recorded for %s\n", saved.ID, req.SchemeID)
			ag.Deliver(msg.ID, map[string]interface{}{
				"application_id": saved.ID,
				"scheme_id":      saved.SchemeID,
				"scheme_name":    saved.SchemeName,
				"status":         saved.Status,
				"required_docs":  required,
				"steps":          docs.Steps(),
				"message": fmt.Sprintf("Application for %s submitted successfully. Track with ID: %s",
					saved.SchemeName, saved.ID[:8]),
			})
		default:
			ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeMalformedPayload,
				fmt.Sprintf("unknown action: %s", req.Action)))
		}
	})
	return ag, nil
}

func buildOrchestratorService(s serviceSettings) (*agent.Agent, error) {
	ag := agent.New(agent.Config{
		Name:         "Citizen Orchestrator",
		Description:  "Runs the full policy-eligibility pipeline with partial match fallback",
		Capabilities: []string{"orchestration", "policy_verification", "eligibility_check", "vc_issuance"},
		Host:         s.Host,
		Port:         s.Port,
	})
	cfg := s.Config
	cfg.URLs = s.URLs
	orch := orchestrator.New(ag.ID(), cfg)

	ag.OnMessage(func(msg agent.Envelope) {
		var req struct {
			Citizen schemes.CitizenProfile `json:"citizen"`
		}
		if err := msg.DecodeData(&req); err != nil {
			ag.Deliver(msg.ID, agent.ErrorResult(agent.CodeMalformedPayload, err.Error()))
			return
		}
		ag.Deliver(msg.ID, orch.Run(context.Background(), req.Citizen))
	})

	// Direct pipeline entry point for web clients and the demo tool.
	ag.Handle("/run", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Citizen schemes.CitizenProfile `json:"citizen"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "error",
				"error":  "invalid request body",
				"code":   agent.CodeMalformedPayload,
			})
			return
		}
		result := orch.Run(r.Context(), req.Citizen)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	})
	return ag, nil
}
