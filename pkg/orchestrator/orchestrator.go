// Package orchestrator drives the four-stage eligibility pipeline across the
// capability services. Every run completes: a failed stage is recorded in the
// pipeline trace and the run continues with whatever the earlier stages
// produced.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"policynav/pkg/agent"
	"policynav/pkg/schemes"
)

const (
	// DefaultCallTimeout bounds each sub-service call.
	DefaultCallTimeout = 25 * time.Second
	// DefaultPartialLimit caps how many near-miss schemes are ranked when
	// nothing matched exactly.
	DefaultPartialLimit = 6
)

// ServiceURLs holds the base URLs of the capability services.
type ServiceURLs struct {
	Policy      string
	Eligibility string
	Matcher     string
	Credential  string
}

type Config struct {
	URLs         ServiceURLs
	CallTimeout  time.Duration
	PartialLimit int
}

// StepRecord is one entry in the pipeline trace. Count is nil for stages
// where a count is meaningless, like successful credential issuance.
type StepRecord struct {
	Step  string `json:"step"`
	Count *int   `json:"count"`
	OK    bool   `json:"ok"`
}

// Result is the full outcome of a pipeline run. Status is always "ok":
// degraded stages show up in Pipeline, not as request failures.
type Result struct {
	Status         string                 `json:"status"`
	CitizenProfile schemes.CitizenProfile `json:"citizen_profile"`
	Eligible       []schemes.Evaluation   `json:"eligible_schemes"`
	Ranked         []schemes.Ranked       `json:"ranked_schemes"`
	PartialMatches bool                   `json:"partial_matches"`
	VC             interface{}            `json:"vc"`
	Summary        string                 `json:"summary"`
	TotalEligible  int                    `json:"total_eligible"`
	Pipeline       []StepRecord           `json:"pipeline"`
	AgentID        string                 `json:"agent_id"`
}

type Orchestrator struct {
	cfg     Config
	client  *agent.Client
	agentID string
}

func New(agentID string, cfg Config) *Orchestrator {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.PartialLimit <= 0 {
		cfg.PartialLimit = DefaultPartialLimit
	}
	return &Orchestrator{
		cfg:     cfg,
		client:  agent.NewClient(agentID),
		agentID: agentID,
	}
}

// Run executes the pipeline for one citizen.
func (o *Orchestrator) Run(ctx context.Context, citizen schemes.CitizenProfile) Result {
	fmt.Println("[Orchestrator] New request received")
	fmt.Printf("  Profile: age=%d income=%d category=%s state=%s\n",
		citizen.Age, citizen.Income, citizen.Category, citizen.State)

	pipeline := make([]StepRecord, 0, 4)

	// Step 1 — fetch the scheme catalog.
	fmt.Println("  [1/4] Fetching schemes from policy service...")
	catalog := o.fetchSchemes(ctx)
	pipeline = append(pipeline, StepRecord{Step: "policy_fetch", Count: intPtr(len(catalog)), OK: len(catalog) > 0})
	fmt.Printf("        Got %d schemes\n", len(catalog))

	// Step 2 — evaluate all schemes against the profile.
	fmt.Println("  [2/4] Checking eligibility...")
	evaluated, eligOK := o.evaluateAll(ctx, citizen, catalog)
	eligible := make([]schemes.Evaluation, 0, len(evaluated))
	partial := make([]schemes.Evaluation, 0, len(evaluated))
	for _, ev := range evaluated {
		if ev.Eligible {
			eligible = append(eligible, ev)
		} else {
			partial = append(partial, ev)
		}
	}
	sort.SliceStable(partial, func(i, j int) bool { return partial[i].MatchScore > partial[j].MatchScore })
	pipeline = append(pipeline, StepRecord{Step: "eligibility_check", Count: intPtr(len(eligible)), OK: eligOK})
	fmt.Printf("        Eligible: %d, Partial: %d\n", len(eligible), len(partial))

	// Eligible schemes are ranked when any exist; otherwise the closest
	// near-misses stand in, capped at the partial limit.
	toRank := eligible
	usingPartial := false
	if len(eligible) == 0 && len(partial) > 0 {
		if len(partial) > o.cfg.PartialLimit {
			partial = partial[:o.cfg.PartialLimit]
		}
		toRank = partial
		usingPartial = true
	}

	// Step 3 — rank.
	fmt.Println("  [3/4] Ranking schemes...")
	ranked := o.rank(ctx, citizen, toRank)
	pipeline = append(pipeline, StepRecord{Step: "scheme_ranking", Count: intPtr(len(ranked)), OK: len(ranked) > 0})
	fmt.Printf("        Ranked: %d\n", len(ranked))

	// Step 4 — issue a credential only for genuine eligibility.
	var vc interface{}
	if len(eligible) > 0 {
		fmt.Println("  [4/4] Issuing verifiable credential...")
		credInput := ranked
		if len(credInput) == 0 {
			// Ranking degraded; issue from the unranked eligible set.
			credInput = make([]schemes.Ranked, len(eligible))
			for i, ev := range eligible {
				credInput[i] = schemes.Ranked{Evaluation: ev, RelevanceScore: ev.MatchScore, Rank: i + 1}
			}
		}
		vc = o.issueCredential(ctx, citizen, credInput)
		pipeline = append(pipeline, StepRecord{Step: "vc_issuance", Count: nil, OK: vc != nil})
	} else {
		fmt.Println("  [4/4] No credential: no eligible schemes")
		pipeline = append(pipeline, StepRecord{Step: "vc_issuance", Count: intPtr(0), OK: false})
	}

	var summary string
	switch {
	case usingPartial:
		summary = fmt.Sprintf("No exact matches found. Showing %d nearest partial matches.", len(ranked))
	case len(eligible) == 1:
		summary = "You are eligible for 1 government scheme."
	default:
		summary = fmt.Sprintf("You are eligible for %d government schemes.", len(eligible))
	}

	fmt.Println("[Orchestrator] Done.")
	return Result{
		Status:         "ok",
		CitizenProfile: citizen,
		Eligible:       eligible,
		Ranked:         ranked,
		PartialMatches: usingPartial,
		VC:             vc,
		Summary:        summary,
		TotalEligible:  len(eligible),
		Pipeline:       pipeline,
		AgentID:        o.agentID,
	}
}

func (o *Orchestrator) fetchSchemes(ctx context.Context) []schemes.Scheme {
	raw, err := o.client.CallSync(ctx, o.cfg.URLs.Policy,
		map[string]interface{}{"request": "get_all_schemes"}, o.cfg.CallTimeout)
	if err != nil {
		fmt.Printf("  [!] Policy service call failed: %v\n", err)
		return nil
	}
	var resp struct {
		Schemes []schemes.Scheme `json:"schemes"`
	}
	if err := decodeResult(raw, &resp); err != nil {
		fmt.Printf("  [!] Policy service returned malformed catalog: %v\n", err)
		return nil
	}
	return resp.Schemes
}

func (o *Orchestrator) evaluateAll(ctx context.Context, citizen schemes.CitizenProfile, catalog []schemes.Scheme) ([]schemes.Evaluation, bool) {
	raw, err := o.client.CallSync(ctx, o.cfg.URLs.Eligibility, map[string]interface{}{
		"citizen":    citizen,
		"schemes":    catalog,
		"return_all": true,
	}, o.cfg.CallTimeout)
	if err != nil {
		fmt.Printf("  [!] Eligibility service call failed: %v\n", err)
		return nil, false
	}
	var resp struct {
		AllEvaluated []schemes.Evaluation `json:"all_evaluated"`
	}
	if err := decodeResult(raw, &resp); err != nil {
		fmt.Printf("  [!] Eligibility service returned malformed result: %v\n", err)
		return nil, false
	}
	return resp.AllEvaluated, true
}

func (o *Orchestrator) rank(ctx context.Context, citizen schemes.CitizenProfile, evals []schemes.Evaluation) []schemes.Ranked {
	if len(evals) == 0 {
		return nil
	}
	raw, err := o.client.CallSync(ctx, o.cfg.URLs.Matcher, map[string]interface{}{
		"citizen":          citizen,
		"eligible_schemes": evals,
	}, o.cfg.CallTimeout)
	if err != nil {
		fmt.Printf("  [!] Matcher service call failed: %v\n", err)
		return nil
	}
	var resp struct {
		Ranked []schemes.Ranked `json:"ranked"`
	}
	if err := decodeResult(raw, &resp); err != nil {
		fmt.Printf("  [!] Matcher service returned malformed result: %v\n", err)
		return nil
	}
	return resp.Ranked
}

func (o *Orchestrator) issueCredential(ctx context.Context, citizen schemes.CitizenProfile, ranked []schemes.Ranked) interface{} {
	raw, err := o.client.CallSync(ctx, o.cfg.URLs.Credential, map[string]interface{}{
		"citizen":          citizen,
		"eligible_schemes": ranked,
	}, o.cfg.CallTimeout)
	if err != nil {
		fmt.Printf("  [!] Credential service call failed: %v\n", err)
		return nil
	}
	var resp struct {
		VC map[string]interface{} `json:"vc"`
	}
	if err := decodeResult(raw, &resp); err != nil || resp.VC == nil {
		fmt.Println("  [!] Credential service returned no credential")
		return nil
	}
	return resp.VC
}

// decodeResult re-encodes a generic sync result into a typed struct and
// rejects service-level error payloads.
func decodeResult(raw interface{}, out interface{}) error {
	if agent.IsErrorResult(raw) {
		return fmt.Errorf("service returned error result")
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func intPtr(n int) *int { return &n }
