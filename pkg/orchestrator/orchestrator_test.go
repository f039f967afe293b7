package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"policynav/pkg/schemes"
)

// fakeService stands in for a capability service's /invoke/sync endpoint.
func fakeService(t *testing.T, handler func(data map[string]interface{}) interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/invoke/sync" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			ID       string                 `json:"id"`
			Metadata map[string]interface{} `json:"metadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("fake service got malformed body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"id":     body.ID,
			"result": handler(body.Metadata),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func timeoutService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID string `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGatewayTimeout)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "timeout",
			"id":     body.ID,
			"result": nil,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func farmer() schemes.CitizenProfile {
	return schemes.CitizenProfile{Age: 45, Income: 150000, Category: "farmer", State: "bihar", Email: "ram@example.com"}
}

func policyFake(t *testing.T, catalog []schemes.Scheme) *httptest.Server {
	return fakeService(t, func(data map[string]interface{}) interface{} {
		return map[string]interface{}{"schemes": catalog, "total": len(catalog)}
	})
}

func eligibilityFake(t *testing.T) *httptest.Server {
	return fakeService(t, func(data map[string]interface{}) interface{} {
		var req struct {
			Citizen   schemes.CitizenProfile `json:"citizen"`
			Schemes   []schemes.Scheme       `json:"schemes"`
			ReturnAll bool                   `json:"return_all"`
		}
		raw, _ := json.Marshal(data)
		json.Unmarshal(raw, &req)
		return map[string]interface{}{
			"all_evaluated": schemes.EvaluateAll(req.Citizen, req.Schemes, req.ReturnAll),
		}
	})
}

func matcherFake(t *testing.T) *httptest.Server {
	return fakeService(t, func(data map[string]interface{}) interface{} {
		var req struct {
			Citizen schemes.CitizenProfile `json:"citizen"`
			Evals   []schemes.Evaluation   `json:"eligible_schemes"`
		}
		raw, _ := json.Marshal(data)
		json.Unmarshal(raw, &req)
		return map[string]interface{}{"ranked": schemes.NewRanker().Rank(req.Citizen, req.Evals)}
	})
}

func credentialFake(t *testing.T) *httptest.Server {
	return fakeService(t, func(data map[string]interface{}) interface{} {
		return map[string]interface{}{
			"vc": map[string]interface{}{
				"@context":          []string{"https://www.w3.org/2018/credentials/v1"},
				"credentialSubject": map[string]interface{}{"id": "did:key:ztest"},
			},
		}
	})
}

func newTestOrchestrator(urls ServiceURLs) *Orchestrator {
	return New("agent:orchestrator:t0t0t0", Config{URLs: urls, CallTimeout: 5 * time.Second})
}

// assertStageOrder checks the trace is always the four stages in order,
// degraded or not.
func assertStageOrder(t *testing.T, pipeline []StepRecord) {
	t.Helper()
	want := []string{"policy_fetch", "eligibility_check", "scheme_ranking", "vc_issuance"}
	if len(pipeline) != len(want) {
		t.Fatalf("pipeline has %d records, want %d: %+v", len(pipeline), len(want), pipeline)
	}
	for i, name := range want {
		if pipeline[i].Step != name {
			t.Fatalf("pipeline[%d] = %q, want %q", i, pipeline[i].Step, name)
		}
	}
}

func stepByName(t *testing.T, pipeline []StepRecord, name string) StepRecord {
	t.Helper()
	for _, s := range pipeline {
		if s.Step == name {
			return s
		}
	}
	t.Fatalf("pipeline has no %q step: %+v", name, pipeline)
	return StepRecord{}
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()
	o := newTestOrchestrator(ServiceURLs{
		Policy:      policyFake(t, schemes.FallbackSchemes()).URL,
		Eligibility: eligibilityFake(t).URL,
		Matcher:     matcherFake(t).URL,
		Credential:  credentialFake(t).URL,
	})

	res := o.Run(context.Background(), farmer())

	if res.Status != "ok" {
		t.Fatalf("status = %q", res.Status)
	}
	if res.TotalEligible == 0 {
		t.Fatal("farmer profile should be eligible for at least one scheme")
	}
	if res.PartialMatches {
		t.Fatal("partial_matches should be false when eligible schemes exist")
	}
	if res.VC == nil {
		t.Fatal("credential should be issued for an eligible citizen")
	}
	assertStageOrder(t, res.Pipeline)
	for _, step := range res.Pipeline {
		if !step.OK {
			t.Errorf("step %s not ok", step.Step)
		}
	}
	if !strings.Contains(res.Summary, "You are eligible for") {
		t.Fatalf("unexpected summary: %q", res.Summary)
	}
	if res.Ranked[0].Rank != 1 {
		t.Fatalf("top ranked scheme has rank %d", res.Ranked[0].Rank)
	}
}

func TestRunPartialFallback(t *testing.T) {
	t.Parallel()
	// A catalog where nothing matches exactly: every scheme requires a
	// different category than the citizen's.
	catalog := make([]schemes.Scheme, 0, 8)
	for i, cat := range []string{"student", "women", "disabled", "senior_citizen", "sc_st", "obc", "bpl", "student"} {
		catalog = append(catalog, schemes.Scheme{
			ID:       "s" + string(rune('a'+i)),
			Name:     "Scheme " + string(rune('A'+i)),
			Category: cat,
			Rules:    schemes.Rules{Categories: []string{cat}, AgeMin: 18, AgeMax: 60, IncomeMax: 500000},
		})
	}
	o := newTestOrchestrator(ServiceURLs{
		Policy:      policyFake(t, catalog).URL,
		Eligibility: eligibilityFake(t).URL,
		Matcher:     matcherFake(t).URL,
		Credential:  credentialFake(t).URL,
	})

	res := o.Run(context.Background(), farmer())

	if res.TotalEligible != 0 {
		t.Fatalf("total_eligible = %d, want 0", res.TotalEligible)
	}
	if !res.PartialMatches {
		t.Fatal("partial_matches should be true")
	}
	assertStageOrder(t, res.Pipeline)
	if len(res.Ranked) == 0 || len(res.Ranked) > DefaultPartialLimit {
		t.Fatalf("ranked %d partial matches, want 1..%d", len(res.Ranked), DefaultPartialLimit)
	}
	if res.VC != nil {
		t.Fatal("no credential may be issued without eligible schemes")
	}
	vcStep := stepByName(t, res.Pipeline, "vc_issuance")
	if vcStep.OK || vcStep.Count == nil || *vcStep.Count != 0 {
		t.Fatalf("vc_issuance step = %+v, want ok=false count=0", vcStep)
	}
	if !strings.HasPrefix(res.Summary, "No exact matches found.") {
		t.Fatalf("unexpected summary: %q", res.Summary)
	}
}

func TestRunPolicyServiceDown(t *testing.T) {
	t.Parallel()
	o := newTestOrchestrator(ServiceURLs{
		Policy:      "http://127.0.0.1:1", // nothing listening
		Eligibility: eligibilityFake(t).URL,
		Matcher:     matcherFake(t).URL,
		Credential:  credentialFake(t).URL,
	})

	res := o.Run(context.Background(), farmer())

	if res.Status != "ok" {
		t.Fatalf("status = %q, degraded runs still return ok", res.Status)
	}
	assertStageOrder(t, res.Pipeline)
	policyStep := stepByName(t, res.Pipeline, "policy_fetch")
	if policyStep.OK || policyStep.Count == nil || *policyStep.Count != 0 {
		t.Fatalf("policy_fetch step = %+v, want ok=false count=0", policyStep)
	}
	if res.TotalEligible != 0 || res.VC != nil {
		t.Fatal("no catalog means no eligibility and no credential")
	}
}

func TestRunMatcherTimeout(t *testing.T) {
	t.Parallel()
	o := newTestOrchestrator(ServiceURLs{
		Policy:      policyFake(t, schemes.FallbackSchemes()).URL,
		Eligibility: eligibilityFake(t).URL,
		Matcher:     timeoutService(t).URL,
		Credential:  credentialFake(t).URL,
	})

	res := o.Run(context.Background(), farmer())

	rankStep := stepByName(t, res.Pipeline, "scheme_ranking")
	if rankStep.OK {
		t.Fatal("scheme_ranking should be degraded on timeout")
	}
	if res.TotalEligible == 0 {
		t.Fatal("eligibility should still succeed")
	}
	// Credential issuance falls back to the unranked eligible set.
	if res.VC == nil {
		t.Fatal("credential should still be issued when only ranking failed")
	}
}
