// Command demo sends one citizen profile through a running orchestrator and
// prints the pipeline outcome. Start the services first:
//
//	policynav -service supervisor
//	go run ./cmd/demo -age 45 -income 150000 -category farmer -state bihar
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"policynav/pkg/orchestrator"
	"policynav/pkg/schemes"
)

func main() {
	url := flag.String("url", "http://127.0.0.1:5000", "Orchestrator base URL")
	age := flag.Int("age", 45, "Citizen age")
	income := flag.Int("income", 150000, "Annual income in rupees")
	category := flag.String("category", "farmer", "Citizen category")
	state := flag.String("state", "bihar", "Citizen state")
	email := flag.String("email", "citizen@example.com", "Citizen email")
	flag.Parse()

	citizen := schemes.CitizenProfile{
		Age:      *age,
		Income:   *income,
		Category: *category,
		State:    *state,
		Email:    *email,
	}
	body, err := json.Marshal(map[string]interface{}{"citizen": citizen})
	if err != nil {
		log.Fatalf("Failed to encode request: %v", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(*url+"/run", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Orchestrator unreachable at %s: %v", *url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Orchestrator returned %s", resp.Status)
	}

	var result orchestrator.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatalf("Failed to decode result: %v", err)
	}

	fmt.Println("================================================")
	fmt.Printf("Summary: %s\n", result.Summary)
	fmt.Printf("Eligible schemes: %d | Partial fallback: %t\n", result.TotalEligible, result.PartialMatches)
	fmt.Println("------------------------------------------------")
	for _, r := range result.Ranked {
		marker := " "
		if r.Eligible {
			marker = "*"
		}
		fmt.Printf("%s %2d. %-28s relevance=%d match=%d\n", marker, r.Rank, r.Name, r.RelevanceScore, r.MatchScore)
	}
	fmt.Println("------------------------------------------------")
	fmt.Println("Pipeline trace:")
	for _, step := range result.Pipeline {
		count := "-"
		if step.Count != nil {
			count = fmt.Sprintf("%d", *step.Count)
		}
		fmt.Printf("  %-18s count=%-3s ok=%t\n", step.Step, count, step.OK)
	}
	if result.VC != nil {
		pretty, _ := json.MarshalIndent(result.VC, "  ", "  ")
		fmt.Println("------------------------------------------------")
		fmt.Printf("Verifiable credential:\n  %s\n", pretty)
	}
	fmt.Println("================================================")
}
