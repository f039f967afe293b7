// Package credential issues time-bounded eligibility claims. A credential is
// created once per pipeline run, only when the eligible set is non-empty,
// and is never mutated after issuance; expiry enforcement is the consumer's
// job, not the issuer's.
package credential

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"policynav/pkg/schemes"
)

const (
	// ValidityWindow is the fixed lifetime of an issued credential.
	ValidityWindow = 365 * 24 * time.Hour

	proofType = "EcdsaSecp256k1Signature2019"
)

// Income bracket thresholds. The credential discloses a bracket instead of
// raw income to minimize precision.
const (
	lowIncomeBelow    = 200000
	mediumIncomeBelow = 600000
)

type SchemeRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Benefits string `json:"benefits"`
	Rank     int    `json:"rank"`
	Score    int    `json:"score"`
}

type ProfileSummary struct {
	Age           int    `json:"age"`
	State         string `json:"state"`
	Category      string `json:"category"`
	IncomeBracket string `json:"income_bracket"`
}

type Subject struct {
	ID          string         `json:"id"`
	Profile     ProfileSummary `json:"profile"`
	Eligibility Eligibility    `json:"eligibility"`
}

type Eligibility struct {
	Verified     bool        `json:"verified"`
	TotalSchemes int         `json:"totalSchemes"`
	Schemes      []SchemeRef `json:"schemes"`
}

type IssuerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	SignatureValue     string `json:"signatureValue"`
}

type Credential struct {
	Context        []string  `json:"@context"`
	Type           []string  `json:"type"`
	ID             string    `json:"id"`
	Issuer         IssuerRef `json:"issuer"`
	IssuanceDate   string    `json:"issuanceDate"`
	ExpirationDate string    `json:"expirationDate"`
	Subject        Subject   `json:"credentialSubject"`
	Proof          *Proof    `json:"proof,omitempty"`
}

// SubjectDID derives a pseudonymous identifier from the profile. The same
// profile always yields the same DID.
func SubjectDID(p schemes.CitizenProfile) string {
	seed := fmt.Sprintf("%s%d%s%s", p.Email, p.Age, p.State, p.Category)
	digest := crypto.Keccak256([]byte(seed))
	return "did:key:z" + hex.EncodeToString(digest)[:32]
}

// IncomeBracket classifies annual income as low, medium, or high.
func IncomeBracket(income int) string {
	switch {
	case income < lowIncomeBelow:
		return "low"
	case income < mediumIncomeBelow:
		return "medium"
	default:
		return "high"
	}
}

// Issue builds and signs a credential for the citizen's eligible schemes.
// Ineligible entries in the input are skipped: scheme_refs may only carry
// schemes every rule check passed.
func (i *Issuer) Issue(citizen schemes.CitizenProfile, ranked []schemes.Ranked) (*Credential, error) {
	refs := make([]SchemeRef, 0, len(ranked))
	for _, r := range ranked {
		if !r.Eligible {
			continue
		}
		refs = append(refs, SchemeRef{
			ID:       r.SchemeID,
			Name:     r.Name,
			Benefits: r.Benefits,
			Rank:     r.Rank,
			Score:    r.RelevanceScore,
		})
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no eligible schemes: credential not issued")
	}

	now := i.now().UTC()
	did := SubjectDID(citizen)
	vcID := "urn:uuid:" + hex.EncodeToString(crypto.Keccak256([]byte(did)))[:16]

	vc := &Credential{
		Context: []string{
			"https://www.w3.org/2018/credentials/v1",
			"https://policy-navigator.ai/credentials/v1",
		},
		Type:           []string{"VerifiableCredential", "EligibilityCredential"},
		ID:             vcID,
		Issuer:         IssuerRef{ID: i.agentID, Name: "Policy Navigator Credential Service"},
		IssuanceDate:   now.Format(time.RFC3339),
		ExpirationDate: now.Add(ValidityWindow).Format(time.RFC3339),
		Subject: Subject{
			ID: did,
			Profile: ProfileSummary{
				Age:           citizen.Age,
				State:         citizen.State,
				Category:      citizen.Category,
				IncomeBracket: IncomeBracket(citizen.Income),
			},
			Eligibility: Eligibility{
				Verified:     true,
				TotalSchemes: len(refs),
				Schemes:      refs,
			},
		},
	}

	sig, method, err := i.sign(vc)
	if err != nil {
		return nil, fmt.Errorf("failed to sign credential: %w", err)
	}
	vc.Proof = &Proof{
		Type:               proofType,
		Created:            now.Format(time.RFC3339),
		VerificationMethod: method,
		ProofPurpose:       "assertionMethod",
		SignatureValue:     sig,
	}
	return vc, nil
}

// credentialDigest hashes the credential body without its proof.
func credentialDigest(vc *Credential) ([]byte, error) {
	unsigned := *vc
	unsigned.Proof = nil
	canonical, err := json.Marshal(&unsigned)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(canonical), nil
}
