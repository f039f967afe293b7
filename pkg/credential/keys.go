package credential

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Issuer signs eligibility credentials with a secp256k1 key that persists
// across restarts so verification methods stay stable.
type Issuer struct {
	agentID string
	key     *ecdsa.PrivateKey
	now     func() time.Time
}

// NewIssuer loads the signing key from keyPath, generating and saving a
// fresh one on first run.
func NewIssuer(agentID, keyPath string) (*Issuer, error) {
	key, err := loadOrCreateKey(keyPath)
	if err != nil {
		return nil, err
	}
	return &Issuer{agentID: agentID, key: key, now: time.Now}, nil
}

func loadOrCreateKey(path string) (*ecdsa.PrivateKey, error) {
	if _, err := os.Stat(path); err == nil {
		key, err := crypto.LoadECDSA(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key %s: %w", path, err)
		}
		return key, nil
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := crypto.SaveECDSA(path, key); err != nil {
		return nil, fmt.Errorf("failed to save signing key %s: %w", path, err)
	}
	return key, nil
}

// VerificationMethod identifies the issuer key inside a credential proof.
func (i *Issuer) VerificationMethod() string {
	return crypto.PubkeyToAddress(i.key.PublicKey).Hex() + "#key-1"
}

func (i *Issuer) sign(vc *Credential) (string, string, error) {
	digest, err := credentialDigest(vc)
	if err != nil {
		return "", "", err
	}
	sig, err := crypto.Sign(digest, i.key)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(sig), i.VerificationMethod(), nil
}

// Verify recomputes the credential digest and checks that the proof
// signature recovers to the key named by the verification method.
func Verify(vc *Credential) (bool, error) {
	if vc == nil || vc.Proof == nil {
		return false, fmt.Errorf("credential has no proof")
	}
	sig, err := hex.DecodeString(vc.Proof.SignatureValue)
	if err != nil {
		return false, fmt.Errorf("malformed signature: %w", err)
	}
	digest, err := credentialDigest(vc)
	if err != nil {
		return false, err
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return false, fmt.Errorf("failed to recover signer: %w", err)
	}
	want := crypto.PubkeyToAddress(*pub).Hex() + "#key-1"
	return want == vc.Proof.VerificationMethod, nil
}
