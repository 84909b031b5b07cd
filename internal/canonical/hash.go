package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room to change the hashed shape later.
const (
	DomainResult = "mipsgrade/result/v1"
	DomainState  = "mipsgrade/state/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex digest of v's canonical JSON under domain.
func Hash(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// ResultID identifies one graded test within a run. The score is passed in
// its formatted form since floats have no canonical encoding.
func ResultID(runID, testName string, success bool, score string, messages []string) (string, error) {
	if messages == nil {
		messages = []string{}
	}
	return Hash(DomainResult, map[string]any{
		"run_id":   runID,
		"test":     testName,
		"success":  success,
		"score":    score,
		"messages": messages,
	})
}

// StateDigest fingerprints a machine state given in its map form, so runs
// graded against the same expectation can be grouped.
func StateDigest(state map[string]any) (string, error) {
	return Hash(DomainState, state)
}
