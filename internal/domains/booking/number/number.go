// Package number derives the display booking number shared by every booking of one checkout.
package number

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	Prefix     = "AN-HOTEL-BK"
	HashLength = 8
)

// Generate hashes the JSON encoding of payload. Equal payloads give equal numbers.
// The value is truncated, so it is not a unique key.
func Generate(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode booking number payload: %w", err)
	}

	sum := sha256.Sum256(raw)

	return Prefix + strings.ToUpper(hex.EncodeToString(sum[:])[:HashLength]), nil
}

// Verify recomputes the number of payload and compares it with candidate.
func Verify(payload any, candidate string) bool {
	expected, err := Generate(payload)
	if err != nil {
		return false
	}

	return strings.EqualFold(expected, strings.TrimSpace(candidate))
}
