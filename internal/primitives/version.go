package primitives

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ComputeVersion returns the version of a compiled chart. A version
// declared in the definition wins; otherwise the first eight bytes of the
// SHA-256 of v's canonical JSON encoding are used, so the same chart always
// yields the same version.
func ComputeVersion(declared string, v any) (string, error) {
	if declared != "" {
		return declared, nil
	}
	return Fingerprint(v)
}

// Fingerprint hashes any JSON-encodable value. encoding/json sorts map keys,
// which keeps the result stable across runs.
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}
