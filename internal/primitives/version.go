package primitives

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// ComputeVersion returns config.Version when set, else the first eight
// bytes of the SHA-256 of the config's JSON encoding. JSON sorts map keys,
// so equal configs always hash equally.
func ComputeVersion(config *GraphConfig) string {
	if config.Version != "" {
		return config.Version
	}
	data, err := json.Marshal(config)
	if err != nil {
		return "invalid"
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:8])
}
