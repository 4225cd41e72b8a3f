package cryptox

import (
	"encoding/json"
	"fmt"
	"os"

	"securenotes/internal/filex"
)

// metadataVersion tags the on-disk SecurityMetadata layout for forward
// migration.
const metadataVersion = 1

// SecurityMetadata is the per-user record binding key material to the
// environment it was created in. JSON field names match the historical
// layout so existing installations keep loading.
type SecurityMetadata struct {
	Version          int    `json:"version"`
	CreatedTimestamp int64  `json:"created_timestamp"`
	FingerprintHash  uint64 `json:"hardware_fingerprint_hash"`
	// Empty on legacy records; InitializeForUser upgrades those in place.
	FingerprintComponents []string `json:"hardware_components"`
}

func readMetadata(path string) (*SecurityMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read security metadata: %w", err)
	}
	var meta SecurityMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse security metadata: %w", err)
	}
	if meta.Version > metadataVersion {
		return nil, fmt.Errorf("unsupported security metadata version %d", meta.Version)
	}
	return &meta, nil
}

func writeMetadata(path string, meta *SecurityMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode security metadata: %w", err)
	}
	return filex.WriteFileOwnerOnly(path, data)
}
