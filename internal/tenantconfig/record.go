package tenantconfig

import (
	"encoding/json"
	"fmt"
)

// Record is the persisted per-workspace credential object. A record is
// either absent (workspace unconfigured) or carries a non-empty API key;
// every other field is optional and defaults process-wide when unset.
type Record struct {
	APIKey               string   `json:"api_key"`
	Model                string   `json:"model,omitempty"`
	ImageGenerationModel string   `json:"image_generation_model,omitempty"`
	Temperature          *float64 `json:"temperature,omitempty"`
}

// Encode serializes the record in the structured wire format. Only the
// structured format is ever written; the legacy form is read-only.
func (r Record) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

// decodeRecord parses a stored payload. It accepts the structured JSON
// encoding and the legacy encoding, which is the bare secret string with
// no structure at all. A payload that parses as JSON but carries no
// api_key yields an empty record (treated as unconfigured by Load).
func decodeRecord(data []byte) Record {
	var rec Record
	if err := json.Unmarshal(data, &rec); err == nil {
		return rec
	}
	return Record{APIKey: string(data)}
}
