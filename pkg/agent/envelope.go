package agent

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Envelope is the unit of work handed to a message handler. It is built
// once per inbound call and never mutated afterwards.
type Envelope struct {
	ID       string                 `json:"id"`
	Sender   string                 `json:"sender"`
	Payload  map[string]interface{} `json:"payload"`
	Metadata map[string]interface{} `json:"metadata"`
}

// NormalizeEnvelope parses a raw request body into an Envelope. A missing id
// gets a generated one so external callers can still correlate via the
// response. Anything that is not a JSON object is a malformed payload.
func NormalizeEnvelope(body []byte) (Envelope, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, &CallError{Code: CodeMalformedPayload, Detail: "request body must be a JSON object: " + err.Error()}
	}
	if raw == nil {
		return Envelope{}, &CallError{Code: CodeMalformedPayload, Detail: "request body must be a JSON object"}
	}

	env := Envelope{
		ID:      stringField(raw, "id"),
		Sender:  stringField(raw, "sender"),
		Payload: raw,
	}
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if meta, ok := raw["metadata"].(map[string]interface{}); ok {
		env.Metadata = meta
	}
	return env, nil
}

// Data is the single normalization point for business payloads: the metadata
// object when present, the raw body otherwise. Handlers only ever see this.
func (e Envelope) Data() map[string]interface{} {
	if len(e.Metadata) > 0 {
		return e.Metadata
	}
	return e.Payload
}

// DecodeData unmarshals the normalized payload into a typed value. A shape
// mismatch surfaces as a malformed-payload error, never as a silent default.
func (e Envelope) DecodeData(out interface{}) error {
	b, err := json.Marshal(e.Data())
	if err != nil {
		return &CallError{Code: CodeMalformedPayload, Detail: err.Error()}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &CallError{Code: CodeMalformedPayload, Detail: err.Error()}
	}
	return nil
}

func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
