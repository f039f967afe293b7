package agent

import (
	"errors"
	"testing"
)

func TestNormalizeEnvelopeFull(t *testing.T) {
	t.Parallel()
	env, err := NormalizeEnvelope([]byte(`{
		"id": "abc",
		"sender": "agent:x:000000",
		"metadata": {"age": 45},
		"timeout": 10
	}`))
	if err != nil {
		t.Fatalf("NormalizeEnvelope: %v", err)
	}
	if env.ID != "abc" || env.Sender != "agent:x:000000" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Data()["age"] != float64(45) {
		t.Fatalf("Data() should prefer metadata: %v", env.Data())
	}
}

func TestNormalizeEnvelopeGeneratesID(t *testing.T) {
	t.Parallel()
	env, err := NormalizeEnvelope([]byte(`{"metadata": {}}`))
	if err != nil {
		t.Fatalf("NormalizeEnvelope: %v", err)
	}
	if env.ID == "" {
		t.Fatal("missing id must be generated")
	}
}

func TestNormalizeEnvelopeRejectsNonObject(t *testing.T) {
	t.Parallel()
	for _, body := range []string{"[1,2]", `"text"`, "42", "not json", "null"} {
		_, err := NormalizeEnvelope([]byte(body))
		if err == nil {
			t.Fatalf("body %q accepted", body)
		}
		var ce *CallError
		if !errors.As(err, &ce) || ce.Code != CodeMalformedPayload {
			t.Fatalf("body %q: expected malformed_payload, got %v", body, err)
		}
	}
}

func TestDataFallsBackToPayload(t *testing.T) {
	t.Parallel()
	env, err := NormalizeEnvelope([]byte(`{"id": "x", "age": 30, "category": "farmer"}`))
	if err != nil {
		t.Fatalf("NormalizeEnvelope: %v", err)
	}
	if env.Data()["category"] != "farmer" {
		t.Fatalf("Data() should fall back to top-level fields: %v", env.Data())
	}
}

func TestDecodeData(t *testing.T) {
	t.Parallel()
	env, err := NormalizeEnvelope([]byte(`{"metadata": {"age": 30, "category": "farmer"}}`))
	if err != nil {
		t.Fatalf("NormalizeEnvelope: %v", err)
	}
	var out struct {
		Age      int    `json:"age"`
		Category string `json:"category"`
	}
	if err := env.DecodeData(&out); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if out.Age != 30 || out.Category != "farmer" {
		t.Fatalf("unexpected decode: %+v", out)
	}
}

func TestErrorResultShape(t *testing.T) {
	t.Parallel()
	r := ErrorResult(CodeTimeout, "too slow")
	if !IsErrorResult(r) {
		t.Fatal("ErrorResult not recognized")
	}
	if IsErrorResult(map[string]interface{}{"ok": true}) {
		t.Fatal("plain map misclassified as error result")
	}
	if IsErrorResult("error") {
		t.Fatal("string misclassified as error result")
	}
}
