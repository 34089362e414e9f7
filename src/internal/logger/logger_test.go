package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
)

func TestSanitizePayloadMasksSensitiveKeys(t *testing.T) {
	payload := map[string]any{
		"username": "ada",
		"password": "secret-password",
		"nested": map[string]any{
			"Password-Hash": "$2a$10$abc",
		},
	}

	got, ok := SanitizePayload(payload).(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", SanitizePayload(payload))
	}
	if got["username"] != "ada" {
		t.Fatalf("expected username to be kept, got %v", got["username"])
	}
	if got["password"] != "******" {
		t.Fatalf("expected password to be masked, got %v", got["password"])
	}
	nested := got["nested"].(map[string]any)
	if nested["Password-Hash"] != "******" {
		t.Fatalf("expected nested hash to be masked, got %v", nested["Password-Hash"])
	}
}

func TestErrorWritesJSONLineWithError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Error("ledger failure", errors.New("boom"), Fields{"accountNumber": "0123456789", "password": "x"})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "ledger failure" {
		t.Fatalf("expected msg field, got %v", line["msg"])
	}
	if line["error"] != "boom" {
		t.Fatalf("expected error field, got %v", line["error"])
	}
	if line["password"] != "******" {
		t.Fatalf("expected masked password, got %v", line["password"])
	}
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	if err := Configure("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := Configure("info"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
