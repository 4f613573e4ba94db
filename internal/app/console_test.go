package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/subhdotsol/vimgram/internal/accounts"
)

func TestPromptCredentialsRetriesUntilValid(t *testing.T) {
	in := strings.NewReader("abc\n12345\n\nsecret\n")
	var out bytes.Buffer

	id, hash, err := PromptCredentials(in, &out)
	if err != nil {
		t.Fatalf("PromptCredentials() error = %v", err)
	}
	if id != 12345 || hash != "secret" {
		t.Errorf("got %d %q, want 12345 \"secret\"", id, hash)
	}

	text := out.String()
	if !strings.Contains(text, "my.telegram.org") {
		t.Error("output should point at my.telegram.org")
	}
	if !strings.Contains(text, "Invalid API_ID") {
		t.Error("bad id input should be rejected with a retry")
	}
	if !strings.Contains(text, "API_HASH cannot be empty") {
		t.Error("empty hash input should be rejected with a retry")
	}
}

func TestPromptCredentialsAcceptsFinalLineWithoutNewline(t *testing.T) {
	in := strings.NewReader("777\nhash-no-newline")
	var out bytes.Buffer

	id, hash, err := PromptCredentials(in, &out)
	if err != nil {
		t.Fatalf("PromptCredentials() error = %v", err)
	}
	if id != 777 || hash != "hash-no-newline" {
		t.Errorf("got %d %q", id, hash)
	}
}

func TestPromptCredentialsEOF(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer

	if _, _, err := PromptCredentials(in, &out); err == nil {
		t.Error("exhausted input should fail, not loop")
	}
}

func TestPromptNewAccountRegisters(t *testing.T) {
	reg := &accounts.Registry{}
	in := strings.NewReader("+15551234567\nWork\n")
	var out bytes.Buffer

	acc, err := PromptNewAccount(in, &out, reg)
	if err != nil {
		t.Fatalf("PromptNewAccount() error = %v", err)
	}
	if acc.ID != "account_1" || acc.Phone != "+15551234567" || acc.Name != "Work" {
		t.Errorf("account = %+v", acc)
	}
	if _, ok := reg.Get(acc.ID); !ok {
		t.Error("account not registered")
	}
}

func TestPromptNewAccountRejectsEmptyPhone(t *testing.T) {
	reg := &accounts.Registry{}
	in := strings.NewReader("\n+1555\n\n")
	var out bytes.Buffer

	acc, err := PromptNewAccount(in, &out, reg)
	if err != nil {
		t.Fatalf("PromptNewAccount() error = %v", err)
	}
	if acc.Phone != "+1555" {
		t.Errorf("phone = %q, want the retried value", acc.Phone)
	}
	if acc.Name != "" {
		t.Errorf("name = %q, want empty to be allowed", acc.Name)
	}
	if !strings.Contains(out.String(), "Phone number cannot be empty") {
		t.Error("empty phone should be rejected with a retry")
	}
}
