package core

import (
	stderrors "errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestMapError_AssignsStableCodes(t *testing.T) {
	mapped := MapError(stderrors.New("core: credential client id is required"))
	if mapped.TextCode != ServiceErrorCredentialInvalid {
		t.Fatalf("expected credential text code, got %q", mapped.TextCode)
	}
	if mapped.Code == 0 {
		t.Fatalf("expected http status code on mapped error")
	}

	mapped = MapError(stderrors.New("trigger: node id is invalid"))
	if mapped.TextCode != ServiceErrorBadInput {
		t.Fatalf("expected bad input code, got %q", mapped.TextCode)
	}
}

func TestMapError_PreservesRichErrors(t *testing.T) {
	source := goerrors.New("account: subscribe webhook failed", goerrors.CategoryExternal).
		WithCode(502).
		WithTextCode(ServiceErrorWebhookSubscribe)
	mapped := MapError(source)
	if mapped.TextCode != ServiceErrorWebhookSubscribe {
		t.Fatalf("expected subscribe text code preserved, got %q", mapped.TextCode)
	}
	if mapped.Code != 502 {
		t.Fatalf("expected code 502 preserved, got %d", mapped.Code)
	}
}

func TestMapError_FillsEnvelopeDefaults(t *testing.T) {
	source := goerrors.New("scheduler: lead post rejected", goerrors.CategoryExternal)
	mapped := MapError(source)
	if mapped.Code != 502 {
		t.Fatalf("expected external category to map to 502, got %d", mapped.Code)
	}
	if mapped.TextCode != ServiceErrorAPIFailure {
		t.Fatalf("expected api failure text code, got %q", mapped.TextCode)
	}
}
