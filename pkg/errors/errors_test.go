package errors

import (
	stdErrors "errors"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code        Code
		userMsg     string
		recoverable bool
		detailsOK   bool
	}{
		{code: CodeCatalogLoad, userMsg: "the catalog could not be loaded", recoverable: true},
		{code: CodeInsufficientStock, userMsg: "not enough stock available", recoverable: true, detailsOK: true},
		{code: CodeInsufficientComponentStock, userMsg: "not enough component stock available", recoverable: true, detailsOK: true},
		{code: CodeValidation, userMsg: "validation failed", recoverable: true, detailsOK: true},
		{code: CodeSubmission, userMsg: "the transaction could not be recorded", recoverable: true, detailsOK: true},
		{code: CodeUnauthorized, userMsg: "session expired, sign in again"},
		{code: CodeDependency, userMsg: "service unavailable", recoverable: true, detailsOK: true},
		{code: CodeInternal, userMsg: "internal error"},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.UserMessage != tt.userMsg {
			t.Fatalf("code %s expected user message %q got %q", tt.code, tt.userMsg, meta.UserMessage)
		}
		if meta.Recoverable != tt.recoverable {
			t.Fatalf("code %s expected recoverable %v got %v", tt.code, tt.recoverable, meta.Recoverable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.UserMessage != "internal error" {
		t.Fatalf("expected internal metadata, got %q", meta.UserMessage)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing counterparty")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing counterparty" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "cliente_id"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeSubmission, cause, "record sale")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeSubmission {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeInsufficientStock, "no units left")
	if got := As(err); got == nil || got.Code() != CodeInsufficientStock {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestHasCode(t *testing.T) {
	err := New(CodeInsufficientComponentStock, "shared base product over-reserved")
	if !HasCode(err, CodeInsufficientComponentStock) {
		t.Fatalf("expected HasCode to match")
	}
	if HasCode(err, CodeInsufficientStock) {
		t.Fatalf("HasCode matched the wrong code")
	}
	if HasCode(stdErrors.New("plain"), CodeInternal) {
		t.Fatalf("plain errors carry no code")
	}
}
