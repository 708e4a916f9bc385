package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodePayloadTooLarge, status: http.StatusRequestEntityTooLarge, publicMsg: "request body too large", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", detailsOK: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", retryable: true},
		{code: CodeInsufficientStock, status: http.StatusConflict, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeInvalidTransition, status: http.StatusUnprocessableEntity, publicMsg: "status transition not allowed", detailsOK: true},
		{code: CodeInvalidState, status: http.StatusUnprocessableEntity, publicMsg: "operation not allowed in current status", detailsOK: true},
		{code: CodeReversal, status: http.StatusInternalServerError, publicMsg: "transfer reversal would corrupt stock", detailsOK: true},
		{code: CodePersistence, status: http.StatusServiceUnavailable, publicMsg: "storage unavailable", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing lines")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing lines" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}
	if base.Error() != "VALIDATION_ERROR: missing lines" {
		t.Fatalf("unexpected error string %q", base.Error())
	}

	base.WithDetails(map[string]any{"field": "lines"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("connection reset")
	wrapped := Wrap(CodePersistence, cause, "insert transfer")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodePersistence {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if wrapped.Error() != "PERSISTENCE_ERROR: insert transfer: connection reset" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInvalidState, "transfer locked"))
	if got := As(err); got == nil || got.Code() != CodeInvalidState {
		t.Fatalf("As failed to return typed error")
	}
	if !HasCode(err, CodeInvalidState) {
		t.Fatalf("HasCode should find the wrapped code")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatalf("HasCode matched the wrong code")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestInsufficientStockCarriesQuantities(t *testing.T) {
	err := InsufficientStock("item-x", "loc-a", 30, 1000)
	if err.Code() != CodeInsufficientStock {
		t.Fatalf("unexpected code %s", err.Code())
	}
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected map details, got %T", err.Details())
	}
	if details["available"] != 30 || details["requested"] != 1000 {
		t.Fatalf("unexpected quantities %+v", details)
	}
	if details["item_id"] != "item-x" || details["location_id"] != "loc-a" {
		t.Fatalf("unexpected references %+v", details)
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodePersistence, stdErrors.New("disk full"), "append movement")
	dump := Dump(err)
	if dump.Code != CodePersistence {
		t.Fatalf("expected persistence code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d: %v", len(dump.Chain), dump.Chain)
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("expected empty dump for nil")
	}
}
