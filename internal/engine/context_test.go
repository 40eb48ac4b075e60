// internal/engine/context_test.go
package engine

import (
	"testing"

	"github.com/riskgate/riskgate/internal/types"
)

func TestBuildContext_ContactFieldMerging(t *testing.T) {
	payload := types.Payload{Email: "user@TempMail.com"}
	results := types.ValidationResults{
		"email": {
			Valid:      false,
			Confidence: 0.3,
			Facts:      map[string]any{"disposable": true},
		},
	}

	ctx := BuildContext(payload, results)

	email, ok := ctx["email"].(map[string]any)
	if !ok {
		t.Fatalf("ctx[email] = %T, want map", ctx["email"])
	}
	if email["value"] != "user@TempMail.com" {
		t.Errorf("email.value = %v, want raw address", email["value"])
	}
	if email["valid"] != false {
		t.Errorf("email.valid = %v, want false", email["valid"])
	}
	if email["confidence"] != 0.3 {
		t.Errorf("email.confidence = %v, want 0.3", email["confidence"])
	}
	if email["disposable"] != true {
		t.Errorf("email.disposable = %v, want true", email["disposable"])
	}
	// Derived from the address itself, lowercased.
	if email["domain"] != "tempmail.com" {
		t.Errorf("email.domain = %v, want tempmail.com", email["domain"])
	}
}

func TestBuildContext_ValidatorDomainFactWins(t *testing.T) {
	payload := types.Payload{Email: "user@alias.example.com"}
	results := types.ValidationResults{
		"email": {
			Valid:      true,
			Confidence: 0.9,
			Facts:      map[string]any{"domain": "Canonical.Example.com"},
		},
	}

	ctx := BuildContext(payload, results)
	email := ctx["email"].(map[string]any)
	if email["domain"] != "canonical.example.com" {
		t.Errorf("email.domain = %v, want canonical.example.com (validator fact, lowercased)", email["domain"])
	}
}

func TestBuildContext_AddressMergesFacts(t *testing.T) {
	payload := types.Payload{
		Address: map[string]any{"line1": "PO Box 42", "country": "US"},
	}
	results := types.ValidationResults{
		"address": {
			Valid:      true,
			Confidence: 0.8,
			Facts:      map[string]any{"po_box": true, "deliverable": false},
		},
	}

	ctx := BuildContext(payload, results)
	address := ctx["address"].(map[string]any)
	if address["line1"] != "PO Box 42" {
		t.Errorf("address.line1 = %v, want PO Box 42", address["line1"])
	}
	if address["po_box"] != true {
		t.Errorf("address.po_box = %v, want true", address["po_box"])
	}
	if address["deliverable"] != false {
		t.Errorf("address.deliverable = %v, want false", address["deliverable"])
	}
}

func TestBuildContext_OrderFieldsStayTopLevel(t *testing.T) {
	amount := 1500.0
	payload := types.Payload{
		TransactionAmount: &amount,
		Currency:          "USD",
		PaymentMethod:     "card",
		Metadata:          map[string]any{"channel": "web"},
	}

	ctx := BuildContext(payload, nil)
	if ctx["transaction_amount"] != 1500.0 {
		t.Errorf("transaction_amount = %v, want 1500", ctx["transaction_amount"])
	}
	if ctx["currency"] != "USD" {
		t.Errorf("currency = %v, want USD", ctx["currency"])
	}
	meta := ctx["metadata"].(map[string]any)
	if meta["channel"] != "web" {
		t.Errorf("metadata.channel = %v, want web", meta["channel"])
	}
}

func TestBuildContext_EmptyPayloadIsEmptyContext(t *testing.T) {
	ctx := BuildContext(types.Payload{}, nil)
	if len(ctx) != 0 {
		t.Errorf("len(ctx) = %d, want 0; ctx = %v", len(ctx), ctx)
	}
}

func TestBuildContext_ResultWithoutPayloadField(t *testing.T) {
	// A validator can report on a field the payload carries only implicitly.
	results := types.ValidationResults{
		"phone": {Valid: false, Confidence: 0.4},
	}
	ctx := BuildContext(types.Payload{}, results)
	phone, ok := ctx["phone"].(map[string]any)
	if !ok {
		t.Fatalf("ctx[phone] = %T, want map", ctx["phone"])
	}
	if phone["valid"] != false {
		t.Errorf("phone.valid = %v, want false", phone["valid"])
	}
	if _, present := phone["value"]; present {
		t.Errorf("phone.value present = true, want absent")
	}
}
