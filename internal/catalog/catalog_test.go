package catalog

import "testing"

func TestReasonCodes_KnownEntries(t *testing.T) {
	codes := ReasonCodes()
	if len(codes) == 0 {
		t.Fatal("ReasonCodes() is empty")
	}

	byCode := make(map[string]Code, len(codes))
	for _, c := range codes {
		if c.Code == "" || c.Description == "" || c.Category == "" || c.Severity == "" {
			t.Errorf("incomplete entry: %+v", c)
		}
		if _, dup := byCode[c.Code]; dup {
			t.Errorf("duplicate reason code %s", c.Code)
		}
		byCode[c.Code] = c
	}

	for _, want := range []string{"EMAIL_DISPOSABLE", "ADDRESS_PO_BOX", "IP_BLOCKLISTED", "CUSTOM_RULE"} {
		if _, ok := byCode[want]; !ok {
			t.Errorf("reason code %s missing", want)
		}
	}
	if got := byCode["EMAIL_DISPOSABLE"].Severity; got != SeverityHigh {
		t.Errorf("EMAIL_DISPOSABLE severity = %s, want high", got)
	}
}

func TestErrorCodes_KnownEntries(t *testing.T) {
	byCode := make(map[string]Code)
	for _, c := range ErrorCodes() {
		byCode[c.Code] = c
	}
	for _, want := range []string{"EMPTY_RULE_BATCH", "DUPLICATE_RULE_ID", "INVALID_CONDITION", "INTERNAL_ERROR"} {
		if _, ok := byCode[want]; !ok {
			t.Errorf("error code %s missing", want)
		}
	}
}

func TestReasonDescription(t *testing.T) {
	desc, ok := ReasonDescription("EMAIL_DISPOSABLE")
	if !ok || desc == "" {
		t.Errorf("ReasonDescription(EMAIL_DISPOSABLE) = %q, %v; want description, true", desc, ok)
	}
	if _, ok := ReasonDescription("NO_SUCH_CODE"); ok {
		t.Error("ReasonDescription(NO_SUCH_CODE) ok = true, want false")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	ReasonCodes()[0].Code = "MUTATED"
	if ReasonCodes()[0].Code == "MUTATED" {
		t.Error("ReasonCodes() exposes internal table")
	}
	ErrorCodes()[0].Code = "MUTATED"
	if ErrorCodes()[0].Code == "MUTATED" {
		t.Error("ErrorCodes() exposes internal table")
	}
}
