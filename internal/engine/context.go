// internal/engine/context.go
package engine

import (
	"strings"

	"github.com/riskgate/riskgate/internal/types"
)

/*
 * Evaluation context construction.
 *
 * Merges the raw payload with externally computed validation results into
 * one nested read-only map the condition evaluator walks. Scalar contact
 * fields (email, phone, name, ip) become sub-maps so that the raw value,
 * the validity flag, the validator confidence and the structured facts are
 * all addressable:
 *
 *   email.value        "user@10minutemail.com"
 *   email.valid        true/false
 *   email.confidence   0..1
 *   email.domain       "10minutemail.com"   (fact, lowercased)
 *   email.disposable   true                  (fact)
 *
 * Address keys (line1, city, ...) are merged alongside address facts
 * (po_box, deliverable). Order fields (transaction_amount, currency,
 * payment_method) and metadata stay top-level.
 *
 * Domains compare case-insensitively per the field contract, so the
 * email.domain entry is normalized to lower case here; every other string
 * comparison stays case-sensitive.
 */

// BuildContext merges payload and validation results into the map condition
// trees are evaluated against. The result is never mutated after return.
func BuildContext(payload types.Payload, results types.ValidationResults) map[string]any {
	ctx := make(map[string]any, 10)

	if payload.Email != "" || hasResult(results, "email") {
		ctx["email"] = contactField(payload.Email, results, "email", emailFacts(payload.Email))
	}
	if payload.Phone != "" || hasResult(results, "phone") {
		ctx["phone"] = contactField(payload.Phone, results, "phone", nil)
	}
	if payload.Name != "" || hasResult(results, "name") {
		ctx["name"] = contactField(payload.Name, results, "name", nil)
	}
	if payload.IP != "" || hasResult(results, "ip") {
		ctx["ip"] = contactField(payload.IP, results, "ip", nil)
	}
	if payload.Address != nil || hasResult(results, "address") {
		ctx["address"] = addressField(payload.Address, results)
	}
	if payload.TransactionAmount != nil {
		ctx["transaction_amount"] = *payload.TransactionAmount
	}
	if payload.Currency != "" {
		ctx["currency"] = payload.Currency
	}
	if payload.PaymentMethod != "" {
		ctx["payment_method"] = payload.PaymentMethod
	}
	if payload.UserAgent != "" {
		ctx["user_agent"] = payload.UserAgent
	}
	if payload.Metadata != nil {
		ctx["metadata"] = payload.Metadata
	}

	return ctx
}

func hasResult(results types.ValidationResults, field string) bool {
	_, ok := results[field]
	return ok
}

// contactField assembles the sub-map for a scalar contact field. Validator
// facts win over derived facts on key collision.
func contactField(value string, results types.ValidationResults, field string, derived map[string]any) map[string]any {
	m := make(map[string]any, 4+len(derived))
	for k, v := range derived {
		m[k] = v
	}
	if value != "" {
		m["value"] = value
	}
	if res, ok := results[field]; ok {
		m["valid"] = res.Valid
		m["confidence"] = res.Confidence
		for k, v := range res.Facts {
			m[k] = normalizeFact(k, v)
		}
	}
	return m
}

// addressField merges the address object's own keys with address facts.
func addressField(address map[string]any, results types.ValidationResults) map[string]any {
	m := make(map[string]any, len(address)+4)
	for k, v := range address {
		m[k] = v
	}
	if res, ok := results["address"]; ok {
		m["valid"] = res.Valid
		m["confidence"] = res.Confidence
		for k, v := range res.Facts {
			m[k] = normalizeFact(k, v)
		}
	}
	return m
}

// emailFacts derives the domain from the address itself so domain rules
// work even when the validator supplied no facts.
func emailFacts(email string) map[string]any {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return nil
	}
	return map[string]any{"domain": strings.ToLower(email[at+1:])}
}

// normalizeFact lowercases domain-valued facts; domains are documented
// case-insensitive while all other strings compare case-sensitively.
func normalizeFact(key string, v any) any {
	if key != "domain" {
		return v
	}
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return v
}
