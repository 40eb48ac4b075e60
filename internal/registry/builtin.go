package registry

import (
	"encoding/json"
	"fmt"

	"github.com/riskgate/riskgate/internal/engine"
	"github.com/riskgate/riskgate/internal/types"
)

/*
 * Builtin rule set.
 *
 * Seeded at process start, global to all tenants, never removed. Defined as
 * drafts and compiled through the normal structured-condition path so the
 * builtins exercise exactly the code custom rules do. A builtin that fails
 * to compile is a programming error, so construction panics.
 *
 * Builtin priorities start at 10 and are spaced by 10 so the zero default
 * priority of unprioritized custom rules always sorts below them.
 */

type builtinDef struct {
	id          string
	name        string
	description string
	category    string
	priority    int
	action      types.Action
	reasonCode  string
	condition   string
}

var builtinDefs = []builtinDef{
	{
		id:          "email_disposable",
		name:        "Disposable email domain",
		description: "Blocks contacts whose email domain is a known disposable provider",
		category:    "email",
		priority:    100,
		action:      types.ActionBlock,
		reasonCode:  "EMAIL_DISPOSABLE",
		condition:   `{"email.disposable": true}`,
	},
	{
		id:          "po_box_detection",
		name:        "PO box address",
		description: "Blocks orders shipping to a PO box",
		category:    "address",
		priority:    90,
		action:      types.ActionBlock,
		reasonCode:  "ADDRESS_PO_BOX",
		condition:   `{"or": [{"address.po_box": true}, {"address.line1": {"prefix": "PO Box"}}]}`,
	},
	{
		id:          "ip_blocklisted",
		name:        "Blocklisted IP",
		description: "Blocks requests from blocklisted IP addresses",
		category:    "general",
		priority:    85,
		action:      types.ActionBlock,
		reasonCode:  "IP_BLOCKLISTED",
		condition:   `{"ip.blocklisted": true}`,
	},
	{
		id:          "email_invalid",
		name:        "Invalid email",
		description: "Holds contacts whose email failed validation",
		category:    "email",
		priority:    80,
		action:      types.ActionHold,
		reasonCode:  "EMAIL_INVALID",
		condition:   `{"email.valid": false}`,
	},
	{
		id:          "phone_invalid_format",
		name:        "Invalid phone format",
		description: "Holds contacts whose phone number failed format validation",
		category:    "phone",
		priority:    70,
		action:      types.ActionHold,
		reasonCode:  "PHONE_INVALID_FORMAT",
		condition:   `{"phone.valid": false}`,
	},
	{
		id:          "phone_unsupported_country",
		name:        "Unsupported phone country",
		description: "Holds contacts whose phone number belongs to an unsupported country",
		category:    "phone",
		priority:    65,
		action:      types.ActionHold,
		reasonCode:  "PHONE_UNSUPPORTED_COUNTRY",
		condition:   `{"phone.unsupported_country": true}`,
	},
	{
		id:          "high_transaction_amount",
		name:        "High transaction amount",
		description: "Holds orders above the review threshold",
		category:    "order",
		priority:    60,
		action:      types.ActionHold,
		reasonCode:  "ORDER_HIGH_AMOUNT",
		condition:   `{"transaction_amount": {"gte": 10000}}`,
	},
	{
		id:          "address_undeliverable",
		name:        "Undeliverable address",
		description: "Holds orders with an undeliverable shipping address",
		category:    "address",
		priority:    50,
		action:      types.ActionHold,
		reasonCode:  "ADDRESS_UNDELIVERABLE",
		condition:   `{"address.deliverable": false}`,
	},
	{
		id:          "email_free_provider",
		name:        "Free email provider",
		description: "Holds contacts using a free email provider",
		category:    "email",
		priority:    20,
		action:      types.ActionHold,
		reasonCode:  "EMAIL_FREE_PROVIDER",
		condition:   `{"email.free_provider": true}`,
	},
}

// Builtins compiles the builtin rule set. Seq matches definition order so
// ties inside one priority tier stay stable.
func Builtins() []*engine.CompiledRule {
	rules := make([]*engine.CompiledRule, 0, len(builtinDefs))
	for seq, def := range builtinDefs {
		cond, err := engine.CompileCondition(json.RawMessage(def.condition))
		if err != nil {
			panic(fmt.Sprintf("builtin rule %s does not compile: %v", def.id, err))
		}
		rules = append(rules, &engine.CompiledRule{
			ID:          def.id,
			Name:        def.name,
			Description: def.description,
			Category:    def.category,
			Enabled:     true,
			Priority:    def.priority,
			Seq:         seq,
			Action:      def.action,
			ReasonCode:  def.reasonCode,
			Builtin:     true,
			Cond:        cond,
			Leaves:      cond.LeafCount(),
		})
	}
	return rules
}
