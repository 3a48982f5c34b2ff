package notify

import (
	"fmt"
	"strings"

	"github.com/chainvault/ingestor/types"
)

// templateKey pairs a transaction kind and direction, the way
// message templates need to be keyed.
type templateKey struct {
	kind      types.TransactionKind
	direction types.TransactionDirection
}

// Template renders a title/body pair. Title and Body are fmt.Sprintf-style
// format strings: a mapped Title consumes (amount) and a mapped Body
// consumes (amount, counterparty); the generic Body consumes (kind label,
// amount, counterparty). A string with fewer %s verbs uses only the
// leading arguments.
type Template struct {
	Title string
	Body  string
}

// genericTemplate is the fallback for any (kind, direction) pair missing
// from defaultTemplates. Every template is English; a device's Locale is
// not consulted when rendering.
var genericTemplate = Template{Title: "Transaction update", Body: "%s %s with %s"}

var defaultTemplates = map[templateKey]Template{
	{types.TransactionKindTransfer, types.DirectionIncoming}: {
		Title: "Received %s",
		Body:  "You received %s from %s",
	},
	{types.TransactionKindTransfer, types.DirectionOutgoing}: {
		Title: "Sent %s",
		Body:  "You sent %s to %s",
	},
	{types.TransactionKindTokenTransfer, types.DirectionIncoming}: {
		Title: "Received %s",
		Body:  "You received %s from %s",
	},
	{types.TransactionKindTokenTransfer, types.DirectionOutgoing}: {
		Title: "Sent %s",
		Body:  "You sent %s to %s",
	},
	{types.TransactionKindStakeRewards, types.DirectionIncoming}: {
		Title: "Staking reward",
		Body:  "You earned %s in staking rewards",
	},
	{types.TransactionKindStakeDelegate, types.DirectionOutgoing}: {
		Title: "Stake delegated",
		Body:  "You delegated %s",
	},
	{types.TransactionKindStakeUndelegate, types.DirectionOutgoing}: {
		Title: "Stake undelegated",
		Body:  "You undelegated %s",
	},
	{types.TransactionKindSwap, types.DirectionOutgoing}: {
		Title: "Swap complete",
		Body:  "Your swap of %s completed",
	},
	{types.TransactionKindApprove, types.DirectionOutgoing}: {
		Title: "Approval granted",
		Body:  "You approved %s for %s",
	},
	{types.TransactionKindContractCall, types.DirectionOutgoing}: {
		Title: "Contract interaction",
		Body:  "You interacted with %s",
	},
}

// Templates looks up title/body templates by (kind, direction),
// falling back to a generic template for unmapped combinations.
type Templates struct {
	byKey map[templateKey]Template
}

func NewTemplates() *Templates {
	return &Templates{byKey: defaultTemplates}
}

func (t *Templates) Render(kind types.TransactionKind, direction types.TransactionDirection, amount, counterparty string) (title, body string) {
	tmpl, ok := t.byKey[templateKey{kind, direction}]
	if !ok {
		return genericTemplate.Title, renderFormat(genericTemplate.Body, kindLabel(kind), amount, counterparty)
	}
	return renderFormat(tmpl.Title, amount), renderFormat(tmpl.Body, amount, counterparty)
}

// renderFormat fills the %s verbs of format from args, passing only as
// many args as format has verbs.
func renderFormat(format string, args ...interface{}) string {
	if n := strings.Count(format, "%s"); n < len(args) {
		args = args[:n]
	}
	return fmt.Sprintf(format, args...)
}

func kindLabel(k types.TransactionKind) string {
	switch k {
	case types.TransactionKindTransfer:
		return "Transfer"
	case types.TransactionKindTokenTransfer:
		return "Token transfer"
	case types.TransactionKindStakeDelegate:
		return "Stake delegate"
	case types.TransactionKindStakeUndelegate:
		return "Stake undelegate"
	case types.TransactionKindStakeRewards:
		return "Stake rewards"
	case types.TransactionKindSwap:
		return "Swap"
	case types.TransactionKindApprove:
		return "Approve"
	case types.TransactionKindContractCall:
		return "Contract call"
	default:
		return "Activity"
	}
}
