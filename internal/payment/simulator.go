package payment

import "strings"

// Magic card numbers for exercising decline paths without a live account.
var simulatedDeclines = map[string]Error{
	"4000000000009995": {Code: CodeInsufficientFunds, Message: "Your card has insufficient funds."},
	"4000000000000002": {Code: CodeCardDeclined, Message: "Your card was declined."},
	"4000000000000069": {Code: CodeExpiredCard, Message: "Your card has expired."},
}

func (r *Resolver) simulate(cardNumber string) (Result, error) {
	number := normalizeCardNumber(cardNumber)
	if decline, ok := simulatedDeclines[number]; ok {
		d := decline
		return Result{}, &d
	}
	return Result{
		Status:    StatusPaid,
		IntentID:  simulatedIntentPrefix + r.newID(),
		Simulated: true,
	}, nil
}

func normalizeCardNumber(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}
