package payment

import (
	"context"
	"strings"
)

// Gateway charge statuses, as reported by the card processor.
const (
	ChargeSuccessful = "successful"
	ChargePending    = "pending"
	ChargeFailed     = "failed"
)

type ChargeRequest struct {
	AmountMinor int64
	Currency    string
	CardToken   string
	Description string
	Metadata    map[string]interface{}
}

type Charge struct {
	ID             string
	Status         string
	FailureCode    string
	FailureMessage string
}

// ChargeEvent is a verified webhook notification about a charge.
type ChargeEvent struct {
	ID          string
	Key         string
	ChargeID    string
	Status      string
	FailureCode string
}

// Gateway is the external card processor.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	CancelCharge(ctx context.Context, chargeID string) error
	RetrieveEvent(ctx context.Context, eventID string) (*ChargeEvent, error)
}

// MapFailureCode folds processor failure codes into the codes clients understand.
func MapFailureCode(code string) string {
	switch strings.ToLower(code) {
	case "insufficient_fund", "insufficient_funds":
		return CodeInsufficientFunds
	case "expired_card", "invalid_expiration_date":
		return CodeExpiredCard
	case "stolen_or_lost_card", "payment_rejected", "failed_fraud_check",
		"invalid_security_code", "failed_processing", "card_declined":
		return CodeCardDeclined
	default:
		return CodePaymentFailed
	}
}
