// Package payment decides how a checkout amount gets paid: for free, through the
// card gateway, or through the local card simulator when no gateway is configured.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

// Failure codes reported back to the client on a declined payment.
const (
	CodeInsufficientFunds = "insufficient_funds"
	CodeCardDeclined      = "card_declined"
	CodeExpiredCard       = "expired_card"
	CodePaymentFailed     = "payment_failed"
)

const (
	couponIntentPrefix    = "coupon_"
	simulatedIntentPrefix = "sim_"
)

var (
	ErrCardTokenRequired = errors.New("card token is required")
	ErrNoGateway         = errors.New("payment gateway not configured")
)

// Error is a declined or failed payment.
type Error struct {
	Code     string
	Message  string
	IntentID string
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment %s: %s", e.Code, e.Message)
}

type Request struct {
	AmountMinor int64
	CouponCode  string
	CardNumber  string
	CardToken   string
	Description string
	Metadata    map[string]interface{}
}

type Result struct {
	Status    Status `json:"status"`
	IntentID  string `json:"intentId"`
	Simulated bool   `json:"simulated,omitempty"`
}

// Resolver picks the payment path. A nil gateway means simulation.
type Resolver struct {
	gateway  Gateway
	currency string
	now      func() time.Time
	newID    func() string
}

func NewResolver(gateway Gateway, currency string) *Resolver {
	return &Resolver{
		gateway:  gateway,
		currency: strings.ToLower(currency),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

func (r *Resolver) GatewayConfigured() bool {
	return r.gateway != nil
}

// Resolve settles the amount. Declines come back as *Error with a failure code.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	if req.AmountMinor <= 0 {
		code := strings.ToLower(strings.TrimSpace(req.CouponCode))
		if code == "" {
			code = "free"
		}
		return Result{
			Status:   StatusPaid,
			IntentID: fmt.Sprintf("%s%s_%d", couponIntentPrefix, code, r.now().UnixMilli()),
		}, nil
	}

	if r.gateway == nil {
		return r.simulate(req.CardNumber)
	}

	if strings.TrimSpace(req.CardToken) == "" {
		return Result{}, ErrCardTokenRequired
	}

	charge, err := r.gateway.CreateCharge(ctx, ChargeRequest{
		AmountMinor: req.AmountMinor,
		Currency:    r.currency,
		CardToken:   req.CardToken,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return Result{}, &Error{Code: CodePaymentFailed, Message: err.Error()}
	}

	switch charge.Status {
	case ChargeSuccessful:
		return Result{Status: StatusPaid, IntentID: charge.ID}, nil
	case ChargePending:
		return Result{Status: StatusPending, IntentID: charge.ID}, nil
	default:
		msg := charge.FailureMessage
		if msg == "" {
			msg = "Your payment could not be completed"
		}
		return Result{}, &Error{
			Code:     MapFailureCode(charge.FailureCode),
			Message:  msg,
			IntentID: charge.ID,
		}
	}
}

// Cancel asks the gateway to void or refund an intent. Synthetic intents are
// local only, so there is nothing upstream to cancel.
func (r *Resolver) Cancel(ctx context.Context, intentID string) error {
	if intentID == "" || IsSynthetic(intentID) || r.gateway == nil {
		return nil
	}
	return r.gateway.CancelCharge(ctx, intentID)
}

// VerifyEvent re-fetches a webhook event from the gateway.
func (r *Resolver) VerifyEvent(ctx context.Context, eventID string) (*ChargeEvent, error) {
	if r.gateway == nil {
		return nil, ErrNoGateway
	}
	return r.gateway.RetrieveEvent(ctx, eventID)
}

func IsSynthetic(intentID string) bool {
	return strings.HasPrefix(intentID, couponIntentPrefix) || strings.HasPrefix(intentID, simulatedIntentPrefix)
}
