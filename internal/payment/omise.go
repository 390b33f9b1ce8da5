package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// OmiseGateway captures cards through Omise.
type OmiseGateway struct {
	client *omise.Client
}

func NewOmiseGateway(publicKey, secretKey string) (*OmiseGateway, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	return &OmiseGateway{client: c}, nil
}

func (g *OmiseGateway) CreateCharge(_ context.Context, req ChargeRequest) (*Charge, error) {
	ch := &omise.Charge{}
	op := &operations.CreateCharge{
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Card:        req.CardToken,
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	if err := g.client.Do(ch, op); err != nil {
		return nil, err
	}
	return toCharge(ch), nil
}

// CancelCharge reverses an uncaptured charge and refunds a captured one.
func (g *OmiseGateway) CancelCharge(_ context.Context, chargeID string) error {
	ch := &omise.Charge{}
	if err := g.client.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID}); err != nil {
		return fmt.Errorf("retrieve charge %s: %w", chargeID, err)
	}

	if ch.Paid {
		refund := &omise.Refund{}
		if err := g.client.Do(refund, &operations.CreateRefund{ChargeID: chargeID, Amount: ch.Amount}); err != nil {
			return fmt.Errorf("refund charge %s: %w", chargeID, err)
		}
		return nil
	}

	reversed := &omise.Charge{}
	if err := g.client.Do(reversed, &operations.ReverseCharge{ChargeID: chargeID}); err != nil {
		return fmt.Errorf("reverse charge %s: %w", chargeID, err)
	}
	return nil
}

// RetrieveEvent loads the event from Omise so a forged webhook body is never trusted.
func (g *OmiseGateway) RetrieveEvent(_ context.Context, eventID string) (*ChargeEvent, error) {
	ev := &omise.Event{}
	if err := g.client.Do(ev, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, fmt.Errorf("retrieve event %s: %w", eventID, err)
	}

	out := &ChargeEvent{ID: ev.ID, Key: ev.Key}

	// ev.Data is untyped; round-trip it through JSON to read the charge.
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return out, nil
	}
	var ch omise.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return out, nil
	}
	c := toCharge(&ch)
	out.ChargeID = c.ID
	out.Status = c.Status
	out.FailureCode = c.FailureCode
	return out, nil
}

func toCharge(ch *omise.Charge) *Charge {
	c := &Charge{ID: ch.ID, Status: string(ch.Status)}
	if ch.FailureCode != nil {
		c.FailureCode = *ch.FailureCode
	}
	if ch.FailureMessage != nil {
		c.FailureMessage = *ch.FailureMessage
	}
	return c
}
