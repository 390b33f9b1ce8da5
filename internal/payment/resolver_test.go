package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	charge    *Charge
	err       error
	requests  []ChargeRequest
	cancelled []string
	event     *ChargeEvent
}

func (f *fakeGateway) CreateCharge(_ context.Context, req ChargeRequest) (*Charge, error) {
	f.requests = append(f.requests, req)
	return f.charge, f.err
}

func (f *fakeGateway) CancelCharge(_ context.Context, chargeID string) error {
	f.cancelled = append(f.cancelled, chargeID)
	return nil
}

func (f *fakeGateway) RetrieveEvent(_ context.Context, eventID string) (*ChargeEvent, error) {
	if f.event == nil {
		return nil, errors.New("not found")
	}
	return f.event, nil
}

func fixedResolver(g Gateway) *Resolver {
	r := NewResolver(g, "THB")
	r.now = func() time.Time { return time.UnixMilli(1700000000000) }
	r.newID = func() string { return "fixed" }
	return r
}

func TestResolveFreeSkipsGateway(t *testing.T) {
	gw := &fakeGateway{}
	r := fixedResolver(gw)

	res, err := r.Resolve(context.Background(), Request{AmountMinor: 0, CouponCode: " FLASH100 "})
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, res.Status)
	assert.Equal(t, "coupon_flash100_1700000000000", res.IntentID)
	assert.Empty(t, gw.requests)
}

func TestResolveSimulatedDeclines(t *testing.T) {
	r := fixedResolver(nil)

	tests := map[string]string{
		"4000000000009995":    CodeInsufficientFunds,
		"4000 0000 0000 0002": CodeCardDeclined,
		"4000-0000-0000-0069": CodeExpiredCard,
	}
	for card, code := range tests {
		t.Run(code, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), Request{AmountMinor: 147400, CardNumber: card})

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, code, perr.Code)
			assert.NotEmpty(t, perr.Message)
		})
	}
}

func TestResolveSimulatedSuccess(t *testing.T) {
	r := fixedResolver(nil)

	res, err := r.Resolve(context.Background(), Request{AmountMinor: 147400, CardNumber: "4242424242424242"})
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, res.Status)
	assert.Equal(t, "sim_fixed", res.IntentID)
	assert.True(t, res.Simulated)
	assert.False(t, r.GatewayConfigured())
}

func TestResolveGatewayStatuses(t *testing.T) {
	tests := []struct {
		name     string
		charge   *Charge
		wantStat Status
		wantCode string
	}{
		{name: "successful", charge: &Charge{ID: "chrg_1", Status: ChargeSuccessful}, wantStat: StatusPaid},
		{name: "pending needs action", charge: &Charge{ID: "chrg_2", Status: ChargePending}, wantStat: StatusPending},
		{name: "failed", charge: &Charge{ID: "chrg_3", Status: ChargeFailed, FailureCode: "insufficient_fund"}, wantCode: CodeInsufficientFunds},
		{name: "failed unknown code", charge: &Charge{ID: "chrg_4", Status: ChargeFailed, FailureCode: "weird"}, wantCode: CodePaymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{charge: tt.charge}
			r := fixedResolver(gw)

			res, err := r.Resolve(context.Background(), Request{AmountMinor: 147400, CardToken: "tokn_test"})
			if tt.wantCode != "" {
				var perr *Error
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, tt.wantCode, perr.Code)
				assert.Equal(t, tt.charge.ID, perr.IntentID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStat, res.Status)
			assert.Equal(t, tt.charge.ID, res.IntentID)
			require.Len(t, gw.requests, 1)
			assert.Equal(t, "thb", gw.requests[0].Currency)
		})
	}
}

func TestResolveGatewayRequiresToken(t *testing.T) {
	r := fixedResolver(&fakeGateway{})

	_, err := r.Resolve(context.Background(), Request{AmountMinor: 100})
	assert.ErrorIs(t, err, ErrCardTokenRequired)
}

func TestResolveGatewayTransportError(t *testing.T) {
	r := fixedResolver(&fakeGateway{err: errors.New("connection reset")})

	_, err := r.Resolve(context.Background(), Request{AmountMinor: 100, CardToken: "tokn_test"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, CodePaymentFailed, perr.Code)
}

func TestCancelSkipsSyntheticIntents(t *testing.T) {
	gw := &fakeGateway{}
	r := fixedResolver(gw)

	require.NoError(t, r.Cancel(context.Background(), "sim_abc"))
	require.NoError(t, r.Cancel(context.Background(), "coupon_flash100_1"))
	require.NoError(t, r.Cancel(context.Background(), ""))
	require.NoError(t, r.Cancel(context.Background(), "chrg_live"))

	assert.Equal(t, []string{"chrg_live"}, gw.cancelled)
}

func TestVerifyEventWithoutGateway(t *testing.T) {
	_, err := fixedResolver(nil).VerifyEvent(context.Background(), "evnt_1")
	assert.ErrorIs(t, err, ErrNoGateway)
}
