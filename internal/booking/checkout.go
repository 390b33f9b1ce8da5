package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/hilot-backend/internal/coupon"
	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/payment"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04"
	defaultDuration = 60
)

type CheckoutRequest struct {
	IdempotencyKey string `json:"-"`

	TherapistID     uint    `json:"therapistId"`
	ServiceID       uint    `json:"serviceId"`
	ServiceName     string  `json:"serviceName"`
	ServicePrice    float64 `json:"servicePrice"`
	ServiceDuration int     `json:"serviceDuration"`
	ServiceCategory string  `json:"serviceCategory"`

	BookingDate string `json:"bookingDate"`
	StartTime   string `json:"startTime"`

	ClientEmail string `json:"clientEmail"`
	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone"`
	Notes       string `json:"notes"`

	CouponCode string `json:"couponCode"`
	CardNumber string `json:"cardNumber"`
	CardToken  string `json:"cardToken"`
}

type CheckoutResult struct {
	Message  string          `json:"message"`
	Coupon   coupon.Decision `json:"coupon"`
	Payment  payment.Result  `json:"payment"`
	Booking  *models.Booking `json:"booking"`
	Replayed bool            `json:"replayed,omitempty"`
}

func (r *CheckoutRequest) validate() error {
	r.BookingDate = strings.TrimSpace(r.BookingDate)
	r.StartTime = strings.TrimSpace(r.StartTime)
	r.ClientEmail = models.NormalizeEmail(r.ClientEmail)

	if r.TherapistID == 0 || r.BookingDate == "" || r.StartTime == "" || r.ClientEmail == "" {
		return validation("therapistId, bookingDate, startTime and clientEmail are required")
	}
	if _, err := time.Parse(dateLayout, r.BookingDate); err != nil {
		return validation("bookingDate must be YYYY-MM-DD")
	}
	if _, err := time.Parse(timeLayout, r.StartTime); err != nil {
		return validation("startTime must be HH:MM")
	}
	if !strings.Contains(r.ClientEmail, "@") {
		return validation("clientEmail is invalid")
	}
	return nil
}

// Checkout prices, pays for and records a booking. Nothing is written when the
// payment is declined.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Checkout")
	defer span.End()

	res, err := s.checkout(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("booking.id", int64(res.Booking.ID)),
		attribute.String("payment.status", string(res.Payment.Status)),
		attribute.Bool("checkout.replayed", res.Replayed),
	)
	return res, nil
}

func (s *Service) checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		if res, err := s.replay(ctx, key); res != nil || err != nil {
			return res, err
		}
		if s.guard != nil {
			ok, err := s.guard.Acquire(ctx, key)
			if err != nil {
				s.log.WithError(err).Warn("idempotency guard unavailable")
			} else if !ok {
				return nil, conflict("A checkout with this Idempotency-Key is already in progress")
			} else {
				defer func() {
					if err := s.guard.Release(context.WithoutCancel(ctx), key); err != nil {
						s.log.WithError(err).Warn("idempotency guard release failed")
					}
				}()
			}
		}
	}

	therapist, err := s.repo.FindTherapistByID(ctx, req.TherapistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Therapist not found")
		}
		return nil, internal("Failed to load therapist", err)
	}
	if !therapist.Bookable() {
		return nil, notFound("Therapist not found")
	}

	service, err := s.resolveService(ctx, req)
	if err != nil {
		return nil, err
	}

	quote := PriceQuote(service.BasePrice, s.platformFee, req.CouponCode)

	client, err := s.repo.FindOrCreateUserByEmail(ctx, &models.User{
		Email: req.ClientEmail,
		Name:  strings.TrimSpace(req.ClientName),
		Phone: strings.TrimSpace(req.ClientPhone),
		Role:  models.RoleClient,
	})
	if err != nil {
		return nil, internal("Failed to resolve client", err)
	}

	result, err := s.payments.Resolve(ctx, payment.Request{
		AmountMinor: quote.ChargeMinor,
		CouponCode:  quote.Coupon.Code,
		CardNumber:  req.CardNumber,
		CardToken:   req.CardToken,
		Description: fmt.Sprintf("%s on %s %s", service.Name, req.BookingDate, req.StartTime),
		Metadata: map[string]interface{}{
			"clientEmail": req.ClientEmail,
			"therapistId": therapist.ID,
			"serviceId":   service.ID,
		},
	})
	if err != nil {
		return nil, paymentError(err)
	}

	status := models.BookingStatusConfirmed
	paymentStatus := models.PaymentStatusPaid
	if result.Status == payment.StatusPending {
		status = models.BookingStatusPending
		paymentStatus = models.PaymentStatusPending
	}

	clientID := client.ID
	booking := &models.Booking{
		ClientID:        &clientID,
		TherapistID:     therapist.ID,
		ServiceID:       service.ID,
		ClientEmail:     req.ClientEmail,
		BookingDate:     req.BookingDate,
		StartTime:       req.StartTime,
		Duration:        service.Duration,
		TotalAmount:     toMajor(quote.ChargeMinor),
		DiscountAmount:  toMajor(quote.DiscountMinor),
		PlatformFee:     toMajor(quote.FeeMinor),
		TherapistPayout: toMajor(quote.BaseMinor),
		CouponCode:      quote.Coupon.Code,
		Status:          status,
		PaymentStatus:   paymentStatus,
		PaymentIntentID: result.IntentID,
		Notes:           strings.TrimSpace(req.Notes),
	}
	if key != "" {
		booking.IdempotencyKey = &key
	}

	err = s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, &models.BookingEvent{
			BookingID: booking.ID,
			Actor:     models.ActorSystem,
			Type:      models.EventCreated,
			Meta: jsonMeta(map[string]interface{}{
				"paymentStatus": paymentStatus,
				"coupon":        quote.Coupon.Code,
				"simulated":     result.Simulated,
			}),
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		s.voidCharge(ctx, result.IntentID)
		if key != "" && errors.Is(err, repository.ErrDuplicate) {
			if res, rerr := s.replay(ctx, key); res != nil || rerr != nil {
				return res, rerr
			}
		}
		return nil, internal("Failed to create booking", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"therapist_id":   therapist.ID,
		"payment_status": paymentStatus,
		"charge_minor":   quote.ChargeMinor,
		"coupon":         quote.Coupon.Code,
	}).Info("booking created")

	booking.Service = service
	s.publish(ctx, TopicBookingCreated, booking)
	s.notify(ctx, Notice{Booking: booking, Client: client, Therapist: therapist, ServiceName: service.Name}, false)

	msg := "Booking confirmed"
	if status == models.BookingStatusPending {
		msg = "Booking created, payment pending"
	}
	return &CheckoutResult{
		Message: msg,
		Coupon:  quote.Coupon,
		Payment: payment.Result{Status: result.Status, IntentID: result.IntentID, Simulated: result.Simulated},
		Booking: booking,
	}, nil
}

// replay returns the booking already recorded under an Idempotency-Key.
func (s *Service) replay(ctx context.Context, key string) (*CheckoutResult, error) {
	existing, err := s.repo.FindBookingByIdempotencyKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal("Failed to check Idempotency-Key", err)
	}

	decision := coupon.Evaluate(existing.CouponCode, toMinor(existing.TotalAmount+existing.DiscountAmount))
	return &CheckoutResult{
		Message: "Booking already exists",
		Coupon:  decision,
		Payment: payment.Result{
			Status:   payment.Status(existing.PaymentStatus),
			IntentID: existing.PaymentIntentID,
		},
		Booking:  existing,
		Replayed: true,
	}, nil
}

func (s *Service) resolveService(ctx context.Context, req CheckoutRequest) (*models.Service, error) {
	if req.ServiceID != 0 {
		svc, err := s.repo.FindServiceByID(ctx, req.ServiceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("Service not found")
			}
			return nil, internal("Failed to load service", err)
		}
		return svc, nil
	}

	name := strings.TrimSpace(req.ServiceName)
	if name == "" || req.ServicePrice <= 0 {
		return nil, validation("serviceId or serviceName and servicePrice are required")
	}
	duration := req.ServiceDuration
	if duration <= 0 {
		duration = defaultDuration
	}

	svc, err := s.repo.FindOrCreateService(ctx, &models.Service{
		Name:      name,
		Duration:  duration,
		BasePrice: toMajor(toMinor(req.ServicePrice)),
		Category:  strings.TrimSpace(req.ServiceCategory),
	})
	if err != nil {
		return nil, internal("Failed to create service", err)
	}
	return svc, nil
}

// voidCharge undoes an upstream charge whose booking could not be stored.
func (s *Service) voidCharge(ctx context.Context, intentID string) {
	if err := s.payments.Cancel(context.WithoutCancel(ctx), intentID); err != nil {
		s.log.WithError(err).WithField("intent_id", intentID).Error("failed to void charge for unsaved booking")
	}
}

func paymentError(err error) error {
	var perr *payment.Error
	if errors.As(err, &perr) {
		return &Error{Kind: KindPayment, Code: perr.Code, Message: "Payment failed", Detail: perr.Message, Err: err}
	}
	if errors.Is(err, payment.ErrCardTokenRequired) {
		return &Error{Kind: KindValidation, Message: "cardToken is required", Err: err}
	}
	return internal("Payment could not be processed", err)
}

func jsonMeta(v map[string]interface{}) datatypes.JSON {
	if len(v) == 0 {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
