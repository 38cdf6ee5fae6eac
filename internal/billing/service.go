// Package billing opens subscription checkouts on the payment gateway and
// verifies completed sessions.
package billing

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/config"
	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/metrics"
)

const guestUser = "guest"

var (
	ErrMissingKey     = fmt.Errorf("stripe secret key: %w", common.ErrMisconfigured)
	ErrUnknownPlan    = fmt.Errorf("plan must be starter or pro: %w", common.ErrPrecondition)
	ErrMissingSession = fmt.Errorf("session id is required: %w", common.ErrPrecondition)
)

type Plan struct {
	Name        string
	DisplayName string
	AmountCents int64
}

var plans = map[string]Plan{
	"starter": {Name: "starter", DisplayName: "Starter", AmountCents: 3000},
	"pro":     {Name: "pro", DisplayName: "Pro", AmountCents: 5000},
}

// SubscriptionSetter is satisfied by store.ProfileStore.
type SubscriptionSetter interface {
	SetSubscription(ctx context.Context, userID string, status model.SubscriptionStatus) error
}

type CheckoutRequest struct {
	Plan      string
	UserEmail string
	UserID    string
	Origin    string
}

type Verification struct {
	Verified      bool   `json:"verified"`
	CustomerEmail string `json:"customerEmail"`
}

type Service struct {
	cfg      config.BillingConfig
	gateway  Gateway
	profiles SubscriptionSetter
	log      *zap.Logger
}

func NewService(cfg config.BillingConfig, gateway Gateway, profiles SubscriptionSetter, log *zap.Logger) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Service{cfg: cfg, gateway: gateway, profiles: profiles, log: log}
}

// CreateCheckout opens a monthly subscription session and returns its URL.
func (s *Service) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	if s.cfg.StripeSecretKey == "" {
		s.log.Error("missing Stripe key")
		return "", ErrMissingKey
	}

	plan, ok := plans[req.Plan]
	if !ok {
		return "", ErrUnknownPlan
	}

	params := SessionParams{
		PriceID:    s.priceID(plan.Name),
		Currency:   s.cfg.Currency,
		SuccessURL: fmt.Sprintf("%s/payment-success?session_id={CHECKOUT_SESSION_ID}&plan=%s", req.Origin, url.QueryEscape(plan.Name)),
		CancelURL:  req.Origin + "/?canceled=true",
		Metadata:   map[string]string{"plan": plan.Name, "userId": guestUser},
	}
	if params.PriceID == "" {
		params.ProductName = plan.DisplayName + " Subscription"
		params.UnitAmount = plan.AmountCents
	}
	if req.UserID != "" {
		params.Metadata["userId"] = req.UserID
	}

	email := strings.TrimSpace(req.UserEmail)
	if email != "" {
		id, err := s.gateway.FindCustomer(ctx, email)
		if err != nil {
			s.log.Warn("customer lookup failed", zap.String("email", email), zap.Error(err))
		}
		params.CustomerID = id
	}
	if params.CustomerID == "" {
		params.CustomerEmail = email
	}

	session, err := s.gateway.CreateSession(ctx, params)
	if err != nil {
		return "", err
	}
	metrics.CheckoutSessionsTotal.WithLabelValues(plan.Name).Inc()
	s.log.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.String("plan", plan.Name),
		zap.Bool("known_customer", params.CustomerID != ""))
	return session.URL, nil
}

// VerifyPayment reports whether the session completed. A verified session
// with a signed-in user marks that user's profile with the plan.
func (s *Service) VerifyPayment(ctx context.Context, sessionID string) (*Verification, error) {
	if s.cfg.StripeSecretKey == "" {
		s.log.Error("missing Stripe key")
		return nil, ErrMissingKey
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrMissingSession
	}

	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	v := &Verification{
		Verified:      isPaid(session),
		CustomerEmail: session.CustomerEmail,
	}
	if !v.Verified {
		return v, nil
	}

	userID := session.Metadata["userId"]
	plan := session.Metadata["plan"]
	if userID != "" && userID != guestUser && plan != "" {
		if err := s.profiles.SetSubscription(ctx, userID, model.SubscriptionStatus(plan)); err != nil {
			return nil, err
		}
		s.log.Info("subscription activated", zap.String("user_id", userID), zap.String("plan", plan))
	}
	return v, nil
}

func (s *Service) priceID(plan string) string {
	switch plan {
	case "starter":
		return s.cfg.StarterPriceID
	case "pro":
		return s.cfg.ProPriceID
	}
	return ""
}

func isPaid(s *Session) bool {
	return s.Status == "complete" || s.PaymentStatus == "paid" || s.PaymentStatus == "no_payment_required"
}
