package billing

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/agenthands/automationvault/internal/core/common"
)

// SessionParams describes one checkout session. Either PriceID or the inline
// price fields are set.
type SessionParams struct {
	PriceID       string
	ProductName   string
	UnitAmount    int64
	Currency      string
	CustomerID    string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type Session struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	CustomerEmail string
	Metadata      map[string]string
}

// Gateway is the hosted payment provider.
type Gateway interface {
	// FindCustomer returns the id of the first customer with the email, or ""
	// when there is none.
	FindCustomer(ctx context.Context, email string) (string, error)
	CreateSession(ctx context.Context, p SessionParams) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return newStripeGateway(secretKey, nil)
}

func newStripeGateway(secretKey string, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) FindCustomer(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)
	params.Context = ctx

	it := g.api.Customers.List(params)
	if it.Next() {
		return it.Customer().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", stripeError(err)
	}
	return "", nil
}

func (g *StripeGateway) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(1)}
	if p.PriceID != "" {
		item.Price = stripe.String(p.PriceID)
	} else {
		item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(p.Currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(p.ProductName),
			},
			UnitAmount: stripe.Int64(p.UnitAmount),
			Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
				Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
			},
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{item},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	// Subscription mode always creates a customer, and Stripe rejects
	// customer_creation there. customer_email only prefills the new one.
	if p.CustomerID == "" && p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, stripeError(err)
	}
	return toSession(s), nil
}

func (g *StripeGateway) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, stripeError(err)
	}
	return toSession(s), nil
}

func toSession(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		CustomerEmail: s.CustomerEmail,
		Metadata:      s.Metadata,
	}
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}

func stripeError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return &common.UpstreamError{Service: "stripe", Status: se.HTTPStatusCode, Body: se.Msg}
	}
	return &common.UpstreamError{Service: "stripe", Body: err.Error()}
}
