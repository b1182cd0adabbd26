package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
	"github.com/srgjo27/ticketflow/internal/platform/metrics"
)

type Processor struct {
	api *client.API
}

func NewProcessor(secretKey string) *Processor {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &Processor{api: api}
}

func NewProcessorWithBackends(secretKey string, backends *stripe.Backends) *Processor {
	return &Processor{api: client.New(secretKey, backends)}
}

func observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	metrics.ObservePaymentCall(op, status, time.Since(start).Seconds())
}

func (p *Processor) CreateCustomer(ctx context.Context, params ports.CustomerParams) (id string, err error) {
	start := time.Now()
	defer func() { observe("create_customer", start, err) }()

	cp := &stripe.CustomerParams{}
	if params.Email != "" {
		cp.Email = stripe.String(params.Email)
	}
	cp.Context = ctx
	cp.AddMetadata(domain.MetaUserID, params.UserID)
	cp.SetIdempotencyKey("customer-" + params.UserID)

	c, err := p.api.Customers.New(cp)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	return c.ID, nil
}

func (p *Processor) CreateIntent(ctx context.Context, params ports.IntentParams) (intent *domain.PaymentIntent, err error) {
	start := time.Now()
	defer func() { observe("create_intent", start, err) }()

	ip := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if params.CustomerID != "" {
		ip.Customer = stripe.String(params.CustomerID)
	}
	ip.Context = ctx
	for k, v := range params.Metadata {
		ip.AddMetadata(k, v)
	}
	if params.IdempotencyKey != "" {
		ip.SetIdempotencyKey(params.IdempotencyKey)
	}

	pi, err := p.api.PaymentIntents.New(ip)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe payment intent: %w", err)
	}

	return toIntent(pi), nil
}

func (p *Processor) RetrieveIntent(ctx context.Context, paymentIntentID string) (intent *domain.PaymentIntent, err error) {
	start := time.Now()
	defer func() { observe("retrieve_intent", start, err) }()

	ip := &stripe.PaymentIntentParams{}
	ip.Context = ctx
	ip.AddExpand("payment_method")

	pi, err := p.api.PaymentIntents.Get(paymentIntentID, ip)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stripe payment intent %s: %w", paymentIntentID, err)
	}

	return toIntent(pi), nil
}

func (p *Processor) CreateRefund(ctx context.Context, paymentIntentID string, reason domain.RefundReason) (id string, err error) {
	start := time.Now()
	defer func() { observe("create_refund", start, err) }()

	rp := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Reason:        stripe.String(string(refundReason(reason))),
	}
	rp.Context = ctx
	rp.SetIdempotencyKey("refund-" + paymentIntentID)

	r, err := p.api.Refunds.New(rp)
	if err != nil {
		return "", fmt.Errorf("failed to refund stripe payment intent %s: %w", paymentIntentID, err)
	}

	return r.ID, nil
}

func refundReason(reason domain.RefundReason) stripe.RefundReason {
	if reason == domain.RefundDuplicate {
		return stripe.RefundReasonDuplicate
	}

	return stripe.RefundReasonRequestedByCustomer
}

func toIntent(pi *stripe.PaymentIntent) *domain.PaymentIntent {
	intent := &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}

	if pi.PaymentMethod != nil {
		intent.PaymentMethod = string(pi.PaymentMethod.Type)
		if intent.PaymentMethod == "" {
			intent.PaymentMethod = pi.PaymentMethod.ID
		}
	}

	return intent
}
