package payment

import (
	"context"
	"strings"
	"time"

	"smartpark/internal/pkg/config"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/commands"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const eventCheckoutCompleted = "checkout.session.completed"

// Stripe only accepts a session expiry between 30 minutes and 24 hours out.
const (
	minSessionLifetime = 30*time.Minute + time.Minute
	maxSessionLifetime = 24 * time.Hour
)

var (
	ErrNotConfigured = errs.New("payment processor is not configured")
	ErrMissingSecret = errs.New("webhook secret is not configured")
)

// StripeGateway opens hosted Checkout Sessions and reads their outcome.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(cfg config.PaymentConfig) *StripeGateway {
	if cfg.SecretKey == "" {
		return &StripeGateway{}
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req commands.CheckoutRequest) (*commands.CheckoutSession, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: optionalString(req.Description),
					},
					UnitAmount: stripe.Int64(req.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: optionalString(req.CustomerEmail),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(sessionExpiry(time.Now(), req.ExpiresAt).Unix())
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create checkout session")
	}
	return &commands.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*commands.SessionOutcome, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, errs.Wrapf(err, "failed to retrieve checkout session %s", sessionID)
	}
	return toOutcome(session), nil
}

func toOutcome(session *stripe.CheckoutSession) *commands.SessionOutcome {
	outcome := &commands.SessionOutcome{
		ID:       session.ID,
		Paid:     session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: session.Metadata,
	}
	if outcome.Paid {
		outcome.AmountCaptured = session.AmountTotal
		if pi := session.PaymentIntent; pi != nil && pi.AmountReceived > 0 {
			outcome.AmountCaptured = pi.AmountReceived
		}
	}
	if outcome.Metadata == nil {
		outcome.Metadata = map[string]string{}
	}
	return outcome
}

// WebhookVerifier checks Stripe-Signature headers against the endpoint secret.
type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(cfg config.PaymentConfig) *WebhookVerifier {
	return &WebhookVerifier{secret: cfg.WebhookSecret}
}

func (v *WebhookVerifier) CompletedSessionID(payload []byte, signature string) (string, error) {
	if v.secret == "" {
		return "", ErrMissingSecret
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return "", errs.Wrap(err, "failed to verify webhook")
	}
	if event.Type != eventCheckoutCompleted || event.Data == nil {
		return "", nil
	}
	id, _ := event.Data.Object["id"].(string)
	if id == "" {
		return "", errs.New("completed checkout event without session id")
	}
	return id, nil
}

// sessionExpiry clamps want into the window Stripe accepts. A payment that
// lands after the booking hold lapsed is still caught at reconcile.
func sessionExpiry(now, want time.Time) time.Time {
	if earliest := now.Add(minSessionLifetime); want.Before(earliest) {
		return earliest
	}
	if latest := now.Add(maxSessionLifetime); want.After(latest) {
		return latest
	}
	return want
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return stripe.String(s)
}
