package billing

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// centsPerCredit prices credits at $1 per 50.
const centsPerCredit = 2

type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// Service wraps the Stripe credits top-up flow.
type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	}
	return &Service{cfg: cfg}
}

func (s *Service) Enabled() bool {
	return s.cfg.SecretKey != "" && s.cfg.WebhookSecret != ""
}

// CreateCheckout opens a checkout session for buying credits. The user id
// and credit amount ride along as metadata so the webhook can apply them.
func (s *Service) CreateCheckout(userID string, credits int) (string, error) {
	if credits <= 0 {
		return "", fmt.Errorf("credits must be positive")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(userID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(int64(credits) * centsPerCredit),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%d Track-Hub credits", credits)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("credits", strconv.Itoa(credits))

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CompletedCheckout is a verified, finished purchase.
type CompletedCheckout struct {
	SessionID string
	UserID    string
	Credits   int
}

// ParseWebhook verifies the event signature and returns the completed
// checkout when the event is one, or nil for event types we ignore.
func (s *Service) ParseWebhook(payload []byte, signature string) (*CompletedCheckout, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("error parsing checkout session JSON: %w", err)
	}

	credits, err := strconv.Atoi(sess.Metadata["credits"])
	if err != nil || credits <= 0 {
		return nil, fmt.Errorf("checkout session %s has invalid credits metadata", sess.ID)
	}
	if sess.ClientReferenceID == "" {
		return nil, fmt.Errorf("checkout session %s has no client reference", sess.ID)
	}

	return &CompletedCheckout{
		SessionID: sess.ID,
		UserID:    sess.ClientReferenceID,
		Credits:   credits,
	}, nil
}
