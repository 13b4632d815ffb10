package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/checkoutd/models"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("CMRC")

// ShippingAddressInput is the shipping address patch of a checkout update.
// Partial marks the address as incomplete so the backend skips completeness
// validation and only recalculates rates and taxes.
type ShippingAddressInput struct {
	Address models.Address `json:"address"`
	Partial bool           `json:"partial"`
}

// ShippingRateInput selects a shipping rate by handle.
type ShippingRateInput struct {
	Handle string `json:"handle"`
}

// CheckoutInput is a partial patch applied to a checkout. Nil fields are
// left untouched by the backend.
type CheckoutInput struct {
	Email           *string                `json:"email,omitempty"`
	ShippingAddress *ShippingAddressInput  `json:"shippingAddress,omitempty"`
	ShippingRate    *ShippingRateInput     `json:"shippingRate,omitempty"`
	BillingAddress  *models.Address        `json:"billingAddress,omitempty"`
	NoteAttributes  []models.NoteAttribute `json:"noteAttributes,omitempty"`
}

// ChargeInput is the payload of a checkout charge mutation. The
// authorization fields are only set on the strong-customer-authentication
// retry.
type ChargeInput struct {
	PaymentMethodID string `json:"paymentMethodID"`
	AuthorizationID string `json:"authorizationID,omitempty"`
}

// ChargeResult is the outcome of a charge mutation. A non-empty
// AuthorizationToken means the charge was not captured and the payer's bank
// requires strong customer authentication before a retry.
type ChargeResult struct {
	Checkout           *models.Checkout   `json:"checkout"`
	UserErrors         []models.UserError `json:"userErrors"`
	AuthorizationToken string             `json:"authorizationToken"`
}

// CheckoutService is the checkout backend surface the payment flow
// consumes.
type CheckoutService interface {
	// GetCheckout loads a checkout by ID.
	GetCheckout(ctx context.Context, checkoutID string) (*models.Checkout, error)

	// UpdateCheckout applies a partial patch to the checkout and returns the
	// updated checkout, or user-level validation errors.
	UpdateCheckout(ctx context.Context, checkoutID string, input CheckoutInput) (*models.Checkout, []models.UserError, error)

	// ChargeCheckout attempts to capture payment for the checkout.
	ChargeCheckout(ctx context.Context, checkoutID string, input ChargeInput) (*ChargeResult, error)
}

// Client is an HTTP implementation of CheckoutService.
type Client struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// NewClient returns a checkout backend client for the given API URL.
func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: time.Minute},
	}
}

type updateResponse struct {
	Checkout   *models.Checkout   `json:"checkout"`
	UserErrors []models.UserError `json:"userErrors"`
}

// GetCheckout loads a checkout by ID.
func (c *Client) GetCheckout(ctx context.Context, checkoutID string) (*models.Checkout, error) {
	var checkout models.Checkout
	url := fmt.Sprintf("%s/checkouts/%s", c.baseURL, checkoutID)
	if err := c.do(ctx, http.MethodGet, url, nil, "", &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

// UpdateCheckout applies a partial patch to the checkout.
func (c *Client) UpdateCheckout(ctx context.Context, checkoutID string, input CheckoutInput) (*models.Checkout, []models.UserError, error) {
	var resp updateResponse
	url := fmt.Sprintf("%s/checkouts/%s", c.baseURL, checkoutID)
	if err := c.do(ctx, http.MethodPost, url, input, "", &resp); err != nil {
		return nil, nil, err
	}
	return resp.Checkout, resp.UserErrors, nil
}

// ChargeCheckout attempts to capture payment for the checkout. Each attempt
// carries a fresh idempotency key so a retried HTTP request cannot double
// charge.
func (c *Client) ChargeCheckout(ctx context.Context, checkoutID string, input ChargeInput) (*ChargeResult, error) {
	var resp ChargeResult
	url := fmt.Sprintf("%s/checkouts/%s/charge", c.baseURL, checkoutID)
	if err := c.do(ctx, http.MethodPost, url, input, uuid.New().String(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, url string, body interface{}, idempotencyKey string, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("X-Checkout-Access-Token", c.accessToken)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("Checkout API returned status %d for %s %s", resp.StatusCode, method, url)
		return fmt.Errorf("checkout API status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
