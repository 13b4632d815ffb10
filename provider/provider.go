package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("PROV")

// CardAction is the result of a completed strong-customer-authentication
// challenge. PaymentMethodID is the re-usable payment method reference the
// retry charge must be issued with.
type CardAction struct {
	AuthorizationID string `json:"id"`
	PaymentMethodID string `json:"payment_method"`
}

// CardActionError is an authentication failure reported by the provider,
// as opposed to a transport or server error. Its message is shown to the
// payer.
type CardActionError struct {
	Message string `json:"message"`
}

func (e *CardActionError) Error() string {
	return e.Message
}

// IsCardActionError returns whether or not the provided error is a
// provider-reported authentication failure.
func IsCardActionError(err error) bool {
	_, ok := err.(*CardActionError)
	return ok
}

// PaymentProvider is the payment provider surface the payment flow
// consumes.
type PaymentProvider interface {
	// CanMakePayment reports whether the payer's browser and provider
	// account can surface a wallet payment sheet for the given country and
	// currency.
	CanMakePayment(ctx context.Context, country, currency string) (bool, error)

	// HandleCardAction completes a strong-customer-authentication challenge
	// for the given authorization token.
	HandleCardAction(ctx context.Context, token string) (*CardAction, error)
}

// Client is an HTTP implementation of PaymentProvider.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient returns a payment provider client for the given API URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: time.Minute},
	}
}

type capabilityResponse struct {
	ApplePay  bool `json:"applePay"`
	GooglePay bool `json:"googlePay"`
	Browser   bool `json:"browserCard"`
}

type cardActionResponse struct {
	Action *CardAction      `json:"action"`
	Error  *CardActionError `json:"error"`
}

// CanMakePayment queries the provider's wallet capability endpoint.
func (c *Client) CanMakePayment(ctx context.Context, country, currency string) (bool, error) {
	var resp capabilityResponse
	url := fmt.Sprintf("%s/payment_requests/capability?country=%s&currency=%s", c.baseURL, country, currency)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return false, err
	}
	return resp.ApplePay || resp.GooglePay || resp.Browser, nil
}

// HandleCardAction completes an SCA challenge. A provider-reported
// authentication failure is returned as a *CardActionError.
func (c *Client) HandleCardAction(ctx context.Context, token string) (*CardAction, error) {
	var resp cardActionResponse
	url := fmt.Sprintf("%s/card_actions", c.baseURL)
	body := map[string]string{"client_secret": token}
	if err := c.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Action == nil {
		return nil, fmt.Errorf("card action response missing action")
	}
	return resp.Action, nil
}

func (c *Client) do(ctx context.Context, method, url string, body interface{}, out interface{}) error {
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
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("Provider API returned status %d for %s %s", resp.StatusCode, method, url)
		return fmt.Errorf("provider API status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
