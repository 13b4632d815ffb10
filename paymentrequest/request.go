package paymentrequest

import (
	"strings"

	"github.com/harborline/checkoutd/models"
)

// Status is a wallet-level completion code. The wallet sheet's own UI
// reacts to these; they are the vocabulary for expected, user-recoverable
// conditions rather than errors.
type Status string

const (
	// StatusSuccess resolves the wallet event successfully.
	StatusSuccess Status = "success"

	// StatusFail resolves the wallet event with a generic failure.
	StatusFail Status = "fail"

	// StatusInvalidShippingAddress re-prompts the payer for a shipping
	// address.
	StatusInvalidShippingAddress Status = "invalid_shipping_address"

	// StatusInvalidPayerEmail re-prompts the payer for an email address.
	StatusInvalidPayerEmail Status = "invalid_payer_email"

	// StatusInvalidPayerName re-prompts the payer for a name.
	StatusInvalidPayerName Status = "invalid_payer_name"
)

// Request is the wallet payment request configuration. It is rebuilt
// wholesale whenever the session becomes ready or the provider instance
// changes; nothing mutates an existing request outside the wallet's own
// event responses.
type Request struct {
	Country           string                  `json:"country"`
	Currency          string                  `json:"currency"`
	RequestPayerEmail bool                    `json:"requestPayerEmail"`
	RequestPayerName  bool                    `json:"requestPayerName"`
	RequestShipping   bool                    `json:"requestShipping"`
	ShippingOptions   []models.ShippingOption `json:"shippingOptions"`
	Total             models.TotalItem        `json:"total"`
}

// UpdateResponse resolves a shipping-address or shipping-option change.
// ShippingOptions and Total are only set on success.
type UpdateResponse struct {
	Status          Status                  `json:"status"`
	ShippingOptions []models.ShippingOption `json:"shippingOptions,omitempty"`
	Total           *models.TotalItem       `json:"total,omitempty"`
}

// CompleteResponse resolves a payment-method submission. A success status
// only means the wallet sheet may dismiss; the charge itself continues and
// reports its outcome through notifications.
type CompleteResponse struct {
	Status Status `json:"status"`
}

// buildRequest assembles a wallet payment request for the checkout. The
// shipping option list starts empty so the wallet cannot offer a rate
// before a shipping address has been validated, and the total is marked
// pending until a rate is selected.
func buildRequest(cfg Config, checkout *models.Checkout) (*Request, error) {
	total, err := totalItem(cfg, checkout)
	if err != nil {
		return nil, err
	}
	return &Request{
		Country:           cfg.Country,
		Currency:          strings.ToLower(checkout.TotalPrice.CurrencyCode),
		RequestPayerEmail: cfg.CustomerEmail == "",
		RequestPayerName:  true,
		RequestShipping:   true,
		ShippingOptions:   []models.ShippingOption{},
		Total:             *total,
	}, nil
}

// totalItem computes the wallet total line from the checkout's total
// price.
func totalItem(cfg Config, checkout *models.Checkout) (*models.TotalItem, error) {
	amount, err := models.ToSmallestCurrencyUnit(checkout.TotalPrice)
	if err != nil {
		return nil, err
	}
	return &models.TotalItem{
		Label:   cfg.StoreName,
		Amount:  amount,
		Pending: checkout.ShippingRate == nil,
	}, nil
}

// shippingOptions maps the checkout's available rates to wallet shipping
// options, marking the currently selected one.
func shippingOptions(checkout *models.Checkout) ([]models.ShippingOption, error) {
	options := make([]models.ShippingOption, 0, len(checkout.AvailableShippingRates))
	for _, rate := range checkout.AvailableShippingRates {
		amount, err := models.ToSmallestCurrencyUnit(rate.Price)
		if err != nil {
			return nil, err
		}
		options = append(options, models.ShippingOption{
			ID:       rate.RateHandle(),
			Label:    rate.Title,
			Amount:   amount,
			Selected: checkout.ShippingRate != nil && checkout.ShippingRate.RateHandle() == rate.RateHandle(),
		})
	}
	return options, nil
}
