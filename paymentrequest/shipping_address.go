package paymentrequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/harborline/checkoutd/commerce"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/models"
)

// HandleShippingAddressChange reconciles a wallet shipping-address change
// with the remote checkout: it pushes the partial address, selects a
// default rate when the checkout has none, and returns the full option
// list with an updated total. Unexpected errors are reported and resolved
// as a generic failure; nothing escapes to the caller.
func (p *Processor) HandleShippingAddressChange(ctx context.Context, event *events.ShippingAddressChanged) *UpdateResponse {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if !p.countryAllowed(event.Address.Country) {
		return &UpdateResponse{Status: StatusInvalidShippingAddress}
	}

	resp, err := p.processShippingAddressChange(ctx, event)
	if err != nil {
		p.reportError(err, map[string]interface{}{
			"checkoutID": event.CheckoutID,
			"event":      event,
			"checkout":   p.checkout,
		})
		return &UpdateResponse{Status: StatusFail}
	}
	return resp
}

func (p *Processor) processShippingAddressChange(ctx context.Context, event *events.ShippingAddressChanged) (*UpdateResponse, error) {
	partial := models.NewPartialShippingAddress(event.Address)

	checkout, _, err := p.checkouts.UpdateCheckout(ctx, event.CheckoutID, commerce.CheckoutInput{
		ShippingAddress: &commerce.ShippingAddressInput{Address: partial.Address, Partial: true},
	})
	if err != nil {
		return nil, err
	}
	if checkout == nil {
		return nil, fmt.Errorf("shipping address update returned no checkout for %s", event.CheckoutID)
	}

	if checkout.ShippingRate == nil && len(checkout.AvailableShippingRates) > 0 {
		rate := commerce.DefaultShippingRate(checkout.AvailableShippingRates)
		if rate == nil {
			return nil, errors.New("unexpected empty shipping rate list")
		}
		updated, _, err := p.checkouts.UpdateCheckout(ctx, event.CheckoutID, commerce.CheckoutInput{
			ShippingRate: &commerce.ShippingRateInput{Handle: rate.RateHandle()},
		})
		if err != nil {
			return nil, err
		}
		if updated == nil {
			return nil, fmt.Errorf("shipping rate update returned no checkout for %s", event.CheckoutID)
		}
		checkout = updated
	}

	if checkout.ShippingRate == nil && len(checkout.AvailableShippingRates) == 0 {
		return &UpdateResponse{Status: StatusInvalidShippingAddress}, nil
	}

	options, err := shippingOptions(checkout)
	if err != nil {
		return nil, err
	}
	total, err := totalItem(p.cfg, checkout)
	if err != nil {
		return nil, err
	}

	p.checkout = checkout
	if err := p.saveSession(); err != nil {
		log.Errorf("Error saving session for checkout %s: %s", checkout.ID, err)
	}

	return &UpdateResponse{
		Status:          StatusSuccess,
		ShippingOptions: options,
		Total:           total,
	}, nil
}
