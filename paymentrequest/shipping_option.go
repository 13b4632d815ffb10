package paymentrequest

import (
	"context"
	"fmt"

	"github.com/harborline/checkoutd/commerce"
	"github.com/harborline/checkoutd/events"
)

// HandleShippingOptionChange pushes the payer's shipping option selection
// to the remote checkout and returns the updated total.
func (p *Processor) HandleShippingOptionChange(ctx context.Context, event *events.ShippingOptionChanged) *UpdateResponse {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	resp, err := p.processShippingOptionChange(ctx, event)
	if err != nil {
		p.reportError(err, map[string]interface{}{
			"checkoutID": event.CheckoutID,
			"event":      event,
		})
		return &UpdateResponse{Status: StatusFail}
	}
	return resp
}

func (p *Processor) processShippingOptionChange(ctx context.Context, event *events.ShippingOptionChanged) (*UpdateResponse, error) {
	checkout, _, err := p.checkouts.UpdateCheckout(ctx, event.CheckoutID, commerce.CheckoutInput{
		ShippingRate: &commerce.ShippingRateInput{Handle: event.OptionID},
	})
	if err != nil {
		return nil, err
	}
	if checkout == nil {
		return nil, fmt.Errorf("shipping option update returned no checkout for %s", event.CheckoutID)
	}

	total, err := totalItem(p.cfg, checkout)
	if err != nil {
		return nil, err
	}

	p.checkout = checkout
	if err := p.saveSession(); err != nil {
		log.Errorf("Error saving session for checkout %s: %s", checkout.ID, err)
	}

	return &UpdateResponse{Status: StatusSuccess, Total: total}, nil
}
