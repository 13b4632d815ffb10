package paymentrequest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/checkoutd/commerce"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/models"
	"github.com/harborline/checkoutd/provider"
	"github.com/jinzhu/gorm"
)

// chargeFailedMessage is the generic message surfaced for charge failures
// that have no payer-actionable cause.
const chargeFailedMessage = "payment could not be completed"

// HandlePaymentMethod handles the terminal wallet event: the payer
// authorized payment. Validation and the checkout update happen before the
// wallet sheet is resolved; the charge itself continues in the background
// because it has no wallet-level UI, and reports through notifications.
func (p *Processor) HandlePaymentMethod(ctx context.Context, event *events.PaymentMethodSubmitted) *CompleteResponse {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	// User-recoverable conditions resolve with wallet codes, not errors.
	if p.cfg.CustomerEmail == "" && event.Payer.Email == "" {
		return &CompleteResponse{Status: StatusInvalidPayerEmail}
	}
	if event.Payer.Name == "" {
		return &CompleteResponse{Status: StatusInvalidPayerName}
	}
	if event.ShippingAddress == nil {
		return &CompleteResponse{Status: StatusInvalidShippingAddress}
	}

	checkout, err := p.processPaymentMethod(ctx, event)
	if err != nil {
		p.reportError(err, map[string]interface{}{
			"checkoutID": event.CheckoutID,
			"event":      event,
			"checkout":   p.checkout,
		})
		return &CompleteResponse{Status: StatusFail}
	}

	// The wallet sheet dismisses on success here regardless of how the
	// charge goes; the remaining work has no wallet-level UI.
	p.busy = true
	p.lastError = ""
	p.checkout = checkout
	if err := p.saveSession(); err != nil {
		log.Errorf("Error saving session for checkout %s: %s", checkout.ID, err)
	}

	go p.charge(context.Background(), checkout, event.PaymentMethod.ID)

	return &CompleteResponse{Status: StatusSuccess}
}

// processPaymentMethod validates the submission and pushes the combined
// billing/shipping/email update to the checkout. It returns the updated,
// payment-ready checkout.
func (p *Processor) processPaymentMethod(ctx context.Context, event *events.PaymentMethodSubmitted) (*models.Checkout, error) {
	if event.PaymentMethod.BillingDetails == nil {
		return nil, errors.New("payment method missing billing address")
	}
	if event.ShippingOption == nil {
		return nil, errors.New("payment method submitted without a shipping option")
	}
	email := p.cfg.CustomerEmail
	if email == "" {
		email = event.Payer.Email
	}
	if email == "" {
		return nil, errors.New("no resolvable email for checkout")
	}

	billingAddress, err := models.NewBillingAddress(*event.PaymentMethod.BillingDetails)
	if err != nil {
		return nil, err
	}
	shippingAddress, err := models.NewShippingAddress(*event.ShippingAddress)
	if err != nil {
		return nil, err
	}

	var existing []models.NoteAttribute
	if p.checkout != nil {
		existing = p.checkout.NoteAttributes
	}
	notes := commerce.UpdateNoteAttributes(existing,
		models.NoteAttribute{Name: "Original billing name", Value: event.PaymentMethod.BillingDetails.Name},
		models.NoteAttribute{Name: "Original shipping name", Value: event.ShippingAddress.Recipient},
	)

	input := commerce.CheckoutInput{
		BillingAddress:  billingAddress,
		NoteAttributes:  notes,
		ShippingAddress: &commerce.ShippingAddressInput{Address: *shippingAddress},
		ShippingRate:    &commerce.ShippingRateInput{Handle: event.ShippingOption.ID},
	}
	if p.cfg.CustomerEmail == "" {
		input.Email = &email
	}

	checkout, userErrors, err := p.checkouts.UpdateCheckout(ctx, event.CheckoutID, input)
	if err != nil {
		return nil, err
	}
	if len(userErrors) > 0 {
		return nil, fmt.Errorf("checkout update rejected: %s", userErrors[0].Message)
	}
	if checkout == nil || !checkout.Ready {
		return nil, errors.New("checkout not ready for payment")
	}
	return checkout, nil
}

// charge attempts to capture payment, retrying exactly once when the
// payer's bank requests strong customer authentication. It owns the busy
// flag for the attempt and reports the outcome on the bus.
func (p *Processor) charge(ctx context.Context, checkout *models.Checkout, paymentMethodID string) {
	defer p.setBusy(false)

	completed, err := p.attemptCharge(ctx, checkout, paymentMethodID)
	if err != nil {
		if provider.IsCardActionError(err) {
			// The provider's own message is payer-facing.
			p.chargeFailed(checkout.ID, err.Error())
			return
		}
		p.reportError(err, map[string]interface{}{"checkoutID": checkout.ID})
		p.chargeFailed(checkout.ID, chargeFailedMessage)
		return
	}

	p.mtx.Lock()
	p.checkout = completed
	if err := p.saveSession(); err != nil {
		log.Errorf("Error saving session for checkout %s: %s", completed.ID, err)
	}
	p.mtx.Unlock()

	log.Infof("Checkout %s completed", completed.ID)
	p.bus.Emit(&events.CheckoutCompleted{Checkout: completed})
}

func (p *Processor) attemptCharge(ctx context.Context, checkout *models.Checkout, paymentMethodID string) (*models.Checkout, error) {
	result, err := p.checkouts.ChargeCheckout(ctx, checkout.ID, commerce.ChargeInput{
		PaymentMethodID: paymentMethodID,
	})
	p.recordCharge(checkout, paymentMethodID, "", result, err)
	if err != nil {
		return nil, err
	}
	if len(result.UserErrors) > 0 {
		return nil, fmt.Errorf("charge rejected: %s", result.UserErrors[0].Message)
	}

	if result.AuthorizationToken != "" {
		action, err := p.provider.HandleCardAction(ctx, result.AuthorizationToken)
		if err != nil {
			return nil, err
		}
		if action.PaymentMethodID == "" {
			return nil, errors.New("card action resolved without a payment method")
		}

		retry, err := p.checkouts.ChargeCheckout(ctx, checkout.ID, commerce.ChargeInput{
			PaymentMethodID: action.PaymentMethodID,
			AuthorizationID: action.AuthorizationID,
		})
		p.recordCharge(checkout, action.PaymentMethodID, action.AuthorizationID, retry, err)
		if err != nil {
			return nil, err
		}
		if len(retry.UserErrors) > 0 {
			return nil, fmt.Errorf("charge retry rejected: %s", retry.UserErrors[0].Message)
		}
		if retry.AuthorizationToken != "" {
			// Bounded retry. A second authentication request is a provider
			// protocol violation, not something to loop on.
			return nil, errors.New("authentication requested again after retry")
		}
		result = retry
	}

	if result.Checkout == nil || !result.Checkout.Completed() {
		return nil, errors.New("charge response missing completion timestamp")
	}
	return result.Checkout, nil
}

// chargeFailed records the failure and notifies listeners. The wallet
// sheet is long gone by now; the storefront surfaces this as a banner.
func (p *Processor) chargeFailed(checkoutID, message string) {
	// The error lives in processor state as well as the session row so the
	// busy reset's save does not wipe the row that was just written.
	p.mtx.Lock()
	p.lastError = message
	p.mtx.Unlock()

	p.recordSessionError(checkoutID, message)
	p.bus.Emit(&events.ChargeFailed{CheckoutID: checkoutID, Message: message})
}

func (p *Processor) setBusy(busy bool) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.busy = busy
	if err := p.saveSession(); err != nil && p.checkout != nil {
		log.Errorf("Error saving session for checkout %s: %s", p.checkout.ID, err)
	}
}

// recordCharge persists a log row for a charge attempt.
func (p *Processor) recordCharge(checkout *models.Checkout, paymentMethodID, authorizationID string, result *commerce.ChargeResult, chargeErr error) {
	amount, err := models.ToSmallestCurrencyUnit(checkout.TotalPrice)
	if err != nil {
		amount = 0
	}
	record := &models.ChargeRecord{
		ID:              uuid.New().String(),
		CheckoutID:      checkout.ID,
		PaymentMethodID: paymentMethodID,
		AuthorizationID: authorizationID,
		AmountMinor:     amount,
		Currency:        checkout.TotalPrice.CurrencyCode,
		Timestamp:       time.Now(),
	}
	switch {
	case chargeErr != nil:
		record.Error = chargeErr.Error()
	case result != nil && len(result.UserErrors) > 0:
		record.Error = result.UserErrors[0].Message
	case result != nil && result.Checkout != nil && result.Checkout.Completed():
		record.Success = true
	}
	err = p.db.Update(func(tx *gorm.DB) error {
		return tx.Save(record).Error
	})
	if err != nil {
		log.Errorf("Error saving charge record for checkout %s: %s", checkout.ID, err)
	}
}
