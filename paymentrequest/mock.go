package paymentrequest

import (
	"context"
	"errors"

	"github.com/harborline/checkoutd/commerce"
	"github.com/harborline/checkoutd/database"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/models"
	"github.com/harborline/checkoutd/provider"
	"github.com/jinzhu/gorm"
)

// mockCheckoutService is a scriptable CheckoutService which records every
// call it receives.
type mockCheckoutService struct {
	getResponse    *models.Checkout
	updateResponse func(call int, input commerce.CheckoutInput) (*models.Checkout, []models.UserError, error)
	chargeResponse func(call int, input commerce.ChargeInput) (*commerce.ChargeResult, error)

	updateCalls []commerce.CheckoutInput
	chargeCalls []commerce.ChargeInput
}

func (m *mockCheckoutService) GetCheckout(ctx context.Context, checkoutID string) (*models.Checkout, error) {
	if m.getResponse == nil {
		return nil, errors.New("checkout not found")
	}
	return m.getResponse, nil
}

func (m *mockCheckoutService) UpdateCheckout(ctx context.Context, checkoutID string, input commerce.CheckoutInput) (*models.Checkout, []models.UserError, error) {
	m.updateCalls = append(m.updateCalls, input)
	if m.updateResponse == nil {
		return nil, nil, errors.New("no update response scripted")
	}
	return m.updateResponse(len(m.updateCalls), input)
}

func (m *mockCheckoutService) ChargeCheckout(ctx context.Context, checkoutID string, input commerce.ChargeInput) (*commerce.ChargeResult, error) {
	m.chargeCalls = append(m.chargeCalls, input)
	if m.chargeResponse == nil {
		return nil, errors.New("no charge response scripted")
	}
	return m.chargeResponse(len(m.chargeCalls), input)
}

// mockProvider is a scriptable PaymentProvider.
type mockProvider struct {
	canMakePayment bool
	canMakeErr     error
	cardAction     *provider.CardAction
	cardActionErr  error

	cardActionCalls []string
}

func (m *mockProvider) CanMakePayment(ctx context.Context, country, currency string) (bool, error) {
	return m.canMakePayment, m.canMakeErr
}

func (m *mockProvider) HandleCardAction(ctx context.Context, token string) (*provider.CardAction, error) {
	m.cardActionCalls = append(m.cardActionCalls, token)
	if m.cardActionErr != nil {
		return nil, m.cardActionErr
	}
	return m.cardAction, nil
}

// newMockProcessor builds a processor over an in-memory database, a
// scriptable checkout service and provider, and a fresh bus.
func newMockProcessor(cfg Config) (*Processor, *mockCheckoutService, *mockProvider, events.Bus, error) {
	db, err := database.NewSqliteDB(":memory:")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	err = db.Update(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&models.CheckoutSession{},
			&models.ChargeRecord{},
			&models.NotificationRecord{},
		).Error
	})
	if err != nil {
		return nil, nil, nil, nil, err
	}

	checkouts := &mockCheckoutService{}
	pp := &mockProvider{canMakePayment: true}
	bus := events.NewBus()

	return NewProcessor(db, checkouts, pp, bus, cfg), checkouts, pp, bus, nil
}
