package paymentrequest

import (
	"context"
	"testing"

	"github.com/harborline/checkoutd/commerce"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/models"
)

func TestHandleShippingOptionChange(t *testing.T) {
	p, checkouts, _, _, err := newMockProcessor(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	checkouts.updateResponse = func(call int, input commerce.CheckoutInput) (*models.Checkout, []models.UserError, error) {
		if input.ShippingRate == nil || input.ShippingRate.Handle != "express" {
			t.Errorf("Expected express rate selection, got %v", input.ShippingRate)
		}
		checkout := checkoutFixture()
		checkout.ShippingRate = &checkout.AvailableShippingRates[1]
		checkout.TotalPrice = models.Money{Amount: "35.00", CurrencyCode: "USD"}
		return checkout, nil, nil
	}

	resp := p.HandleShippingOptionChange(context.Background(), &events.ShippingOptionChanged{
		CheckoutID: "chk_1",
		OptionID:   "express",
	})
	if resp.Status != StatusSuccess {
		t.Fatalf("Expected success, got %s", resp.Status)
	}
	if resp.Total == nil || resp.Total.Amount != 3500 {
		t.Errorf("Expected updated total 3500, got %v", resp.Total)
	}
	if resp.ShippingOptions != nil {
		t.Error("Expected no shipping option list on an option change")
	}
}

func TestHandleShippingOptionChangeBackendError(t *testing.T) {
	p, _, _, _, err := newMockProcessor(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	resp := p.HandleShippingOptionChange(context.Background(), &events.ShippingOptionChanged{
		CheckoutID: "chk_1",
		OptionID:   "express",
	})
	if resp.Status != StatusFail {
		t.Fatalf("Expected fail, got %s", resp.Status)
	}
}
