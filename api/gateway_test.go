package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harborline/checkoutd/commerce"
	"github.com/harborline/checkoutd/database"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/models"
	"github.com/harborline/checkoutd/paymentrequest"
	"github.com/harborline/checkoutd/provider"
	"github.com/jinzhu/gorm"
)

type stubCheckoutService struct {
	checkout *models.Checkout
}

func (s *stubCheckoutService) GetCheckout(ctx context.Context, checkoutID string) (*models.Checkout, error) {
	if s.checkout == nil || s.checkout.ID != checkoutID {
		return nil, errors.New("checkout not found")
	}
	return s.checkout, nil
}

func (s *stubCheckoutService) UpdateCheckout(ctx context.Context, checkoutID string, input commerce.CheckoutInput) (*models.Checkout, []models.UserError, error) {
	checkout := *s.checkout
	if input.ShippingRate != nil {
		for i, rate := range checkout.AvailableShippingRates {
			if rate.RateHandle() == input.ShippingRate.Handle {
				checkout.ShippingRate = &checkout.AvailableShippingRates[i]
			}
		}
	}
	return &checkout, nil, nil
}

func (s *stubCheckoutService) ChargeCheckout(ctx context.Context, checkoutID string, input commerce.ChargeInput) (*commerce.ChargeResult, error) {
	return nil, errors.New("not implemented")
}

type stubProvider struct{}

func (s *stubProvider) CanMakePayment(ctx context.Context, country, currency string) (bool, error) {
	return true, nil
}

func (s *stubProvider) HandleCardAction(ctx context.Context, token string) (*provider.CardAction, error) {
	return nil, errors.New("not implemented")
}

func newTestGateway(t *testing.T, config *GatewayConfig) (*Gateway, *httptest.Server) {
	db, err := database.NewSqliteDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	err = db.Update(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&models.CheckoutSession{},
			&models.ChargeRecord{},
			&models.NotificationRecord{},
		).Error
	})
	if err != nil {
		t.Fatal(err)
	}

	checkouts := &stubCheckoutService{
		checkout: &models.Checkout{
			ID:         "chk_1",
			TotalPrice: models.Money{Amount: "25.00", CurrencyCode: "USD"},
			AvailableShippingRates: []models.ShippingRate{
				{Handle: "standard", Title: "Standard", Price: models.Money{Amount: "5.00", CurrencyCode: "USD"}},
			},
		},
	}

	manager := paymentrequest.NewManager(db, checkouts, &stubProvider{}, events.NewBus(), paymentrequest.Config{
		StoreName:         "Test Store",
		Country:           "US",
		Locale:            "en-US",
		ShippingCountries: map[string][]string{"en-US": {"US"}},
	})

	if config == nil {
		config = &GatewayConfig{NoCors: true}
	}
	g, err := NewGateway(manager, config)
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(g.handler)
	t.Cleanup(server.Close)
	return g, server
}

func TestGatewayPaymentRequest(t *testing.T) {
	_, server := newTestGateway(t, nil)

	resp, err := http.Get(server.URL + "/v1/paymentrequest/chk_1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		CanMakePayment bool `json:"canMakePayment"`
		PaymentRequest *struct {
			Currency        string                  `json:"currency"`
			ShippingOptions []models.ShippingOption `json:"shippingOptions"`
			Total           models.TotalItem        `json:"total"`
		} `json:"paymentRequest"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.CanMakePayment {
		t.Error("Expected wallet capability")
	}
	if body.PaymentRequest == nil {
		t.Fatal("Expected a payment request document")
	}
	if body.PaymentRequest.Currency != "usd" {
		t.Errorf("Expected currency usd, got %s", body.PaymentRequest.Currency)
	}
	if len(body.PaymentRequest.ShippingOptions) != 0 {
		t.Errorf("Expected empty shipping options, got %v", body.PaymentRequest.ShippingOptions)
	}
	if !body.PaymentRequest.Total.Pending {
		t.Error("Expected pending total")
	}
}

func TestGatewayPaymentRequestNotFound(t *testing.T) {
	_, server := newTestGateway(t, nil)

	resp, err := http.Get(server.URL + "/v1/paymentrequest/unknown")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestGatewayShippingAddress(t *testing.T) {
	_, server := newTestGateway(t, nil)

	payload, err := json.Marshal(models.WalletAddress{
		City:       "Cupertino",
		Country:    "US",
		PostalCode: "95014",
		Region:     "CA",
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(server.URL+"/v1/paymentrequest/chk_1/shippingaddress", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Status          string                  `json:"status"`
		ShippingOptions []models.ShippingOption `json:"shippingOptions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "success" {
		t.Fatalf("Expected success, got %s", body.Status)
	}
	if len(body.ShippingOptions) != 1 || body.ShippingOptions[0].ID != "standard" {
		t.Errorf("Expected the standard option, got %v", body.ShippingOptions)
	}
}

func TestGatewayStatus(t *testing.T) {
	_, server := newTestGateway(t, nil)

	resp, err := http.Get(server.URL + "/v1/paymentrequest/chk_1/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		CheckoutID string `json:"checkoutID"`
		Busy       bool   `json:"busy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.CheckoutID != "chk_1" || body.Busy {
		t.Errorf("Unexpected status: %+v", body)
	}
}

func TestGatewayBasicAuth(t *testing.T) {
	h := sha256.Sum256([]byte("letmein"))
	_, server := newTestGateway(t, &GatewayConfig{
		NoCors:   true,
		Username: "admin",
		Password: hex.EncodeToString(h[:]),
	})

	resp, err := http.Get(server.URL + "/v1/paymentrequest/chk_1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("Expected status 403 without credentials, got %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/v1/paymentrequest/chk_1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.SetBasicAuth("admin", "letmein")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 with credentials, got %d", resp.StatusCode)
	}
}

func TestSanitizeJSON(t *testing.T) {
	out, err := marshalAndSanitizeJSON(map[string]interface{}{
		"recipient": `<script>alert("xss")</script>Joe`,
		"nested":    map[string]interface{}{"city": "<b>Cupertino</b>"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["recipient"] != "Joe" {
		t.Errorf("Expected script stripped, got %q", decoded["recipient"])
	}
}
