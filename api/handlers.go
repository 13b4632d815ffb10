package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/models"
)

type paymentRequestResponse struct {
	CanMakePayment bool                    `json:"canMakePayment"`
	PaymentRequest *paymentRequestDocument `json:"paymentRequest"`
}

type paymentRequestDocument struct {
	Country           string                  `json:"country"`
	Currency          string                  `json:"currency"`
	RequestPayerEmail bool                    `json:"requestPayerEmail"`
	RequestPayerName  bool                    `json:"requestPayerName"`
	RequestShipping   bool                    `json:"requestShipping"`
	ShippingOptions   []models.ShippingOption `json:"shippingOptions"`
	Total             models.TotalItem        `json:"total"`
}

// handleGETPaymentRequest returns the wallet payment request for a
// checkout. PaymentRequest is null until the provider has confirmed wallet
// capability; the storefront must not render a wallet button before then.
func (g *Gateway) handleGETPaymentRequest(w http.ResponseWriter, r *http.Request) {
	checkoutID := mux.Vars(r)["checkoutID"]

	p, err := g.manager.Processor(r.Context(), checkoutID)
	if err != nil {
		http.Error(w, wrapError(err), http.StatusNotFound)
		return
	}

	resp := paymentRequestResponse{}
	if request, ok := p.Request(); ok {
		resp.CanMakePayment = true
		resp.PaymentRequest = &paymentRequestDocument{
			Country:           request.Country,
			Currency:          request.Currency,
			RequestPayerEmail: request.RequestPayerEmail,
			RequestPayerName:  request.RequestPayerName,
			RequestShipping:   request.RequestShipping,
			ShippingOptions:   request.ShippingOptions,
			Total:             request.Total,
		}
	}
	sanitizedJSONResponse(w, resp)
}

// handleGETStatus returns the persisted session row for a checkout.
func (g *Gateway) handleGETStatus(w http.ResponseWriter, r *http.Request) {
	checkoutID := mux.Vars(r)["checkoutID"]

	p, err := g.manager.Processor(r.Context(), checkoutID)
	if err != nil {
		http.Error(w, wrapError(err), http.StatusNotFound)
		return
	}

	sanitizedJSONResponse(w, struct {
		CheckoutID string `json:"checkoutID"`
		Busy       bool   `json:"busy"`
	}{
		CheckoutID: p.CheckoutID(),
		Busy:       p.Busy(),
	})
}

// handlePOSTRefresh rebuilds the wallet payment request, replacing the old
// instance wholesale. Called when the storefront's readiness or provider
// instance changes.
func (g *Gateway) handlePOSTRefresh(w http.ResponseWriter, r *http.Request) {
	checkoutID := mux.Vars(r)["checkoutID"]

	if _, err := g.manager.Refresh(r.Context(), checkoutID); err != nil {
		http.Error(w, wrapError(err), http.StatusInternalServerError)
		return
	}
	g.handleGETPaymentRequest(w, r)
}

func (g *Gateway) handlePOSTShippingAddress(w http.ResponseWriter, r *http.Request) {
	checkoutID := mux.Vars(r)["checkoutID"]

	var address models.WalletAddress
	if err := json.NewDecoder(r.Body).Decode(&address); err != nil {
		http.Error(w, wrapError(err), http.StatusBadRequest)
		return
	}

	p, err := g.manager.Processor(r.Context(), checkoutID)
	if err != nil {
		http.Error(w, wrapError(err), http.StatusNotFound)
		return
	}

	resp := p.HandleShippingAddressChange(r.Context(), &events.ShippingAddressChanged{
		CheckoutID: checkoutID,
		Address:    address,
	})
	sanitizedJSONResponse(w, resp)
}

func (g *Gateway) handlePOSTShippingOption(w http.ResponseWriter, r *http.Request) {
	checkoutID := mux.Vars(r)["checkoutID"]

	var body struct {
		OptionID string `json:"optionID"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, wrapError(err), http.StatusBadRequest)
		return
	}

	p, err := g.manager.Processor(r.Context(), checkoutID)
	if err != nil {
		http.Error(w, wrapError(err), http.StatusNotFound)
		return
	}

	resp := p.HandleShippingOptionChange(r.Context(), &events.ShippingOptionChanged{
		CheckoutID: checkoutID,
		OptionID:   body.OptionID,
	})
	sanitizedJSONResponse(w, resp)
}

func (g *Gateway) handlePOSTPaymentMethod(w http.ResponseWriter, r *http.Request) {
	checkoutID := mux.Vars(r)["checkoutID"]

	var body struct {
		PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
		Payer           models.Payer           `json:"payer"`
		ShippingAddress *models.WalletAddress  `json:"shippingAddress"`
		ShippingOption  *models.ShippingOption `json:"shippingOption"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, wrapError(err), http.StatusBadRequest)
		return
	}

	p, err := g.manager.Processor(r.Context(), checkoutID)
	if err != nil {
		http.Error(w, wrapError(err), http.StatusNotFound)
		return
	}

	resp := p.HandlePaymentMethod(r.Context(), &events.PaymentMethodSubmitted{
		CheckoutID:      checkoutID,
		PaymentMethod:   body.PaymentMethod,
		Payer:           body.Payer,
		ShippingAddress: body.ShippingAddress,
		ShippingOption:  body.ShippingOption,
	})
	sanitizedJSONResponse(w, resp)
}

func wrapError(err error) string {
	out, marshalErr := json.MarshalIndent(struct {
		Error string `json:"error"`
	}{Error: err.Error()}, "", "    ")
	if marshalErr != nil {
		return err.Error()
	}
	return string(out)
}
