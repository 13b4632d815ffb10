package paymentrequest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/harborline/checkoutd/commerce"
	"github.com/harborline/checkoutd/database"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/models"
	"github.com/harborline/checkoutd/provider"
	"github.com/jinzhu/gorm"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("PYRQ")

// Config carries the storefront's locale and provider settings into the
// payment flow.
type Config struct {
	// StoreName labels the wallet sheet's total line.
	StoreName string

	// Country is the merchant's country code.
	Country string

	// Locale is the storefront locale the session was opened under.
	Locale string

	// ShippingCountries maps a locale to the country codes it may ship to.
	ShippingCountries map[string][]string

	// CustomerEmail is the authenticated customer's email. Empty for guest
	// sessions, in which case the wallet collects a payer email.
	CustomerEmail string
}

// Processor owns one checkout's wallet payment request and reconciles the
// wallet's three events against the remote checkout resource.
type Processor struct {
	db        database.Database
	checkouts commerce.CheckoutService
	provider  provider.PaymentProvider
	bus       events.Bus
	cfg       Config

	mtx            sync.Mutex
	checkout       *models.Checkout
	request        *Request
	canMakePayment bool
	busy           bool
	lastError      string
}

// NewProcessor returns a processor for a single checkout session.
func NewProcessor(db database.Database, checkouts commerce.CheckoutService, pp provider.PaymentProvider, bus events.Bus, cfg Config) *Processor {
	return &Processor{
		db:        db,
		checkouts: checkouts,
		provider:  pp,
		bus:       bus,
		cfg:       cfg,
	}
}

// Rebuild constructs a fresh wallet payment request for the checkout and
// queries the provider's wallet capability once. It replaces any previous
// request wholesale and must be called again whenever readiness or the
// provider instance changes. When ready is false the request is torn down.
func (p *Processor) Rebuild(ctx context.Context, checkout *models.Checkout, ready bool) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.checkout = checkout
	p.request = nil
	p.canMakePayment = false

	if !ready || p.provider == nil {
		return p.saveSession()
	}

	request, err := buildRequest(p.cfg, checkout)
	if err != nil {
		return err
	}

	canPay, err := p.provider.CanMakePayment(ctx, request.Country, request.Currency)
	if err != nil {
		return err
	}

	p.request = request
	p.canMakePayment = canPay

	if err := p.saveSession(); err != nil {
		return err
	}
	p.bus.Emit(&events.PaymentRequestReady{
		CheckoutID:     checkout.ID,
		CanMakePayment: canPay,
	})
	return nil
}

// Request returns the wallet payment request, or false while capability has
// not been confirmed. A wallet button must not be rendered until this
// returns true.
func (p *Processor) Request() (*Request, bool) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if !p.canMakePayment || p.request == nil {
		return nil, false
	}
	return p.request, true
}

// Busy reports whether a charge attempt is in flight.
func (p *Processor) Busy() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.busy
}

// CheckoutID returns the ID of the checkout this processor reconciles.
func (p *Processor) CheckoutID() string {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.checkout == nil {
		return ""
	}
	return p.checkout.ID
}

// countryAllowed reports whether the wallet-supplied country is in the
// configured shipping countries for the active locale.
func (p *Processor) countryAllowed(country string) bool {
	allowed, ok := p.cfg.ShippingCountries[p.cfg.Locale]
	if !ok {
		log.Warningf("No shipping countries configured for locale %s", p.cfg.Locale)
		return false
	}
	for _, c := range allowed {
		if c == country {
			return true
		}
	}
	return false
}

// reportError records an unexpected error with its contextual payload.
// These are bugs in the remote system or provider, never silently ignored.
func (p *Processor) reportError(err error, extra map[string]interface{}) {
	payload, jerr := json.Marshal(extra)
	if jerr != nil {
		log.Errorf("Payment request error: %s", err)
		return
	}
	log.Errorf("Payment request error: %s extra=%s", err, string(payload))
}

// saveSession persists the session row. Callers must hold the mutex.
func (p *Processor) saveSession() error {
	if p.checkout == nil {
		return nil
	}
	session := &models.CheckoutSession{
		CheckoutID:     p.checkout.ID,
		Currency:       p.checkout.TotalPrice.CurrencyCode,
		Country:        p.cfg.Country,
		Email:          p.checkout.Email,
		CanMakePayment: p.canMakePayment,
		Busy:           p.busy,
		CompletedAt:    p.checkout.CompletedAt,
		LastError:      p.lastError,
		UpdatedAt:      time.Now(),
	}
	return p.db.Update(func(tx *gorm.DB) error {
		return tx.Save(session).Error
	})
}

// recordSessionError stores the last error on the session row for status
// queries.
func (p *Processor) recordSessionError(checkoutID, message string) {
	err := p.db.Update(func(tx *gorm.DB) error {
		return tx.Model(&models.CheckoutSession{}).
			Where("checkout_id = ?", checkoutID).
			Updates(map[string]interface{}{"last_error": message, "updated_at": time.Now()}).Error
	})
	if err != nil {
		log.Errorf("Error saving session error for checkout %s: %s", checkoutID, err)
	}
}

// Session loads the persisted session row for a checkout.
func Session(db database.Database, checkoutID string) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := db.View(func(tx *gorm.DB) error {
		return tx.Where("checkout_id = ?", checkoutID).First(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
