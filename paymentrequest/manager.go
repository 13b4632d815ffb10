package paymentrequest

import (
	"context"
	"sync"

	"github.com/harborline/checkoutd/commerce"
	"github.com/harborline/checkoutd/database"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/provider"
)

// Manager owns one processor per checkout session. Each processor holds a
// single wallet request handle that is replaced wholesale when readiness
// changes, so the manager is the only writer of processor lifecycles.
type Manager struct {
	db        database.Database
	checkouts commerce.CheckoutService
	provider  provider.PaymentProvider
	bus       events.Bus
	cfg       Config

	mtx        sync.Mutex
	processors map[string]*Processor
}

// NewManager returns a manager wiring processors to their collaborators.
func NewManager(db database.Database, checkouts commerce.CheckoutService, pp provider.PaymentProvider, bus events.Bus, cfg Config) *Manager {
	return &Manager{
		db:         db,
		checkouts:  checkouts,
		provider:   pp,
		bus:        bus,
		cfg:        cfg,
		processors: make(map[string]*Processor),
	}
}

// Processor returns the processor for the given checkout, creating and
// building it on first use. A checkout is ready for a wallet payment
// request once it exists and has not already been completed.
func (m *Manager) Processor(ctx context.Context, checkoutID string) (*Processor, error) {
	m.mtx.Lock()
	if p, ok := m.processors[checkoutID]; ok {
		m.mtx.Unlock()
		return p, nil
	}
	m.mtx.Unlock()

	checkout, err := m.checkouts.GetCheckout(ctx, checkoutID)
	if err != nil {
		return nil, err
	}

	// A checkout that already carries a customer email belongs to a known
	// customer, so the wallet sheet does not ask for one.
	cfg := m.cfg
	cfg.CustomerEmail = checkout.Email

	p := NewProcessor(m.db, m.checkouts, m.provider, m.bus, cfg)
	if err := p.Rebuild(ctx, checkout, !checkout.Completed()); err != nil {
		return nil, err
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	if existing, ok := m.processors[checkoutID]; ok {
		return existing, nil
	}
	m.processors[checkoutID] = p
	return p, nil
}

// Refresh reloads the checkout and rebuilds its payment request. Used when
// the storefront reports that readiness or the provider instance changed.
func (m *Manager) Refresh(ctx context.Context, checkoutID string) (*Processor, error) {
	p, err := m.Processor(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	checkout, err := m.checkouts.GetCheckout(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	if err := p.Rebuild(ctx, checkout, !checkout.Completed()); err != nil {
		return nil, err
	}
	return p, nil
}
