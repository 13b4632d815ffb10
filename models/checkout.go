package models

import (
	"time"

	"github.com/gosimple/slug"
)

// ShippingRate is one shipping option offered by the checkout backend.
type ShippingRate struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
	Price  Money  `json:"price"`
}

// RateHandle returns the rate's handle, deriving one from the title when
// the backend omits it.
func (r ShippingRate) RateHandle() string {
	if r.Handle != "" {
		return r.Handle
	}
	return slug.Make(r.Title)
}

// NoteAttribute is a key/value annotation attached to a checkout. The
// payment flow records the original billing and shipping names here for
// downstream fraud and support visibility.
type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// UserError is a user-level validation error returned by a checkout
// mutation.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// Checkout is the remote checkout resource this service reconciles the
// wallet payment request against.
type Checkout struct {
	ID                     string          `json:"id"`
	Email                  string          `json:"email"`
	TotalPrice             Money           `json:"totalPrice"`
	ShippingAddress        *Address        `json:"shippingAddress"`
	ShippingRate           *ShippingRate   `json:"shippingRate"`
	AvailableShippingRates []ShippingRate  `json:"availableShippingRates"`
	NoteAttributes         []NoteAttribute `json:"noteAttributes"`
	Ready                  bool            `json:"ready"`
	CompletedAt            *time.Time      `json:"completedAt"`
}

// Completed reports whether the checkout has been paid for.
func (c *Checkout) Completed() bool {
	return c.CompletedAt != nil
}

// CheckoutSession is the locally persisted view of a payment request
// session. It exists for status queries and support diagnostics; the
// checkout backend remains the source of truth for the checkout itself.
type CheckoutSession struct {
	CheckoutID     string     `gorm:"primary_key" json:"checkoutID"`
	Currency       string     `json:"currency"`
	Country        string     `json:"country"`
	Email          string     `json:"email"`
	CanMakePayment bool       `json:"canMakePayment"`
	Busy           bool       `json:"busy"`
	CompletedAt    *time.Time `json:"completedAt"`
	LastError      string     `json:"lastError"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ChargeRecord is a persisted log row for each charge attempt, including
// the bounded strong-customer-authentication retry.
type ChargeRecord struct {
	ID              string    `gorm:"primary_key" json:"id"`
	CheckoutID      string    `gorm:"index" json:"checkoutID"`
	PaymentMethodID string    `json:"paymentMethodID"`
	AuthorizationID string    `json:"authorizationID"`
	AmountMinor     int64     `json:"amountMinor"`
	Currency        string    `json:"currency"`
	Success         bool      `json:"success"`
	Error           string    `json:"error"`
	Timestamp       time.Time `json:"timestamp"`
}

// NotificationRecord is a persisted notification.
type NotificationRecord struct {
	ID           string    `gorm:"primary_key" json:"id"`
	CheckoutID   string    `gorm:"index" json:"checkoutID"`
	Read         bool      `json:"read"`
	Timestamp    time.Time `json:"timestamp"`
	Notification []byte    `json:"-"`
}
