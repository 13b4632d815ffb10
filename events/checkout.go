package events

import "github.com/harborline/checkoutd/models"

// ShippingAddressChanged fires when the wallet sheet reports a new shipping
// address. The address is partial; the wallet redacts most fields until the
// payer authorizes payment.
type ShippingAddressChanged struct {
	CheckoutID string               `json:"checkoutID"`
	Address    models.WalletAddress `json:"address"`
}

// ShippingOptionChanged fires when the payer picks a different shipping
// option in the wallet sheet.
type ShippingOptionChanged struct {
	CheckoutID string `json:"checkoutID"`
	OptionID   string `json:"optionID"`
}

// PaymentMethodSubmitted fires when the payer authorizes payment. It is the
// terminal wallet event and carries the full, unredacted payload.
type PaymentMethodSubmitted struct {
	CheckoutID      string                 `json:"checkoutID"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
	Payer           models.Payer           `json:"payer"`
	ShippingAddress *models.WalletAddress  `json:"shippingAddress"`
	ShippingOption  *models.ShippingOption `json:"shippingOption"`
}

// PaymentRequestReady is a notification that a payment request was built
// and the provider confirmed wallet capability.
type PaymentRequestReady struct {
	CheckoutID     string `json:"checkoutID"`
	CanMakePayment bool   `json:"canMakePayment"`
}

// CheckoutCompleted is a notification that the charge succeeded and the
// checkout backend stamped the checkout complete.
type CheckoutCompleted struct {
	Checkout *models.Checkout `json:"checkout"`
}

// ChargeFailed is a notification that the charge, or its strong-customer-
// authentication retry, failed after the wallet sheet was already
// dismissed.
type ChargeFailed struct {
	CheckoutID string `json:"checkoutID"`
	Message    string `json:"message"`
}
