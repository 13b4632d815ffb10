package models

// Payer is the payer contact information collected by the wallet sheet.
type Payer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PaymentMethod is the tokenized payment method produced by the wallet.
type PaymentMethod struct {
	ID             string          `json:"id"`
	BillingDetails *BillingDetails `json:"billingDetails"`
}

// ShippingOption is a shipping choice surfaced in the wallet sheet.
type ShippingOption struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Detail   string `json:"detail"`
	Amount   int64  `json:"amount"`
	Selected bool   `json:"selected"`
}

// TotalItem is the wallet sheet's total line. Pending indicates the amount
// is not yet final because no shipping rate has been selected.
type TotalItem struct {
	Label   string `json:"label"`
	Amount  int64  `json:"amount"`
	Pending bool   `json:"pending"`
}
