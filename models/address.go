package models

import (
	"errors"
	"strings"
)

var (
	// ErrMissingAddressFields is returned when a shipping address is built in
	// complete mode and one or more required fields are empty.
	ErrMissingAddressFields = errors.New("missing address fields")

	// ErrMissingBillingData is returned when the payment method's billing
	// details lack a required field.
	ErrMissingBillingData = errors.New("missing billing data")

	// nameConjunctions are tokens the name parser treats as joining two
	// names. A single-letter middle initial that collides with one of these
	// trips the parser, which is why normalization retries with the
	// conjunctions stripped out.
	nameConjunctions = map[string]bool{
		"&":   true,
		"and": true,
		"et":  true,
		"e":   true,
		"of":  true,
		"the": true,
		"und": true,
		"y":   true,
	}
)

// IsMissingAddressFieldsError returns whether or not the provided error is
// an ErrMissingAddressFields error.
func IsMissingAddressFieldsError(err error) bool {
	return err == ErrMissingAddressFields
}

// WalletAddress is the free-form shipping address supplied by the browser
// wallet. Every field other than the country may be absent.
type WalletAddress struct {
	AddressLine       []string `json:"addressLine"`
	DependentLocality string   `json:"dependentLocality"`
	City              string   `json:"city"`
	Country           string   `json:"country"`
	Phone             string   `json:"phone"`
	PostalCode        string   `json:"postalCode"`
	Recipient         string   `json:"recipient"`
	Region            string   `json:"region"`
}

// Address is the structured address shape accepted by the checkout backend.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Company   string `json:"company"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
}

// PartialAddress is an Address built in partial mode. Missing fields are
// tolerated and the distinct type keeps an incomplete address from being
// passed where a validated one is required.
type PartialAddress struct {
	Address
}

// NewShippingAddress converts a wallet-supplied shipping address into the
// checkout backend's structured shape. Every required field must resolve to
// a non-empty value or ErrMissingAddressFields is returned.
func NewShippingAddress(w WalletAddress) (*Address, error) {
	addr := buildShippingAddress(w)
	if addr.FirstName == "" || addr.LastName == "" || addr.Address1 == "" ||
		addr.City == "" || addr.Country == "" || addr.Zip == "" || addr.Province == "" {
		return nil, ErrMissingAddressFields
	}
	return addr, nil
}

// NewPartialShippingAddress converts a wallet-supplied shipping address into
// the checkout backend's structured shape without validating completeness.
// The wallet redacts most fields before the payer authorizes payment, so
// partial addresses are the norm for pre-submission shipping estimates.
func NewPartialShippingAddress(w WalletAddress) *PartialAddress {
	return &PartialAddress{Address: *buildShippingAddress(w)}
}

func buildShippingAddress(w WalletAddress) *Address {
	firstName, lastName := resolveRecipientName(w.Recipient)

	var address1, address2 string
	if len(w.AddressLine) > 0 {
		address1 = w.AddressLine[0]
	}
	if len(w.AddressLine) > 1 {
		address2 = w.AddressLine[1]
	} else if w.DependentLocality != "" {
		address2 = w.DependentLocality
	}

	return &Address{
		FirstName: firstName,
		LastName:  lastName,
		Address1:  address1,
		Address2:  address2,
		City:      w.City,
		Company:   "",
		Country:   w.Country,
		Phone:     w.Phone,
		Province:  w.Region,
		Zip:       w.PostalCode,
	}
}

// BillingDetailsAddress is the address block inside the payment provider's
// billing details.
type BillingDetailsAddress struct {
	City       string `json:"city"`
	Country    string `json:"country"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	PostalCode string `json:"postal_code"`
	State      string `json:"state"`
}

// BillingDetails is the billing details shape attached to a payment method
// by the payment provider.
type BillingDetails struct {
	Address BillingDetailsAddress `json:"address"`
	Name    string                `json:"name"`
	Phone   string                `json:"phone"`
}

// NewBillingAddress converts provider billing details into the checkout
// backend's structured address shape. Country, line1, name, postal code and
// state are required.
//
// Unlike NewShippingAddress, a cardholder name that cannot be split leaves
// both name fields empty instead of pushing the whole string into the last
// name. The checkout backend accepts the record either way and the original
// name is preserved in the order's note attributes.
func NewBillingAddress(b BillingDetails) (*Address, error) {
	if b.Address.Country == "" || b.Address.Line1 == "" || b.Name == "" ||
		b.Address.PostalCode == "" || b.Address.State == "" {
		return nil, ErrMissingBillingData
	}

	firstName, lastName := splitFullName(b.Name)

	return &Address{
		FirstName: firstName,
		LastName:  lastName,
		Address1:  b.Address.Line1,
		Address2:  b.Address.Line2,
		City:      b.Address.City,
		Company:   "",
		Country:   b.Address.Country,
		Phone:     b.Phone,
		Province:  b.Address.State,
		Zip:       b.Address.PostalCode,
	}, nil
}

// resolveRecipientName splits a wallet recipient string into first and last
// name. If both parse attempts fail the whole string becomes the last name
// so the order is never dropped for want of a parsable name.
func resolveRecipientName(recipient string) (string, string) {
	firstName, lastName := splitFullName(recipient)
	if firstName == "" || lastName == "" {
		return "", recipient
	}
	return firstName, lastName
}

// splitFullName parses a free-form full name, retrying with conjunction
// tokens stripped when the first attempt fails. Returns empty strings when
// the name cannot be split.
func splitFullName(full string) (string, string) {
	firstName, lastName, err := parseName(full)
	if err == nil && firstName != "" && lastName != "" {
		return firstName, lastName
	}
	firstName, lastName, err = parseName(stripConjunctions(full))
	if err != nil || firstName == "" || lastName == "" {
		return "", ""
	}
	return firstName, lastName
}

// parseName splits a full name into a first and last name. The first token
// is the first name and the final token the last name; middle names are
// dropped. A name containing an interior conjunction token is ambiguous
// ("John and Jane Doe" names two people) and returns an error.
func parseName(full string) (string, string, error) {
	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return "", "", errors.New("empty name")
	case 1:
		return tokens[0], "", nil
	}
	for _, tok := range tokens[1 : len(tokens)-1] {
		if nameConjunctions[strings.ToLower(tok)] {
			return "", "", errors.New("ambiguous conjoined name")
		}
	}
	return tokens[0], tokens[len(tokens)-1], nil
}

// stripConjunctions removes whitespace-surrounded conjunction tokens from a
// name. "Joe ET Bloggs" is a middle initial, not two people, but the parser
// cannot tell the difference; stripping the token lets it succeed.
func stripConjunctions(full string) string {
	tokens := strings.Fields(full)
	if len(tokens) < 3 {
		return full
	}
	kept := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if i > 0 && i < len(tokens)-1 && nameConjunctions[strings.ToLower(tok)] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
