package models

import "errors"

// ErrIncompleteInfluencerRedirect is returned when an influencer redirect
// record is missing required data.
var ErrIncompleteInfluencerRedirect = errors.New("incomplete influencer redirect")

// InfluencerRedirect is a marketing redirect that prefills a checkout with
// an influencer's shipping address. It is the one consumer of complete-mode
// address validation outside the wallet flow.
type InfluencerRedirect struct {
	Slug        string        `json:"slug"`
	Destination string        `json:"destination"`
	Address     WalletAddress `json:"address"`
}

// TransformInfluencerRedirect validates the record and returns it with the
// normalized shipping address attached. Incomplete records are rejected so
// a half-filled redirect never reaches a live checkout.
func TransformInfluencerRedirect(r InfluencerRedirect) (*InfluencerRedirect, *Address, error) {
	if r.Slug == "" || r.Destination == "" {
		return nil, nil, ErrIncompleteInfluencerRedirect
	}
	addr, err := NewShippingAddress(r.Address)
	if err != nil {
		return nil, nil, err
	}
	return &r, addr, nil
}
