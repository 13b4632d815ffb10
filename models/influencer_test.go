package models

import "testing"

func TestTransformInfluencerRedirect(t *testing.T) {
	redirect := InfluencerRedirect{
		Slug:        "summer-haul",
		Destination: "/collections/summer",
		Address:     walletAddressFixture(),
	}

	r, addr, err := TransformInfluencerRedirect(redirect)
	if err != nil {
		t.Fatal(err)
	}
	if r.Slug != "summer-haul" {
		t.Errorf("Expected slug summer-haul, got %s", r.Slug)
	}
	if addr.FirstName != "Joe" || addr.LastName != "Bloggs" {
		t.Errorf("Expected normalized name Joe Bloggs, got %s %s", addr.FirstName, addr.LastName)
	}

	if _, _, err := TransformInfluencerRedirect(InfluencerRedirect{Destination: "/x", Address: walletAddressFixture()}); err != ErrIncompleteInfluencerRedirect {
		t.Errorf("Expected ErrIncompleteInfluencerRedirect, got %v", err)
	}
	if _, _, err := TransformInfluencerRedirect(InfluencerRedirect{Slug: "x", Address: walletAddressFixture()}); err != ErrIncompleteInfluencerRedirect {
		t.Errorf("Expected ErrIncompleteInfluencerRedirect, got %v", err)
	}

	incomplete := redirect
	incomplete.Address.City = ""
	if _, _, err := TransformInfluencerRedirect(incomplete); !IsMissingAddressFieldsError(err) {
		t.Errorf("Expected ErrMissingAddressFields, got %v", err)
	}
}
