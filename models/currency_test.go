package models

import (
	"testing"
)

func TestToSmallestCurrencyUnit(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		expected int64
		valid    bool
	}{
		{
			amount:   "1.23",
			currency: "AUD",
			expected: 123,
			valid:    true,
		},
		{
			amount:   "0.123",
			currency: "GBP",
			expected: 12,
			valid:    true,
		},
		{
			amount:   "123",
			currency: "USD",
			expected: 12300,
			valid:    true,
		},
		{
			amount:   "1.23",
			currency: "BIF",
			expected: 1,
			valid:    true,
		},
		{
			amount:   "0.123",
			currency: "JPY",
			expected: 0,
			valid:    true,
		},
		{
			amount:   "123",
			currency: "XPF",
			expected: 123,
			valid:    true,
		},
		{ // unknown currencies fall back to two decimal places
			amount:   "1.23",
			currency: "ZZZ",
			expected: 123,
			valid:    true,
		},
		{ // surrounding whitespace is tolerated
			amount:   " 1.23 ",
			currency: "EUR",
			expected: 123,
			valid:    true,
		},
		{
			amount:   "notanumber",
			currency: "USD",
			valid:    false,
		},
		{
			amount:   "",
			currency: "USD",
			valid:    false,
		},
	}

	for i, test := range tests {
		amount, err := ToSmallestCurrencyUnit(Money{Amount: test.amount, CurrencyCode: test.currency})
		if !test.valid {
			if err != ErrCurrencyAmountInvalid {
				t.Errorf("Test %d: expected ErrCurrencyAmountInvalid, got %v", i, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Test %d: unexpected error: %s", i, err)
			continue
		}
		if amount != test.expected {
			t.Errorf("Test %d: expected %d %s, got %d", i, test.expected, test.currency, amount)
		}
	}
}

func TestCurrencyDictionaryLookup(t *testing.T) {
	def, err := CurrencyDefinitions.Lookup("JPY")
	if err != nil {
		t.Fatal(err)
	}
	if def.Divisibility != 0 {
		t.Errorf("Expected divisibility 0 for JPY, got %d", def.Divisibility)
	}

	def, err = CurrencyDefinitions.Lookup("usd")
	if err != nil {
		t.Fatal(err)
	}
	if def.Divisibility != 2 {
		t.Errorf("Expected divisibility 2 for USD, got %d", def.Divisibility)
	}

	if _, err := CurrencyDefinitions.Lookup("ZZZ"); err != ErrCurrencyDefinitionUndefined {
		t.Errorf("Expected ErrCurrencyDefinitionUndefined, got %v", err)
	}
}

func TestZeroDecimalCurrencies(t *testing.T) {
	zeroDecimal := []string{
		"BIF", "CLP", "DJF", "GNF", "JPY", "KMF", "KRW", "MGA",
		"PYG", "RWF", "UGX", "VND", "VUV", "XAF", "XOF", "XPF",
	}
	for _, code := range zeroDecimal {
		def, err := CurrencyDefinitions.Lookup(code)
		if err != nil {
			t.Errorf("Missing currency definition for %s", code)
			continue
		}
		if def.Divisibility != 0 {
			t.Errorf("Expected divisibility 0 for %s, got %d", code, def.Divisibility)
		}
	}
}
