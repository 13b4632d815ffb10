package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrCurrencyAmountInvalid is returned when a money amount string cannot
	// be parsed as a decimal number.
	ErrCurrencyAmountInvalid = errors.New("invalid currency amount")

	// ErrCurrencyDefinitionUndefined is returned when looking up a currency
	// code that is not in the dictionary.
	ErrCurrencyDefinitionUndefined = errors.New("currency definition is not defined")
)

// CurrencyCode is a string-based ISO 4217 currency symbol.
type CurrencyCode string

// String returns a readable representation of CurrencyCode.
func (c CurrencyCode) String() string {
	return strings.ToUpper(string(c))
}

// Currency defines the characteristics of a currency.
type Currency struct {
	Name string
	Code CurrencyCode

	// Divisibility is the number of decimal places in the currency's
	// smallest unit. Zero-decimal currencies have no minor unit and are
	// charged in whole amounts.
	Divisibility uint
}

// CurrencyDictionary is a map that can be used to look up a currency
// given its string code.
type CurrencyDictionary map[string]*Currency

// Lookup returns the currency definition out of the loaded dictionary.
// The code is normalized before lookup.
func (c CurrencyDictionary) Lookup(code string) (*Currency, error) {
	def, ok := c[strings.ToUpper(code)]
	if !ok {
		return nil, ErrCurrencyDefinitionUndefined
	}
	return def, nil
}

// CurrencyDefinitions holds the fiat currencies the checkout backend can
// price in. The sixteen zero-decimal currencies carry a divisibility of
// zero; everything else uses two decimal places.
var CurrencyDefinitions = CurrencyDictionary{
	"AED": {Name: "UAE Dirham", Code: "AED", Divisibility: 2},
	"ARS": {Name: "Argentine Peso", Code: "ARS", Divisibility: 2},
	"AUD": {Name: "Australian Dollar", Code: "AUD", Divisibility: 2},
	"BGN": {Name: "Bulgarian Lev", Code: "BGN", Divisibility: 2},
	"BIF": {Name: "Burundi Franc", Code: "BIF", Divisibility: 0},
	"BRL": {Name: "Brazilian Real", Code: "BRL", Divisibility: 2},
	"CAD": {Name: "Canadian Dollar", Code: "CAD", Divisibility: 2},
	"CHF": {Name: "Swiss Franc", Code: "CHF", Divisibility: 2},
	"CLP": {Name: "Chilean Peso", Code: "CLP", Divisibility: 0},
	"CNY": {Name: "Yuan Renminbi", Code: "CNY", Divisibility: 2},
	"COP": {Name: "Colombian Peso", Code: "COP", Divisibility: 2},
	"CZK": {Name: "Czech Koruna", Code: "CZK", Divisibility: 2},
	"DJF": {Name: "Djibouti Franc", Code: "DJF", Divisibility: 0},
	"DKK": {Name: "Danish Krone", Code: "DKK", Divisibility: 2},
	"EGP": {Name: "Egyptian Pound", Code: "EGP", Divisibility: 2},
	"EUR": {Name: "Euro", Code: "EUR", Divisibility: 2},
	"GBP": {Name: "Pound Sterling", Code: "GBP", Divisibility: 2},
	"GNF": {Name: "Guinea Franc", Code: "GNF", Divisibility: 0},
	"HKD": {Name: "Hong Kong Dollar", Code: "HKD", Divisibility: 2},
	"HUF": {Name: "Forint", Code: "HUF", Divisibility: 2},
	"IDR": {Name: "Rupiah", Code: "IDR", Divisibility: 2},
	"ILS": {Name: "New Israeli Sheqel", Code: "ILS", Divisibility: 2},
	"INR": {Name: "Indian Rupee", Code: "INR", Divisibility: 2},
	"ISK": {Name: "Iceland Krona", Code: "ISK", Divisibility: 2},
	"JPY": {Name: "Yen", Code: "JPY", Divisibility: 0},
	"KES": {Name: "Kenyan Shilling", Code: "KES", Divisibility: 2},
	"KMF": {Name: "Comoro Franc", Code: "KMF", Divisibility: 0},
	"KRW": {Name: "Won", Code: "KRW", Divisibility: 0},
	"MAD": {Name: "Moroccan Dirham", Code: "MAD", Divisibility: 2},
	"MGA": {Name: "Malagasy Ariary", Code: "MGA", Divisibility: 0},
	"MXN": {Name: "Mexican Peso", Code: "MXN", Divisibility: 2},
	"MYR": {Name: "Malaysian Ringgit", Code: "MYR", Divisibility: 2},
	"NGN": {Name: "Naira", Code: "NGN", Divisibility: 2},
	"NOK": {Name: "Norwegian Krone", Code: "NOK", Divisibility: 2},
	"NZD": {Name: "New Zealand Dollar", Code: "NZD", Divisibility: 2},
	"PEN": {Name: "Nuevo Sol", Code: "PEN", Divisibility: 2},
	"PHP": {Name: "Philippine Peso", Code: "PHP", Divisibility: 2},
	"PKR": {Name: "Pakistan Rupee", Code: "PKR", Divisibility: 2},
	"PLN": {Name: "Zloty", Code: "PLN", Divisibility: 2},
	"PYG": {Name: "Guarani", Code: "PYG", Divisibility: 0},
	"RON": {Name: "Romanian Leu", Code: "RON", Divisibility: 2},
	"RUB": {Name: "Russian Ruble", Code: "RUB", Divisibility: 2},
	"RWF": {Name: "Rwanda Franc", Code: "RWF", Divisibility: 0},
	"SAR": {Name: "Saudi Riyal", Code: "SAR", Divisibility: 2},
	"SEK": {Name: "Swedish Krona", Code: "SEK", Divisibility: 2},
	"SGD": {Name: "Singapore Dollar", Code: "SGD", Divisibility: 2},
	"THB": {Name: "Baht", Code: "THB", Divisibility: 2},
	"TRY": {Name: "Turkish Lira", Code: "TRY", Divisibility: 2},
	"TWD": {Name: "New Taiwan Dollar", Code: "TWD", Divisibility: 2},
	"TZS": {Name: "Tanzanian Shilling", Code: "TZS", Divisibility: 2},
	"UAH": {Name: "Hryvnia", Code: "UAH", Divisibility: 2},
	"UGX": {Name: "Uganda Shilling", Code: "UGX", Divisibility: 0},
	"USD": {Name: "United States Dollar", Code: "USD", Divisibility: 2},
	"VND": {Name: "Dong", Code: "VND", Divisibility: 0},
	"VUV": {Name: "Vatu", Code: "VUV", Divisibility: 0},
	"XAF": {Name: "CFA Franc BEAC", Code: "XAF", Divisibility: 0},
	"XOF": {Name: "CFA Franc BCEAO", Code: "XOF", Divisibility: 0},
	"XPF": {Name: "CFP Franc", Code: "XPF", Divisibility: 0},
	"ZAR": {Name: "Rand", Code: "ZAR", Divisibility: 2},
}

// Money is a decimal amount of a single currency as returned by the
// checkout backend.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// ToSmallestCurrencyUnit converts a decimal money amount into the integer
// minor-unit representation required by the payment provider. Amounts are
// rounded to the nearest integer. Currencies missing from the dictionary
// are assumed to have two decimal places.
//
// A malformed amount string returns ErrCurrencyAmountInvalid rather than
// propagating a garbage value into a charge.
func ToSmallestCurrencyUnit(m Money) (int64, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(m.Amount))
	if err != nil {
		return 0, ErrCurrencyAmountInvalid
	}
	divisibility := uint(2)
	if def, err := CurrencyDefinitions.Lookup(m.CurrencyCode); err == nil {
		divisibility = def.Divisibility
	}
	return amount.Shift(int32(divisibility)).Round(0).IntPart(), nil
}
