package core

import "strings"

// Rail is the settlement account a payment method is booked against.
type Rail int

const (
	// Unclassified methods still count toward income and expense totals
	// but belong to neither the cash nor the bank balance.
	Unclassified Rail = iota
	CashRail
	BankRail
)

func (r Rail) String() string {
	switch r {
	case CashRail:
		return "cash"
	case BankRail:
		return "bank"
	default:
		return "unclassified"
	}
}

// bankMethods is the complete allowlist of bank-settled methods.
// Anything not listed here, other than cash, is Unclassified.
var bankMethods = map[string]struct{}{
	"bank":            {},
	"card":            {},
	"online":          {},
	"online_transfer": {},
	"online_payment":  {},
}

// PaymentMethod is a normalized payment method and its rail.
type PaymentMethod struct {
	Normalized string
	Rail       Rail
}

// NormalizePaymentMethod lowercases s, trims it and joins internal
// whitespace runs with a single underscore.
func NormalizePaymentMethod(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

// ClassifyPaymentMethod maps a free-form method onto exactly one rail.
// An empty method is treated as cash.
func ClassifyPaymentMethod(s string) PaymentMethod {
	n := NormalizePaymentMethod(s)
	pm := PaymentMethod{Normalized: n}
	switch {
	case n == "" || n == "cash":
		pm.Rail = CashRail
	default:
		if _, ok := bankMethods[n]; ok {
			pm.Rail = BankRail
		}
	}
	return pm
}

// BankMethods lists the bank-settled method names.
func BankMethods() []string {
	return []string{"bank", "card", "online", "online_transfer", "online_payment"}
}
