package rate

import (
	"strconv"
	"strings"
	"unicode"
)

// DigitsOnly strips every non-digit from a postal code.
func DigitsOnly(zip string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, zip)
}

// Destination is the normalized destination zip. A zero value means the
// zip is unknown and every rule covers it.
type Destination struct {
	Zip   string
	value float64
}

func NewDestination(to *Address) Destination {
	if to == nil {
		return Destination{}
	}
	d := Destination{Zip: DigitsOnly(to.Zip)}
	if d.Zip != "" {
		d.value, _ = strconv.ParseFloat(d.Zip, 64)
	}
	return d
}

// Covers reports whether the rule's zip range includes the destination.
// Missing or zero bounds are open.
func (d Destination) Covers(r ShippingRule) bool {
	if d.Zip == "" || r.ZipRange == nil {
		return true
	}
	if lo := r.ZipRange.Min; lo.truthy() && d.value < lo.Float64 {
		return false
	}
	if hi := r.ZipRange.Max; hi.truthy() && d.value > hi.Float64 {
		return false
	}
	return true
}

// baselineFree reports whether the rule would ship for free on its own:
// no base price, no surcharges and not hidden from the free shipping
// banner.
func baselineFree(r ShippingRule, dest Destination) bool {
	return dest.Covers(r) &&
		!r.TotalPrice.truthy() &&
		!r.DisableFreeShippingFrom &&
		!r.ExcedentWeightCost.positive() &&
		!r.AmountTax.positive()
}

// FreeShippingFrom returns the lowest order amount unlocking a free rule,
// or nil when no rule is ever free. A free rule without min_amount yields 0.
func FreeShippingFrom(rules []ShippingRule, dest Destination) *float64 {
	var threshold *float64
	for _, r := range rules {
		if !baselineFree(r, dest) {
			continue
		}
		v := 0.0
		if r.MinAmount.truthy() {
			v = r.MinAmount.Float64
		}
		if threshold == nil || v < *threshold {
			threshold = &v
		}
	}
	return threshold
}

// FreeRuleOrigin returns the from zip of the first free rule that carries
// one.
func FreeRuleOrigin(rules []ShippingRule, dest Destination) string {
	for _, r := range rules {
		if baselineFree(r, dest) && r.From != nil && r.From.Zip != "" {
			return r.From.Zip
		}
	}
	return ""
}

// CoveringRuleOrigin returns the from zip of the first rule covering the
// destination that carries one, free or not.
func CoveringRuleOrigin(rules []ShippingRule, dest Destination) string {
	for _, r := range rules {
		if dest.Covers(r) && r.From != nil && r.From.Zip != "" {
			return r.From.Zip
		}
	}
	return ""
}
