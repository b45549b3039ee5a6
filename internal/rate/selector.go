package rate

// Quote is a rule that survived filtering, with its prices computed for
// the current cart.
type Quote struct {
	Rule       ShippingRule
	Price      float64
	TotalPrice float64
}

// Selection holds the inputs the rule selector needs from earlier stages.
type Selection struct {
	ServiceCode string
	Destination Destination
	Package     Package
	ProductIDs  []string
}

func (s Selection) accepts(r ShippingRule) bool {
	if s.ServiceCode != "" && s.ServiceCode != r.ServiceCode {
		return false
	}
	if !s.Destination.Covers(r) {
		return false
	}
	if r.MinAmount.truthy() && s.Package.Amount < r.MinAmount.Float64 {
		return false
	}
	if r.MaxCubicWeight.truthy() && !r.ExcedentWeightCost.positive() && s.Package.Weight > r.MaxCubicWeight.Float64 {
		return false
	}
	return true
}

// FilterRules keeps the rules applicable to the selection, in order.
func FilterRules(rules []ShippingRule, s Selection) []ShippingRule {
	out := make([]ShippingRule, 0, len(rules))
	for _, r := range rules {
		if s.accepts(r) {
			out = append(out, r)
		}
	}
	return out
}

// Price computes the rule's cost for the selection.
func Price(r ShippingRule, s Selection) Quote {
	q := Quote{Rule: r}
	if r.TotalPrice.Valid {
		q.TotalPrice = r.TotalPrice.Float64
	}
	q.Price = q.TotalPrice
	if r.Price.Valid {
		q.Price = r.Price.Float64
	}
	weight := s.Package.Weight
	if r.ExcedentWeightCost.positive() && r.MaxCubicWeight.Valid && weight > r.MaxCubicWeight.Float64 {
		q.TotalPrice += r.ExcedentWeightCost.Float64 * (weight - r.MaxCubicWeight.Float64)
	}
	if r.AmountTax.Valid {
		q.TotalPrice += r.AmountTax.Float64 * s.Package.Amount / 100
	}
	if len(r.ProductIDs) > 0 && matchesProducts(r, s.ProductIDs) {
		q.TotalPrice = 0
	}
	return q
}

// matchesProducts applies the free shipping product list. With
// free_shipping_all the cart must hold exactly the listed products: every
// cart product listed and every listed product in the cart. Otherwise one
// listed product in the cart is enough.
func matchesProducts(r ShippingRule, cart []string) bool {
	listed := make(map[string]struct{}, len(r.ProductIDs))
	for _, id := range r.ProductIDs {
		listed[id] = struct{}{}
	}
	if r.FreeShippingAll == nil || !*r.FreeShippingAll {
		for _, id := range cart {
			if _, ok := listed[id]; ok {
				return true
			}
		}
		return false
	}
	inCart := make(map[string]struct{}, len(cart))
	for _, id := range cart {
		if _, ok := listed[id]; !ok {
			return false
		}
		inCart[id] = struct{}{}
	}
	return len(inCart) == len(listed)
}

// CheapestByService keeps the lowest priced quote per service code. Ties
// keep the earlier quote; the result is ordered by first appearance.
func CheapestByService(quotes []Quote) []Quote {
	index := map[string]int{}
	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		code := q.Rule.ServiceCode
		i, ok := index[code]
		if !ok {
			index[code] = len(out)
			out = append(out, q)
			continue
		}
		if out[i].TotalPrice > q.TotalPrice {
			out[i] = q
		}
	}
	return out
}

// SelectRules filters, prices and deduplicates rules for the selection.
func SelectRules(rules []ShippingRule, s Selection) []Quote {
	eligible := FilterRules(rules, s)
	quotes := make([]Quote, 0, len(eligible))
	for _, r := range eligible {
		quotes = append(quotes, Price(r, s))
	}
	return CheapestByService(quotes)
}
