// Package rate computes shipping quotes from a merchant's rule table.
//
// A calculation runs five stages in order: resolve the rule set, measure
// the package, find the free shipping threshold, select the cheapest rule
// per service and build the response. Every stage works on per-request
// copies, so a MerchantConfig may be shared between goroutines.
package rate

import (
	"errors"

	"go.uber.org/zap"
)

// ErrOriginUnresolved is returned when a destination is given but no
// origin zip is known from the request, the merchant or any rule.
var ErrOriginUnresolved = errors.New("zip code is unset on app hidden data (merchant must configure the app)")

type Calculator struct {
	log *zap.Logger
}

func NewCalculator(log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{log: log}
}

// Calculate runs the pipeline for an already merged merchant config.
func (c *Calculator) Calculate(cfg MerchantConfig, params Params) (*Response, error) {
	resp := &Response{ShippingServices: []ShippingService{}}
	if len(cfg.ShippingRules) == 0 {
		return resp, nil
	}

	rules := ResolveRules(cfg)
	dest := NewDestination(params.To)

	origin := requestOrigin(params, cfg)
	resp.FreeShippingFromValue = FreeShippingFrom(rules, dest)
	if origin == "" {
		origin = FreeRuleOrigin(rules, dest)
	}

	if params.To == nil {
		return resp, nil
	}
	if origin == "" {
		origin = CoveringRuleOrigin(rules, dest)
	}
	if origin == "" {
		return nil, ErrOriginUnresolved
	}
	if params.Items == nil {
		return resp, nil
	}

	sel := Selection{
		ServiceCode: params.ServiceCode,
		Destination: dest,
		Package:     MeasurePackage(params.Items, params.Subtotal),
		ProductIDs:  productIDs(params.Items),
	}
	c.log.Debug("package measured",
		zap.Float64("weight", sel.Package.Weight),
		zap.Float64("amount", sel.Package.Amount),
		zap.String("destination_zip", dest.Zip),
		zap.Int("rules", len(rules)),
	)

	quotes := SelectRules(rules, sel)
	for _, q := range quotes {
		c.log.Debug("rule selected",
			zap.String("service_code", q.Rule.ServiceCode),
			zap.Float64("price", q.Price),
			zap.Float64("total_price", q.TotalPrice),
		)
	}

	b := Builder{Config: cfg, Params: params, Origin: origin}
	resp.ShippingServices = b.Build(quotes)
	return resp, nil
}

// requestOrigin prefers the request origin over the merchant zip.
func requestOrigin(params Params, cfg MerchantConfig) string {
	if params.From != nil && params.From.Zip != "" {
		return params.From.Zip
	}
	return cfg.Zip
}

func productIDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
