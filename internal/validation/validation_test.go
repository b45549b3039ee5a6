package validation

import (
	"errors"
	"strings"
	"testing"

	"customshipping/internal/rate"
)

func TestMerchantConfigValid(t *testing.T) {
	cfg := rate.MerchantConfig{
		Zip:      "01310-100",
		Services: []rate.ServiceDefinition{{ServiceCode: "SEDEX.1", Label: "Sedex"}},
		ShippingRules: []rate.ShippingRule{
			{ServiceCode: "SEDEX.1", TotalPrice: rate.Float(10), AmountTax: rate.Float(-10)},
			{ServiceCode: "PAC"},
		},
	}
	if err := New().MerchantConfig(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := New().MerchantConfig(&rate.MerchantConfig{}); err != nil {
		t.Fatalf("empty config must be valid: %v", err)
	}
}

func TestMerchantConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  rate.MerchantConfig
		want string
	}{
		{"bad zip", rate.MerchantConfig{Zip: "abc"}, "zip must be a zip code"},
		{"missing service code", rate.MerchantConfig{ShippingRules: []rate.ShippingRule{{}}}, "shipping_rules[0].service_code is required"},
		{"bad service code", rate.MerchantConfig{Services: []rate.ServiceDefinition{{ServiceCode: "a b"}}}, "services[0].service_code must contain only"},
		{"tax out of range", rate.MerchantConfig{ShippingRules: []rate.ShippingRule{{ServiceCode: "A", AmountTax: rate.Float(150)}}}, "amount_tax must be less than or equal to 100"},
		{"negative overage cost", rate.MerchantConfig{ShippingRules: []rate.ShippingRule{{ServiceCode: "A", ExcedentWeightCost: rate.Float(-1)}}}, "excedent_weight_cost must be greater than or equal to 0"},
		{"too many services", rate.MerchantConfig{Services: make51Services()}, "services must have at most 50 items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().MerchantConfig(&tt.cfg)
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestParams(t *testing.T) {
	v := New()
	ok := rate.Params{ServiceCode: "PAC", Items: []rate.Item{{ProductID: "a", Quantity: 2}}}
	if err := v.Params(&ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := rate.Params{ServiceCode: "P A C", Items: []rate.Item{{Quantity: -1}}}
	err := v.Params(&bad)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "service_code") || !strings.Contains(err.Error(), "items[0].quantity") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func make51Services() []rate.ServiceDefinition {
	out := make([]rate.ServiceDefinition, 51)
	for i := range out {
		out[i].ServiceCode = "S"
	}
	return out
}
