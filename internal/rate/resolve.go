package rate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MergeConfig overlays hidden_data on data key by key and decodes the
// result. Either blob may be empty.
func MergeConfig(app Application) (MerchantConfig, error) {
	merged := map[string]json.RawMessage{}
	for _, blob := range []json.RawMessage{app.Data, app.HiddenData} {
		blob = bytes.TrimSpace(blob)
		if len(blob) == 0 || bytes.Equal(blob, []byte("null")) {
			continue
		}
		var layer map[string]json.RawMessage
		if err := json.Unmarshal(blob, &layer); err != nil {
			return MerchantConfig{}, fmt.Errorf("application data: %w", err)
		}
		for k, v := range layer {
			merged[k] = v
		}
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return MerchantConfig{}, err
	}
	var cfg MerchantConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return MerchantConfig{}, fmt.Errorf("application data: %w", err)
	}
	return cfg, nil
}

// ResolveRules returns per-request copies of the configured rules with the
// free-shipping policy of the matching service definition applied. The
// service definition wins for free_shipping_all and product_ids, including
// when it leaves them unset. cfg is never modified.
func ResolveRules(cfg MerchantConfig) []ShippingRule {
	rules := make([]ShippingRule, 0, len(cfg.ShippingRules))
	for _, r := range cfg.ShippingRules {
		rule := r.clone()
		if svc, ok := findService(cfg.Services, rule.ServiceCode); ok {
			rule.FreeShippingAll = nil
			if svc.FreeShippingAll != nil {
				v := *svc.FreeShippingAll
				rule.FreeShippingAll = &v
			}
			rule.ProductIDs = nil
			if svc.ProductIDs != nil {
				rule.ProductIDs = append([]string(nil), svc.ProductIDs...)
			}
		}
		rules = append(rules, rule)
	}
	return rules
}

func findService(services []ServiceDefinition, code string) (ServiceDefinition, bool) {
	for _, s := range services {
		if s.ServiceCode == code {
			return s, true
		}
	}
	return ServiceDefinition{}, false
}
