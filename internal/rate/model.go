package rate

import (
	"bytes"
	"encoding/json"
)

// NullFloat is an optional JSON number. Values that are not numbers
// (strings, booleans, null) decode as not Valid instead of failing, so
// loosely typed admin settings degrade rather than reject the request.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

func Float(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

func (n *NullFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var f float64
	if len(b) == 0 || b[0] == 'n' || json.Unmarshal(b, &f) != nil {
		*n = NullFloat{}
		return nil
	}
	*n = NullFloat{Float64: f, Valid: true}
	return nil
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// truthy reports whether the value is present and non-zero.
func (n NullFloat) truthy() bool { return n.Valid && n.Float64 != 0 }

// positive reports whether the value is present and greater than zero.
func (n NullFloat) positive() bool { return n.Valid && n.Float64 > 0 }

type Address struct {
	Zip          string `json:"zip,omitempty"`
	Name         string `json:"name,omitempty"`
	Street       string `json:"street,omitempty"`
	Number       *int   `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Borough      string `json:"borough,omitempty"`
	City         string `json:"city,omitempty"`
	ProvinceCode string `json:"province_code,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
}

type ZipRange struct {
	Min NullFloat `json:"min"`
	Max NullFloat `json:"max"`
}

type DeliveryTime struct {
	Days        *int  `json:"days,omitempty"`
	WorkingDays *bool `json:"working_days,omitempty"`
}

type PostingDeadline struct {
	Days          *int  `json:"days,omitempty"`
	WorkingDays   *bool `json:"working_days,omitempty"`
	AfterApproval *bool `json:"after_approval,omitempty"`
}

// ShippingRule is one row of the merchant's shipping table. Several rules
// may share a service code; at most one of them is offered per request.
type ShippingRule struct {
	ServiceCode             string           `json:"service_code" validate:"required,servicecode,max=10"`
	Label                   string           `json:"label,omitempty" validate:"max=50"`
	ZipRange                *ZipRange        `json:"zip_range,omitempty"`
	MinAmount               NullFloat        `json:"min_amount" validate:"omitempty,gte=0"`
	MaxCubicWeight          NullFloat        `json:"max_cubic_weight" validate:"omitempty,gte=0"`
	TotalPrice              NullFloat        `json:"total_price"`
	Price                   NullFloat        `json:"price"`
	DeliveryTime            *DeliveryTime    `json:"delivery_time,omitempty"`
	PostingDeadline         *PostingDeadline `json:"posting_deadline,omitempty"`
	ExcedentWeightCost      NullFloat        `json:"excedent_weight_cost" validate:"omitempty,gte=0"`
	AmountTax               NullFloat        `json:"amount_tax" validate:"omitempty,gte=-100,lte=100"`
	DisableFreeShippingFrom bool             `json:"disable_free_shipping_from,omitempty"`
	ProductIDs              []string         `json:"product_ids,omitempty"`
	FreeShippingAll         *bool            `json:"free_shipping_all,omitempty"`
	From                    *Address         `json:"from,omitempty"`
	DeliveryInstructions    string           `json:"delivery_instructions,omitempty" validate:"max=1000"`
}

// clone returns a copy that shares no mutable state with r.
func (r ShippingRule) clone() ShippingRule {
	c := r
	if r.ZipRange != nil {
		zr := *r.ZipRange
		c.ZipRange = &zr
	}
	if r.DeliveryTime != nil {
		dt := *r.DeliveryTime
		c.DeliveryTime = &dt
	}
	if r.PostingDeadline != nil {
		pd := *r.PostingDeadline
		c.PostingDeadline = &pd
	}
	if r.ProductIDs != nil {
		c.ProductIDs = append([]string(nil), r.ProductIDs...)
	}
	if r.FreeShippingAll != nil {
		v := *r.FreeShippingAll
		c.FreeShippingAll = &v
	}
	if r.From != nil {
		f := *r.From
		c.From = &f
	}
	return c
}

// ServiceDefinition is the merchant's catalog entry for a service code.
type ServiceDefinition struct {
	ServiceCode     string   `json:"service_code" validate:"required,servicecode,max=10"`
	Label           string   `json:"label,omitempty" validate:"max=50"`
	Carrier         string   `json:"carrier,omitempty" validate:"max=200"`
	FreeShippingAll *bool    `json:"free_shipping_all,omitempty"`
	ProductIDs      []string `json:"product_ids,omitempty"`
}

// MerchantConfig is the merged visible and hidden application data.
type MerchantConfig struct {
	Zip             string              `json:"zip,omitempty" validate:"omitempty,max=9,cep"`
	Services        []ServiceDefinition `json:"services,omitempty" validate:"max=50,dive"`
	PostingDeadline *PostingDeadline    `json:"posting_deadline,omitempty"`
	AdditionalPrice NullFloat           `json:"additional_price" validate:"omitempty,gte=-999999,lte=999999"`
	ShippingRules   []ShippingRule      `json:"shipping_rules,omitempty" validate:"max=1000,dive"`
}

type Weight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Dimension struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Dimensions struct {
	Height *Dimension `json:"height,omitempty"`
	Width  *Dimension `json:"width,omitempty"`
	Length *Dimension `json:"length,omitempty"`
}

type Item struct {
	ProductID  string      `json:"product_id"`
	Price      float64     `json:"price"`
	Quantity   float64     `json:"quantity" validate:"gte=0"`
	Weight     *Weight     `json:"weight,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// Params is the calculate_shipping request. A nil Items slice means the
// cart was not sent at all, which is different from an empty cart.
type Params struct {
	From        *Address  `json:"from,omitempty"`
	To          *Address  `json:"to,omitempty"`
	Items       []Item    `json:"items,omitempty" validate:"omitempty,dive"`
	Subtotal    NullFloat `json:"subtotal"`
	ServiceCode string    `json:"service_code,omitempty" validate:"omitempty,servicecode"`
}

// Application carries the merchant settings as stored by the platform.
type Application struct {
	Data       json.RawMessage `json:"data,omitempty"`
	HiddenData json.RawMessage `json:"hidden_data,omitempty"`
}

type Request struct {
	Params      Params      `json:"params"`
	Application Application `json:"application"`
}

type ShippingLineDeliveryTime struct {
	Days        int  `json:"days"`
	WorkingDays bool `json:"working_days"`
}

type ShippingLinePostingDeadline struct {
	Days          int   `json:"days"`
	WorkingDays   *bool `json:"working_days,omitempty"`
	AfterApproval *bool `json:"after_approval,omitempty"`
}

type ShippingLine struct {
	From                 Address                     `json:"from"`
	To                   *Address                    `json:"to,omitempty"`
	Price                float64                     `json:"price"`
	TotalPrice           float64                     `json:"total_price"`
	DeliveryTime         ShippingLineDeliveryTime    `json:"delivery_time"`
	PostingDeadline      ShippingLinePostingDeadline `json:"posting_deadline"`
	DeliveryInstructions string                      `json:"delivery_instructions,omitempty"`
}

type ShippingService struct {
	Carrier         string       `json:"carrier,omitempty"`
	FreeShippingAll *bool        `json:"free_shipping_all,omitempty"`
	ProductIDs      []string     `json:"product_ids,omitempty"`
	ServiceCode     string       `json:"service_code"`
	Label           string       `json:"label"`
	ShippingLine    ShippingLine `json:"shipping_line"`
}

type Response struct {
	ShippingServices      []ShippingService `json:"shipping_services"`
	FreeShippingFromValue *float64          `json:"free_shipping_from_value,omitempty"`
}
